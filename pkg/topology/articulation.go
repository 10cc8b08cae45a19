package topology

import (
	"fmt"
	"slices"
)

// bicomponents splits the graph into biconnected components (as sorted
// arena index sets) and reports the articulation points.
func (t *Topology) bicomponents() (comps [][]int, cuts map[int]bool) {
	n := len(t.verts)
	disc := make([]int, n)
	low := make([]int, n)
	cuts = make(map[int]bool)
	timer := 0
	var stack [][2]int

	pop := func(u, v int) {
		seen := map[int]bool{}
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			seen[e[0]], seen[e[1]] = true, true
			if e == [2]int{u, v} {
				break
			}
		}
		comp := make([]int, 0, len(seen))
		for k := range seen {
			comp = append(comp, k)
		}
		slices.SortFunc(comp, t.cmpIndex)
		comps = append(comps, comp)
	}

	var dfs func(u, parent int)
	dfs = func(u, parent int) {
		timer++
		disc[u], low[u] = timer, timer
		children := 0
		for _, v := range t.adj[u] {
			switch {
			case disc[v] == 0:
				children++
				stack = append(stack, [2]int{u, v})
				dfs(v, u)
				low[u] = min(low[u], low[v])
				if low[v] >= disc[u] {
					if parent >= 0 || children > 1 {
						cuts[u] = true
					}
					pop(u, v)
				}
			case v != parent && disc[v] < disc[u]:
				low[u] = min(low[u], disc[v])
				stack = append(stack, [2]int{u, v})
			}
		}
	}

	for _, u := range t.live() {
		if disc[u] == 0 {
			dfs(u, -1)
		}
	}
	return comps, cuts
}

// ArticulationPoints returns every node whose removal increases the number
// of connected components, in ascending order.
func (t *Topology) ArticulationPoints() []Node {
	_, cuts := t.bicomponents()
	idx := make([]int, 0, len(cuts))
	for i := range cuts {
		idx = append(idx, i)
	}
	slices.SortFunc(idx, t.cmpIndex)
	return t.nodesOf(idx)
}

// SubgraphArticulationPoints returns the nodes whose removal disconnects
// some pair of nodes of sub, including cut nodes outside sub.
//
// The biconnected components and articulation points form a block-cut tree.
// Components containing a node of sub are marked; unmarked leaves are
// pruned until every leaf is marked, which leaves the smallest subtree
// joining the marked components. The articulation points left in that
// subtree are the result.
func (t *Topology) SubgraphArticulationPoints(sub []Node) ([]Node, error) {
	want := make(map[int]bool, len(sub))
	for _, n := range sub {
		i, ok := t.index[n]
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, n)
		}
		want[i] = true
	}

	comps, cuts := t.bicomponents()

	// Tree vertices: components are 0..len(comps)-1, then one vertex per cut.
	cutID := make(map[int]int, len(cuts))
	cutOf := make([]int, 0, len(cuts))
	for _, i := range t.live() {
		if cuts[i] {
			cutID[i] = len(comps) + len(cutOf)
			cutOf = append(cutOf, i)
		}
	}
	size := len(comps) + len(cutOf)
	tree := make([]map[int]bool, size)
	for k := range tree {
		tree[k] = map[int]bool{}
	}
	marked := make([]bool, size)
	for c, comp := range comps {
		for _, i := range comp {
			if want[i] {
				marked[c] = true
			}
			if id, ok := cutID[i]; ok {
				tree[c][id] = true
				tree[id][c] = true
			}
		}
	}

	alive := make([]bool, size)
	for k := range alive {
		alive[k] = true
	}
	for changed := true; changed; {
		changed = false
		for k := range tree {
			if !alive[k] || marked[k] || len(tree[k]) > 1 {
				continue
			}
			for nb := range tree[k] {
				delete(tree[nb], k)
			}
			tree[k] = nil
			alive[k] = false
			changed = true
		}
	}

	var out []int
	for k, i := range cutOf {
		if alive[len(comps)+k] {
			out = append(out, i)
		}
	}
	slices.SortFunc(out, t.cmpIndex)
	return t.nodesOf(out), nil
}
