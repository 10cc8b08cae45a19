package topology

import (
	"cmp"
	"fmt"
	"slices"
)

// pathSearchBudget caps the number of DFS expansions made by
// LongestSimplePath across all start nodes.
const pathSearchBudget = 50_000

// LongestSimplePath searches for a simple path with up to bound nodes
// (bound <= 0 means as long as possible). The search is best-effort: a
// bounded depth-first search from low-degree nodes that expands neighbours
// with the fewest onward options first. It returns as soon as a path of
// bound nodes is found, otherwise the longest path seen.
func (t *Topology) LongestSimplePath(bound int) []Node {
	live := t.live()
	if len(live) == 0 {
		return nil
	}
	if bound <= 0 || bound > len(live) {
		bound = len(live)
	}

	starts := slices.Clone(live)
	slices.SortStableFunc(starts, func(a, b int) int {
		return cmp.Compare(len(t.adj[a]), len(t.adj[b]))
	})

	visited := make([]bool, len(t.verts))
	var best, cur []int
	budget := pathSearchBudget

	var dfs func(u int) bool
	dfs = func(u int) bool {
		budget--
		visited[u] = true
		cur = append(cur, u)
		if len(cur) > len(best) {
			best = slices.Clone(cur)
		}
		if len(best) >= bound {
			return true
		}
		next := make([]int, 0, len(t.adj[u]))
		for _, v := range t.adj[u] {
			if !visited[v] {
				next = append(next, v)
			}
		}
		slices.SortStableFunc(next, func(a, b int) int {
			return cmp.Compare(t.onward(a, visited), t.onward(b, visited))
		})
		for _, v := range next {
			if budget <= 0 {
				break
			}
			if dfs(v) {
				return true
			}
		}
		visited[u] = false
		cur = cur[:len(cur)-1]
		return false
	}

	for _, s := range starts {
		if budget <= 0 {
			break
		}
		if dfs(s) {
			break
		}
	}
	if len(best) > bound {
		best = best[:bound]
	}
	return t.nodesOf(best)
}

// onward counts the unvisited neighbours of u.
func (t *Topology) onward(u int, visited []bool) int {
	n := 0
	for _, v := range t.adj[u] {
		if !visited[v] {
			n++
		}
	}
	return n
}

// Lines carves disjoint simple paths out of the topology, one per requested
// length (in nodes). Longer lines are carved first; nodes used by a line are
// unavailable to later ones. The result is aligned with lengths. A line may
// be shorter than requested when the remaining graph has no such path.
// The receiver is not modified.
func (t *Topology) Lines(lengths []int) ([][]Node, error) {
	total := 0
	for _, l := range lengths {
		if l < 0 {
			return nil, fmt.Errorf("%w: negative line length %d", ErrInvalidLength, l)
		}
		total += l
	}
	if total > t.NodeCount() {
		return nil, fmt.Errorf("%w: %d nodes requested, topology has %d", ErrInvalidLength, total, t.NodeCount())
	}

	order := make([]int, len(lengths))
	for k := range order {
		order[k] = k
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(lengths[b], lengths[a]) })

	work := t.Clone()
	lines := make([][]Node, len(lengths))
	for _, k := range order {
		if lengths[k] == 0 {
			continue
		}
		line := work.LongestSimplePath(lengths[k])
		for _, n := range line {
			work.RemoveNode(n)
		}
		lines[k] = line
	}
	return lines, nil
}
