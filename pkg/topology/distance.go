package topology

import (
	"cmp"
	"fmt"
	"slices"
)

// table returns the all-pairs hop distance table, building it on first use
// after a mutation. Rows and columns are arena indices; removed slots have
// nil rows.
func (t *Topology) table() [][]int {
	if t.dist != nil {
		return t.dist
	}
	dist := make([][]int, len(t.verts))
	for _, src := range t.live() {
		dist[src] = t.bfs(src)
	}
	t.dist = dist
	return dist
}

// bfs returns hop distances from src, -1 for unreachable slots.
func (t *Topology) bfs(src int) []int {
	d := make([]int, len(t.verts))
	for i := range d {
		d[i] = -1
	}
	d[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range t.adj[u] {
			if d[v] < 0 {
				d[v] = d[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return d
}

// Distance returns the number of hops on a shortest path between a and b.
func (t *Topology) Distance(a, b Node) (int, error) {
	i, ok := t.index[a]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrNodeNotFound, a)
	}
	j, ok := t.index[b]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrNodeNotFound, b)
	}
	d := t.table()[i][j]
	if d < 0 {
		return 0, fmt.Errorf("%w: %v and %v", ErrDisconnected, a, b)
	}
	return d, nil
}

// Diameter returns the largest distance between any two nodes.
func (t *Topology) Diameter() (int, error) {
	live := t.live()
	if len(live) == 0 {
		return 0, ErrEmpty
	}
	dist := t.table()
	best := 0
	for _, i := range live {
		for _, j := range live {
			d := dist[i][j]
			if d < 0 {
				return 0, fmt.Errorf("%w: %v and %v", ErrDisconnected, t.verts[i].node, t.verts[j].node)
			}
			best = max(best, d)
		}
	}
	return best, nil
}

// NodesAtDistance returns every node exactly k hops from n, in ascending
// order. k == 0 yields n itself.
func (t *Topology) NodesAtDistance(n Node, k int) ([]Node, error) {
	i, ok := t.index[n]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, n)
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: negative distance %d", ErrInvalidLength, k)
	}
	row := t.table()[i]
	var out []int
	for _, j := range t.live() {
		if row[j] == k {
			out = append(out, j)
		}
	}
	return t.nodesOf(out), nil
}

// Path returns a shortest path from a to b, both included. Among equal
// length paths the one reached first when expanding neighbours in ascending
// node order is returned.
func (t *Topology) Path(a, b Node) ([]Node, error) {
	i, ok := t.index[a]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, a)
	}
	j, ok := t.index[b]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, b)
	}
	parent := make([]int, len(t.verts))
	for k := range parent {
		parent[k] = -1
	}
	parent[i] = i
	queue := []int{i}
	for len(queue) > 0 && parent[j] < 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range t.adj[u] {
			if parent[v] < 0 {
				parent[v] = u
				queue = append(queue, v)
			}
		}
	}
	if parent[j] < 0 {
		return nil, fmt.Errorf("%w: %v and %v", ErrDisconnected, a, b)
	}
	var rev []int
	for v := j; v != i; v = parent[v] {
		rev = append(rev, v)
	}
	rev = append(rev, i)
	slices.Reverse(rev)
	return t.nodesOf(rev), nil
}

// DistanceProfile returns the distances from n to every other node, sorted
// longest first. Unreachable nodes count as NodeCount() hops, further than
// any real distance. Comparing profiles lexicographically ranks nodes by
// centrality: a smaller profile is more central.
func (t *Topology) DistanceProfile(n Node) ([]int, error) {
	i, ok := t.index[n]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, n)
	}
	row := t.table()[i]
	far := t.NodeCount()
	profile := make([]int, 0, far)
	for _, j := range t.live() {
		if j == i {
			continue
		}
		d := row[j]
		if d < 0 {
			d = far
		}
		profile = append(profile, d)
	}
	slices.SortFunc(profile, func(a, b int) int { return cmp.Compare(b, a) })
	return profile, nil
}

// ConnectivityMatrix returns the nodes in ascending order and a symmetric
// adjacency matrix over them, ignoring edge direction.
func (t *Topology) ConnectivityMatrix() ([]Node, [][]bool) {
	live := t.live()
	m := make([][]bool, len(live))
	pos := make(map[int]int, len(live))
	for k, i := range live {
		pos[i] = k
		m[k] = make([]bool, len(live))
	}
	for k, i := range live {
		for _, j := range t.adj[i] {
			m[k][pos[j]] = true
		}
	}
	return t.nodesOf(live), m
}
