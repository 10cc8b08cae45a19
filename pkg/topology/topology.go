package topology

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/qroute/pkg/qubit"
)

var (
	// ErrNodeNotFound is returned when a referenced node is not in the topology.
	ErrNodeNotFound = errors.New("topology: node not found")

	// ErrDisconnected is returned when no path joins two nodes, or when a
	// whole-graph property such as the diameter is requested on a graph
	// with more than one connected component.
	ErrDisconnected = errors.New("topology: nodes not connected")

	// ErrEmpty is returned when a property is requested on a topology
	// without nodes.
	ErrEmpty = errors.New("topology: empty graph")

	// ErrSelfLoop is returned when an edge would join a node to itself.
	ErrSelfLoop = errors.New("topology: self-loop")

	// ErrInvalidLength is returned when requested line lengths or distances
	// cannot be satisfied by the graph.
	ErrInvalidLength = errors.New("topology: invalid length")
)

// Node is a physical qubit on a device.
type Node = qubit.ID

// Edge is a coupling between two physical qubits.
type Edge struct {
	From   Node
	To     Node
	Weight int
}

// Option configures a Topology at construction.
type Option func(*Topology)

// WithDirected makes two-qubit legality direction-aware: an operation on
// (a, b) is legal only if the edge a->b exists. Distances are unaffected.
func WithDirected() Option {
	return func(t *Topology) { t.directed = true }
}

// vertex is one arena slot. Removed slots keep their index until Compact.
type vertex struct {
	node    Node
	removed bool
}

// Topology is the connectivity graph of a device.
//
// Nodes live in an arena addressed by stable integer indices. RemoveNode
// marks a slot dead and detaches its edges immediately; Compact reclaims dead
// slots. Public methods take and return [Node] values only, so callers never
// hold arena indices.
//
// Topology is not safe for concurrent mutation. Concurrent read-only use is
// safe once the distance table has been built (any call to Distance,
// Diameter or NodesAtDistance builds it).
type Topology struct {
	verts    []vertex
	index    map[Node]int
	out      []map[int]int // out[i][j] is the weight of the stored edge i->j
	adj      [][]int       // undirected neighbours, sorted by node order
	dead     int
	directed bool

	dist [][]int // all-pairs hop distances, -1 when unreachable; nil when stale
}

// New creates an empty topology.
func New(opts ...Option) *Topology {
	t := &Topology{index: make(map[Node]int)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FromEdges builds an undirected topology from unit-weight couplings.
func FromEdges(pairs ...[2]Node) *Topology {
	t := New()
	for _, p := range pairs {
		if err := t.AddEdge(p[0], p[1], 1); err != nil {
			panic(err)
		}
	}
	return t
}

// Directed reports whether legality checks respect edge direction.
func (t *Topology) Directed() bool { return t.directed }

// AddNode inserts n if it is not already present.
func (t *Topology) AddNode(n Node) {
	if _, ok := t.index[n]; ok {
		return
	}
	t.index[n] = len(t.verts)
	t.verts = append(t.verts, vertex{node: n})
	t.out = append(t.out, map[int]int{})
	t.adj = append(t.adj, nil)
	t.invalidate()
}

// AddEdge inserts the coupling a->b, adding missing nodes. A non-positive
// weight is stored as 1. Adding an existing edge updates its weight.
func (t *Topology) AddEdge(a, b Node, weight int) error {
	if a == b {
		return fmt.Errorf("%w: %v", ErrSelfLoop, a)
	}
	if weight <= 0 {
		weight = 1
	}
	t.AddNode(a)
	t.AddNode(b)
	i, j := t.index[a], t.index[b]
	t.out[i][j] = weight
	t.link(i, j)
	t.link(j, i)
	t.invalidate()
	return nil
}

// link records j as an undirected neighbour of i, keeping node order.
func (t *Topology) link(i, j int) {
	pos, found := slices.BinarySearchFunc(t.adj[i], j, t.cmpIndex)
	if found {
		return
	}
	t.adj[i] = slices.Insert(t.adj[i], pos, j)
}

func (t *Topology) unlink(i, j int) {
	if pos, found := slices.BinarySearchFunc(t.adj[i], j, t.cmpIndex); found {
		t.adj[i] = slices.Delete(t.adj[i], pos, pos+1)
	}
}

func (t *Topology) cmpIndex(a, b int) int {
	return qubit.Compare(t.verts[a].node, t.verts[b].node)
}

// RemoveNode marks n as removed and detaches all of its edges. The arena
// slot is reclaimed by the next Compact. Removing an unknown node is a no-op
// and reports false.
func (t *Topology) RemoveNode(n Node) bool {
	i, ok := t.index[n]
	if !ok {
		return false
	}
	for _, j := range t.adj[i] {
		t.unlink(j, i)
		delete(t.out[j], i)
	}
	t.adj[i] = nil
	t.out[i] = map[int]int{}
	t.verts[i].removed = true
	delete(t.index, n)
	t.dead++
	t.invalidate()
	return true
}

// RemoveEdge deletes the coupling between a and b in both directions.
func (t *Topology) RemoveEdge(a, b Node) bool {
	i, ok1 := t.index[a]
	j, ok2 := t.index[b]
	if !ok1 || !ok2 || !t.Connected(a, b) {
		return false
	}
	delete(t.out[i], j)
	delete(t.out[j], i)
	t.unlink(i, j)
	t.unlink(j, i)
	t.invalidate()
	return true
}

// Compact reclaims the arena slots of removed nodes.
func (t *Topology) Compact() {
	if t.dead == 0 {
		return
	}
	remap := make([]int, len(t.verts))
	verts := make([]vertex, 0, len(t.verts)-t.dead)
	for i, v := range t.verts {
		if v.removed {
			remap[i] = -1
			continue
		}
		remap[i] = len(verts)
		verts = append(verts, v)
	}
	out := make([]map[int]int, len(verts))
	adj := make([][]int, len(verts))
	for i, v := range t.verts {
		k := remap[i]
		if k < 0 {
			continue
		}
		out[k] = make(map[int]int, len(t.out[i]))
		for j, w := range t.out[i] {
			out[k][remap[j]] = w
		}
		adj[k] = make([]int, 0, len(t.adj[i]))
		for _, j := range t.adj[i] {
			adj[k] = append(adj[k], remap[j])
		}
		t.index[v.node] = k
	}
	t.verts, t.out, t.adj, t.dead = verts, out, adj, 0
	t.invalidate()
}

func (t *Topology) invalidate() { t.dist = nil }

// live returns the arena indices of present nodes in node order.
func (t *Topology) live() []int {
	idx := make([]int, 0, len(t.index))
	for _, i := range t.index {
		idx = append(idx, i)
	}
	slices.SortFunc(idx, t.cmpIndex)
	return idx
}

// NodeCount returns the number of present nodes.
func (t *Topology) NodeCount() int { return len(t.index) }

// EdgeCount returns the number of undirected couplings.
func (t *Topology) EdgeCount() int {
	n := 0
	for i, nbrs := range t.adj {
		for _, j := range nbrs {
			if i < j {
				n++
			}
		}
	}
	return n
}

// HasNode reports whether n is present.
func (t *Topology) HasNode(n Node) bool {
	_, ok := t.index[n]
	return ok
}

// Nodes returns all present nodes in ascending order.
func (t *Topology) Nodes() []Node {
	return t.nodesOf(t.live())
}

func (t *Topology) nodesOf(idx []int) []Node {
	out := make([]Node, len(idx))
	for k, i := range idx {
		out[k] = t.verts[i].node
	}
	return out
}

// Edges returns the stored couplings ordered by (From, To).
func (t *Topology) Edges() []Edge {
	var edges []Edge
	for _, i := range t.live() {
		for j, w := range t.out[i] {
			edges = append(edges, Edge{From: t.verts[i].node, To: t.verts[j].node, Weight: w})
		}
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := qubit.Compare(a.From, b.From); c != 0 {
			return c
		}
		return qubit.Compare(a.To, b.To)
	})
	return edges
}

// HasEdge reports whether a and b are coupled. For directed topologies only
// the stored direction a->b counts.
func (t *Topology) HasEdge(a, b Node) bool {
	i, ok1 := t.index[a]
	j, ok2 := t.index[b]
	if !ok1 || !ok2 {
		return false
	}
	if _, ok := t.out[i][j]; ok {
		return true
	}
	if t.directed {
		return false
	}
	_, ok := t.out[j][i]
	return ok
}

// Connected reports whether a and b share an edge in either direction.
func (t *Topology) Connected(a, b Node) bool {
	i, ok1 := t.index[a]
	j, ok2 := t.index[b]
	if !ok1 || !ok2 {
		return false
	}
	_, found := slices.BinarySearchFunc(t.adj[i], j, t.cmpIndex)
	return found
}

// Weight returns the weight of the coupling between a and b, preferring the
// a->b direction.
func (t *Topology) Weight(a, b Node) (int, bool) {
	i, ok1 := t.index[a]
	j, ok2 := t.index[b]
	if !ok1 || !ok2 {
		return 0, false
	}
	if w, ok := t.out[i][j]; ok {
		return w, true
	}
	w, ok := t.out[j][i]
	return w, ok
}

// Neighbours returns the nodes coupled to n, in ascending order.
func (t *Topology) Neighbours(n Node) []Node {
	i, ok := t.index[n]
	if !ok {
		return nil
	}
	return t.nodesOf(t.adj[i])
}

// Degree returns the number of nodes coupled to n.
func (t *Topology) Degree(n Node) int {
	i, ok := t.index[n]
	if !ok {
		return 0
	}
	return len(t.adj[i])
}

// MaxDegreeNodes returns every node of maximum degree.
func (t *Topology) MaxDegreeNodes() []Node {
	return t.degreeExtreme(func(d, best int) bool { return d > best })
}

// MinDegreeNodes returns every node of minimum degree.
func (t *Topology) MinDegreeNodes() []Node {
	return t.degreeExtreme(func(d, best int) bool { return d < best })
}

func (t *Topology) degreeExtreme(better func(d, best int) bool) []Node {
	var out []Node
	best := -1
	for _, i := range t.live() {
		d := len(t.adj[i])
		switch {
		case best < 0 || better(d, best):
			best = d
			out = []Node{t.verts[i].node}
		case d == best:
			out = append(out, t.verts[i].node)
		}
	}
	return out
}

// ValidOperation reports whether an operation on nodes is executable:
// a single existing node, two coupled nodes, or a bridge path
// (control, mediator, target) whose two hops are both couplings. On a
// directed topology each coupling must run in operand order.
func (t *Topology) ValidOperation(nodes ...Node) bool {
	return t.validShape(t.HasEdge, nodes)
}

// Coupled is ValidOperation with edge direction ignored. Routing resolves
// an operation once its nodes are coupled; a reversed coupling is left to
// later direction fixing.
func (t *Topology) Coupled(nodes ...Node) bool {
	return t.validShape(t.Connected, nodes)
}

func (t *Topology) validShape(edge func(a, b Node) bool, nodes []Node) bool {
	switch len(nodes) {
	case 1:
		return t.HasNode(nodes[0])
	case 2:
		return nodes[0] != nodes[1] && edge(nodes[0], nodes[1])
	case 3:
		return nodes[0] != nodes[2] && edge(nodes[0], nodes[1]) && edge(nodes[1], nodes[2])
	default:
		return false
	}
}

// Clone returns a deep copy of t, with removed slots compacted away.
func (t *Topology) Clone() *Topology {
	c := New()
	c.directed = t.directed
	for _, n := range t.Nodes() {
		c.AddNode(n)
	}
	for _, e := range t.Edges() {
		_ = c.AddEdge(e.From, e.To, e.Weight)
	}
	return c
}

// Subgraph returns the topology induced by nodes: exactly those nodes and
// every stored edge between two of them.
func (t *Topology) Subgraph(nodes []Node) (*Topology, error) {
	sub := New()
	sub.directed = t.directed
	keep := make(map[Node]bool, len(nodes))
	for _, n := range nodes {
		if !t.HasNode(n) {
			return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, n)
		}
		keep[n] = true
		sub.AddNode(n)
	}
	for _, e := range t.Edges() {
		if keep[e.From] && keep[e.To] {
			_ = sub.AddEdge(e.From, e.To, e.Weight)
		}
	}
	return sub, nil
}
