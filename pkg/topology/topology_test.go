package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qroute/pkg/qubit"
)

var n = qubit.Node

// tShape is
//
//	n0 -- n1 -- n2
//	      |
//	      n3
//	      |
//	      n4
func tShape() *Topology {
	return FromEdges(
		[2]Node{n(0), n(1)},
		[2]Node{n(1), n(2)},
		[2]Node{n(1), n(3)},
		[2]Node{n(3), n(4)},
	)
}

func TestDistance(t *testing.T) {
	line := Line(4)
	d, err := line.Distance(n(0), n(3))
	require.NoError(t, err)
	assert.Equal(t, 3, d)

	d, err = line.Distance(n(2), n(2))
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	_, err = line.Distance(n(0), n(9))
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestDistanceSymmetric(t *testing.T) {
	for _, topo := range []*Topology{Ring(7), SquareGrid(3, 3, 1), tShape(), FullyConnected(4)} {
		nodes := topo.Nodes()
		for _, a := range nodes {
			for _, b := range nodes {
				ab, err := topo.Distance(a, b)
				require.NoError(t, err)
				ba, err := topo.Distance(b, a)
				require.NoError(t, err)
				assert.Equal(t, ab, ba, "distance(%v,%v)", a, b)
			}
		}
	}
}

func TestDiameter(t *testing.T) {
	tests := []struct {
		name string
		topo *Topology
		want int
	}{
		{name: "line", topo: Line(4), want: 3},
		{name: "ring", topo: Ring(4), want: 2},
		{name: "grid", topo: SquareGrid(2, 3, 1), want: 3},
		{name: "complete", topo: FullyConnected(5), want: 1},
		{name: "single", topo: Line(1), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.topo.Diameter()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiameterErrors(t *testing.T) {
	_, err := New().Diameter()
	assert.ErrorIs(t, err, ErrEmpty)

	split := FromEdges([2]Node{n(0), n(1)}, [2]Node{n(2), n(3)})
	_, err = split.Diameter()
	assert.ErrorIs(t, err, ErrDisconnected)

	_, err = split.Distance(n(0), n(2))
	assert.ErrorIs(t, err, ErrDisconnected)

	_, err = split.Path(n(0), n(3))
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestNodesAtDistance(t *testing.T) {
	ring := Ring(4)

	got, err := ring.NodesAtDistance(n(0), 1)
	require.NoError(t, err)
	assert.Equal(t, []Node{n(1), n(3)}, got)

	got, err = ring.NodesAtDistance(n(0), 2)
	require.NoError(t, err)
	assert.Equal(t, []Node{n(2)}, got)

	got, err = ring.NodesAtDistance(n(0), 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ring.NodesAtDistance(n(0), -1)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestPath(t *testing.T) {
	path, err := Line(4).Path(n(0), n(3))
	require.NoError(t, err)
	assert.Equal(t, []Node{n(0), n(1), n(2), n(3)}, path)

	// Both directions around the ring are shortest; expansion in node order
	// goes through node[1].
	path, err = Ring(4).Path(n(0), n(2))
	require.NoError(t, err)
	assert.Equal(t, []Node{n(0), n(1), n(2)}, path)
}

func TestDegrees(t *testing.T) {
	line := Line(4)
	assert.Equal(t, []Node{n(1), n(2)}, line.MaxDegreeNodes())
	assert.Equal(t, []Node{n(0), n(3)}, line.MinDegreeNodes())
	assert.Equal(t, []Node{n(0), n(2)}, line.Neighbours(n(1)))
	assert.Equal(t, 0, line.Degree(n(7)))
}

func TestDistanceProfile(t *testing.T) {
	line := Line(3)
	p, err := line.DistanceProfile(n(1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, p)

	p, err = line.DistanceProfile(n(0))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, p)

	split := FromEdges([2]Node{n(0), n(1)}, [2]Node{n(2), n(3)})
	p, err = split.DistanceProfile(n(0))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 1}, p)
}

func TestConnectivityMatrix(t *testing.T) {
	topo := New(WithDirected())
	require.NoError(t, topo.AddEdge(n(0), n(1), 1))
	require.NoError(t, topo.AddEdge(n(2), n(1), 1))

	nodes, m := topo.ConnectivityMatrix()
	assert.Equal(t, []Node{n(0), n(1), n(2)}, nodes)
	for i := range m {
		for j := range m {
			assert.Equal(t, m[i][j], m[j][i], "matrix must be symmetric at %d,%d", i, j)
		}
	}
	assert.True(t, m[0][1])
	assert.True(t, m[1][2])
	assert.False(t, m[0][2])
}

func TestValidOperation(t *testing.T) {
	directed := New(WithDirected())
	require.NoError(t, directed.AddEdge(n(0), n(1), 1))
	assert.True(t, directed.ValidOperation(n(0), n(1)))
	assert.False(t, directed.ValidOperation(n(1), n(0)))

	undirected := Line(3)
	assert.True(t, undirected.ValidOperation(n(1), n(0)))
	assert.True(t, undirected.ValidOperation(n(2)))
	assert.False(t, undirected.ValidOperation(n(5)))
	assert.False(t, undirected.ValidOperation(n(0), n(2)))
	assert.False(t, undirected.ValidOperation(n(1), n(1)))

	// Bridges need both hops.
	assert.True(t, undirected.ValidOperation(n(0), n(1), n(2)))
	assert.False(t, undirected.ValidOperation(n(0), n(2), n(1)))
	assert.False(t, undirected.ValidOperation(n(0), n(1), n(2), n(0)))
}

func TestCoupled(t *testing.T) {
	directed := New(WithDirected())
	require.NoError(t, directed.AddEdge(n(0), n(1), 1))
	require.NoError(t, directed.AddEdge(n(1), n(2), 1))

	tests := []struct {
		name  string
		nodes []Node
		valid bool
		want  bool
	}{
		{"forward", []Node{n(0), n(1)}, true, true},
		{"reversed", []Node{n(1), n(0)}, false, true},
		{"not adjacent", []Node{n(0), n(2)}, false, false},
		{"forward bridge", []Node{n(0), n(1), n(2)}, true, true},
		{"reversed bridge", []Node{n(2), n(1), n(0)}, false, true},
		{"same node", []Node{n(1), n(1)}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, directed.ValidOperation(tt.nodes...))
			assert.Equal(t, tt.want, directed.Coupled(tt.nodes...))
		})
	}
}

func TestAddEdge(t *testing.T) {
	topo := New()
	assert.ErrorIs(t, topo.AddEdge(n(0), n(0), 1), ErrSelfLoop)

	require.NoError(t, topo.AddEdge(n(0), n(1), 5))
	require.NoError(t, topo.AddEdge(n(1), n(2), 0))
	w, ok := topo.Weight(n(1), n(0))
	assert.True(t, ok)
	assert.Equal(t, 5, w)
	w, _ = topo.Weight(n(1), n(2))
	assert.Equal(t, 1, w)
	assert.Equal(t, 2, topo.EdgeCount())
	assert.Len(t, topo.Edges(), 2)
}

func TestRemoveNodeAndCompact(t *testing.T) {
	topo := Line(4)
	assert.True(t, topo.RemoveNode(n(1)))
	assert.False(t, topo.RemoveNode(n(1)))

	assert.False(t, topo.HasNode(n(1)))
	assert.Equal(t, 3, topo.NodeCount())
	assert.Empty(t, topo.Neighbours(n(0)))
	_, err := topo.Distance(n(0), n(2))
	assert.ErrorIs(t, err, ErrDisconnected)

	topo.Compact()
	d, err := topo.Distance(n(2), n(3))
	require.NoError(t, err)
	assert.Equal(t, 1, d)
	assert.Equal(t, []Node{n(3)}, topo.Neighbours(n(2)))
	assert.Equal(t, []Node{n(0), n(2), n(3)}, topo.Nodes())
}

func TestRemoveEdge(t *testing.T) {
	topo := Ring(4)
	assert.True(t, topo.RemoveEdge(n(3), n(0)))
	assert.False(t, topo.RemoveEdge(n(0), n(2)))
	d, err := topo.Distance(n(0), n(3))
	require.NoError(t, err)
	assert.Equal(t, 3, d)
}

func TestSubgraph(t *testing.T) {
	sub, err := Ring(4).Subgraph([]Node{n(0), n(1), n(2)})
	require.NoError(t, err)
	assert.Equal(t, 3, sub.NodeCount())
	assert.Equal(t, 2, sub.EdgeCount())
	assert.False(t, sub.Connected(n(0), n(2)))

	_, err = Ring(4).Subgraph([]Node{n(0), n(9)})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGenerators(t *testing.T) {
	grid := SquareGrid(2, 3, 1)
	assert.Equal(t, 6, grid.NodeCount())
	assert.Equal(t, 7, grid.EdgeCount())

	cube := SquareGrid(2, 2, 2)
	assert.Equal(t, 8, cube.NodeCount())
	assert.Equal(t, 12, cube.EdgeCount())

	assert.Equal(t, 4, Ring(4).EdgeCount())
	assert.Equal(t, 1, Ring(2).EdgeCount())
	assert.Equal(t, 10, FullyConnected(5).EdgeCount())
}
