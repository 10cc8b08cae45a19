package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticulationPoints(t *testing.T) {
	assert.Equal(t, []Node{n(1), n(3)}, tShape().ArticulationPoints())
	assert.Empty(t, Ring(5).ArticulationPoints())
	assert.Equal(t, []Node{n(1), n(2)}, Line(4).ArticulationPoints())

	// Two triangles sharing node[2].
	bowtie := FromEdges(
		[2]Node{n(0), n(1)}, [2]Node{n(1), n(2)}, [2]Node{n(2), n(0)},
		[2]Node{n(2), n(3)}, [2]Node{n(3), n(4)}, [2]Node{n(4), n(2)},
	)
	assert.Equal(t, []Node{n(2)}, bowtie.ArticulationPoints())
}

func TestSubgraphArticulationPoints(t *testing.T) {
	tests := []struct {
		name string
		sub  []Node
		want []Node
	}{
		{name: "cut outside subset", sub: []Node{n(0), n(2)}, want: []Node{n(1)}},
		{name: "two cuts", sub: []Node{n(0), n(4)}, want: []Node{n(1), n(3)}},
		{name: "single node", sub: []Node{n(2)}, want: nil},
		{name: "far branch", sub: []Node{n(2), n(4)}, want: []Node{n(1), n(3)}},
	}
	topo := tShape()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := topo.SubgraphArticulationPoints(tt.sub)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := topo.SubgraphArticulationPoints([]Node{n(42)})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestSubgraphArticulationPointsCycle(t *testing.T) {
	// A square with a tail: n0-n1-n2-n3-n0, n3-n4.
	topo := FromEdges(
		[2]Node{n(0), n(1)}, [2]Node{n(1), n(2)}, [2]Node{n(2), n(3)}, [2]Node{n(3), n(0)},
		[2]Node{n(3), n(4)},
	)
	got, err := topo.SubgraphArticulationPoints([]Node{n(0), n(2)})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = topo.SubgraphArticulationPoints([]Node{n(1), n(4)})
	require.NoError(t, err)
	assert.Equal(t, []Node{n(3)}, got)
}

func assertSimplePath(t *testing.T, topo *Topology, path []Node) {
	t.Helper()
	seen := map[Node]bool{}
	for i, node := range path {
		assert.False(t, seen[node], "node %v repeated", node)
		seen[node] = true
		if i > 0 {
			assert.True(t, topo.Connected(path[i-1], node), "%v and %v not coupled", path[i-1], node)
		}
	}
}

func TestLongestSimplePath(t *testing.T) {
	line := Line(5)
	path := line.LongestSimplePath(0)
	assert.Len(t, path, 5)
	assertSimplePath(t, line, path)

	grid := SquareGrid(3, 3, 1)
	path = grid.LongestSimplePath(9)
	assert.Len(t, path, 9)
	assertSimplePath(t, grid, path)

	path = grid.LongestSimplePath(4)
	assert.Len(t, path, 4)
	assertSimplePath(t, grid, path)

	assert.Empty(t, New().LongestSimplePath(3))
}

func TestLines(t *testing.T) {
	ring := Ring(6)
	lines, err := ring.Lines([]int{3, 3})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	used := map[Node]bool{}
	for _, line := range lines {
		assert.Len(t, line, 3)
		assertSimplePath(t, ring, line)
		for _, node := range line {
			assert.False(t, used[node], "node %v used twice", node)
			used[node] = true
		}
	}
	assert.Equal(t, 6, ring.NodeCount(), "Lines must not modify the receiver")

	lines, err = SquareGrid(2, 3, 1).Lines([]int{2, 4})
	require.NoError(t, err)
	assert.Len(t, lines[0], 2)
	assert.Len(t, lines[1], 4)

	_, err = ring.Lines([]int{4, 4})
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestFindWorstNode(t *testing.T) {
	worst, ok := Line(4).FindWorstNode(nil)
	require.True(t, ok)
	assert.Equal(t, n(0), worst)

	// Every node of a star except the centre is a leaf; the centre is a cut.
	star := FromEdges([2]Node{n(0), n(1)}, [2]Node{n(0), n(2)}, [2]Node{n(0), n(3)})
	worst, ok = star.FindWorstNode(nil)
	require.True(t, ok)
	assert.NotEqual(t, n(0), worst)

	_, ok = New().FindWorstNode(nil)
	assert.False(t, ok)
}

func TestRemoveWorstNodes(t *testing.T) {
	line := Line(4)
	removed := line.RemoveWorstNodes(2)
	assert.Equal(t, []Node{n(0), n(3)}, removed)
	assert.Equal(t, []Node{n(1), n(2)}, line.Nodes())

	grid := SquareGrid(3, 3, 1)
	removed = grid.RemoveWorstNodes(4)
	assert.Len(t, removed, 4)
	_, err := grid.Diameter()
	assert.NoError(t, err, "removal must keep the grid connected")
}
