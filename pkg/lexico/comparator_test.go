package lexico

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/topology"
)

var n = qubit.Node

// tShape is n0-n1-n2 with n1-n3-n4 hanging off n1; diameter 3.
func tShape() *topology.Topology {
	return topology.FromEdges(
		[2]Node{n(0), n(1)},
		[2]Node{n(1), n(2)},
		[2]Node{n(1), n(3)},
		[2]Node{n(3), n(4)},
	)
}

func newComparator(t *testing.T) *Comparator {
	t.Helper()
	c, err := New(tShape(), map[Node]Node{n(0): n(3), n(2): n(4)})
	require.NoError(t, err)
	return c
}

func TestCost(t *testing.T) {
	c := newComparator(t)
	assert.Equal(t, 3, c.Diameter())
	assert.Equal(t, Vector{2, 2, 0, 0}, c.Cost())
	assert.Equal(t, n(0), c.Partner(n(3)))
	assert.Equal(t, n(1), c.Partner(n(1)))
}

func TestCostAfterSwap(t *testing.T) {
	tests := []struct {
		name string
		swap Swap
		want Vector
	}{
		{name: "moves far pair closer", swap: Swap{A: n(1), B: n(2)}, want: Vector{0, 4, 0, 0}},
		{name: "reversed endpoints", swap: Swap{A: n(2), B: n(1)}, want: Vector{0, 4, 0, 0}},
		{name: "partners", swap: Swap{A: n(3), B: n(4)}, want: Vector{2, 2, 0, 0}},
		{name: "one interacting end", swap: Swap{A: n(1), B: n(3)}, want: Vector{2, 0, 2, 0}},
		{name: "other pair", swap: Swap{A: n(0), B: n(1)}, want: Vector{2, 0, 2, 0}},
		{name: "noop", swap: Swap{A: n(1), B: n(1)}, want: Vector{2, 2, 0, 0}},
		{name: "unknown node", swap: Swap{A: n(1), B: n(9)}, want: Vector{2, 2, 0, 0}},
	}
	c := newComparator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.CostAfterSwap(tt.swap))
		})
	}
	assert.Equal(t, Vector{2, 2, 0, 0}, c.Cost(), "evaluating swaps must not change the comparator")
}

func TestCostAfterSwapMatchesRecompute(t *testing.T) {
	topo := topology.SquareGrid(3, 3, 1)
	inter := map[Node]Node{n(0): n(8), n(2): n(6), n(4): n(5)}
	c, err := New(topo, inter)
	require.NoError(t, err)

	for _, e := range topo.Edges() {
		s := Swap{A: e.From, B: e.To}
		moved := make(map[Node]Node, len(inter))
		at := func(x Node) Node {
			switch x {
			case s.A:
				return s.B
			case s.B:
				return s.A
			}
			return x
		}
		for a, b := range inter {
			moved[at(a)] = at(b)
		}
		fresh, err := New(topo, moved)
		require.NoError(t, err)
		assert.Equal(t, fresh.Cost(), c.CostAfterSwap(s), "swap %v", s)
	}
}

func TestPruneToBest(t *testing.T) {
	c := newComparator(t)
	var all []Swap
	for _, e := range tShape().Edges() {
		all = append(all, Swap{A: e.From, B: e.To})
	}
	assert.Equal(t, []Swap{{A: n(1), B: n(2)}}, c.PruneToBest(all))

	// Ties are kept in input order.
	tied := []Swap{{A: n(1), B: n(3)}, {A: n(0), B: n(1)}}
	assert.Equal(t, tied, c.PruneToBest(tied))

	assert.Empty(t, c.PruneToBest(nil))
}

func TestNewErrors(t *testing.T) {
	_, err := New(tShape(), map[Node]Node{n(0): n(7)})
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = New(tShape(), map[Node]Node{n(0): n(1), n(1): n(2)})
	assert.ErrorIs(t, err, ErrInconsistent)

	split := topology.FromEdges([2]Node{n(0), n(1)}, [2]Node{n(2), n(3)})
	_, err = New(split, nil)
	assert.ErrorIs(t, err, topology.ErrDisconnected)

	_, err = New(topology.New(), nil)
	assert.ErrorIs(t, err, topology.ErrEmpty)
}

func TestSelfEntriesIgnored(t *testing.T) {
	c, err := New(topology.Line(3), map[Node]Node{n(0): n(0), n(1): n(2)})
	require.NoError(t, err)
	assert.Equal(t, Vector{0, 2, 0}, c.Cost())
}

func TestCompare(t *testing.T) {
	assert.Negative(t, Compare(Vector{0, 4, 0}, Vector{2, 2, 0}))
	assert.Positive(t, Compare(Vector{1, 0, 0}, Vector{0, 9, 9}))
	assert.Zero(t, Compare(Vector{1, 2}, Vector{1, 2}))
}

func TestSwap(t *testing.T) {
	s := Swap{A: n(3), B: n(1)}
	assert.Equal(t, Swap{A: n(1), B: n(3)}, s.Normalize())
	assert.True(t, s.Equal(Swap{A: n(1), B: n(3)}))
	assert.False(t, s.IsNoop())
	assert.True(t, Swap{A: n(2), B: n(2)}.IsNoop())
	assert.Equal(t, "swap(node[3], node[1])", s.String())
	assert.Negative(t, CompareSwaps(Swap{A: n(0), B: n(3)}, Swap{A: n(1), B: n(2)}))
}

func TestCostAfterSwapUnderflowPanics(t *testing.T) {
	c := newComparator(t)
	// n0-n3 sits in bucket 1; emptying it leaves nothing to move out.
	c.cost[1] = 0

	assert.PanicsWithValue(t, "lexico: cost bucket 1 underflow moving swap(node[0], node[1])", func() {
		c.CostAfterSwap(Swap{A: n(0), B: n(1)})
	})
	assert.Panics(t, func() {
		c.PruneToBest([]Swap{{A: n(0), B: n(1)}})
	})
	assert.NotPanics(t, func() {
		c.CostAfterSwap(Swap{A: n(0), B: n(0)})
	}, "a no-op swap never touches the buckets")
}
