package router

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/frontier"
	"github.com/matzehuels/qroute/pkg/lexico"
	"github.com/matzehuels/qroute/pkg/topology"
)

func TestMethodJSON(t *testing.T) {
	data, err := json.Marshal(DefaultMethods())
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name":"lexi_labelling"},
		{"name":"lexi_route","depth":10,"bridge_depth":2,"max_advance":10}
	]`, string(data))

	ms, err := DecodeMethods(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultMethods(), ms)
}

func TestDecodeMethod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Method
		wantErr bool
	}{
		{"labelling", `{"name":"lexi_labelling"}`, LexiLabelling{}, false},
		{"shortest path", `{"name":"shortest_path"}`, ShortestPath{}, false},
		{"partial settings", `{"name":"lexi_route","depth":3}`, LexiRoute{Depth: 3, BridgeDepth: 2, MaxAdvance: 10}, false},
		{"no bridge", `{"name":"lexi_route","bridge_depth":0}`, LexiRoute{Depth: 10, BridgeDepth: 0, MaxAdvance: 10}, false},
		{"reorder defaults", `{"name":"multi_gate_reorder","depth":3}`, DefaultMultiGateReorder(), false},
		{"reorder limits", `{"name":"multi_gate_reorder","max_depth":4,"max_size":2}`, MultiGateReorder{MaxDepth: 4, MaxSize: 2}, false},
		{"reorder zero size", `{"name":"multi_gate_reorder","max_size":0}`, nil, true},
		{"unknown", `{"name":"sabre"}`, nil, true},
		{"zero depth", `{"name":"lexi_route","depth":0}`, nil, true},
		{"negative bridge depth", `{"name":"lexi_route","bridge_depth":-1}`, nil, true},
		{"malformed", `{"name":`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMethod([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("lexi_route")
	require.NoError(t, err)
	assert.Equal(t, DefaultLexiRoute(), m)

	_, err = ParseMethod("nope")
	assert.Error(t, err)

	assert.Equal(t, []string{"lexi_labelling", "lexi_route", "multi_gate_reorder", "shortest_path"}, Methods())
	assert.Equal(t, []string{"lexi_labelling", "shortest_path"}, MethodNames([]Method{LexiLabelling{}, ShortestPath{}}))
}

func TestRegisterTwicePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(nameShortestPath, func([]byte) (Method, error) { return ShortestPath{}, nil })
	})
}

func TestContextClone(t *testing.T) {
	c := NewContext()
	c.Labelling[q(0)] = n(1)
	c.Interactions[n(1)] = n(2)
	c.LastSwap = Swap{A: n(1), B: n(2)}
	c.record(Action{Kind: ActionSwap, Nodes: []Node{n(1), n(2)}})

	d := c.Clone()
	d.Labelling[q(1)] = n(3)
	d.Interactions[n(2)] = n(1)
	d.Actions = append(d.Actions, Action{Kind: ActionRelabel})
	d.LastSwap = Swap{}

	assert.Len(t, c.Labelling, 1)
	assert.Len(t, c.Interactions, 1)
	assert.Len(t, c.Actions, 1)
	assert.True(t, c.hasLastSwap())
	assert.False(t, d.hasLastSwap())
}

func TestActionKindText(t *testing.T) {
	data, err := json.Marshal(Action{Kind: ActionBridge, Nodes: []Node{n(0), n(1), n(2)}, Method: "lexi_route"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"bridge","nodes":["node[0]","node[1]","node[2]"],"method":"lexi_route"}`, string(data))

	var a Action
	require.NoError(t, json.Unmarshal(data, &a))
	assert.Equal(t, ActionBridge, a.Kind)
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"teleport"}`), &a))
}

// testPass builds a pass over a frontier with q[i] seeded on node[i].
func testPass(t *testing.T, topo *topology.Topology, c *circuit.Circuit, k int) *Pass {
	t.Helper()
	f, err := frontier.New(c, topo, frontier.WithPlacement(identity(k)))
	require.NoError(t, err)
	f.AdvanceResolved()
	p := &Pass{
		Topology: topo,
		Frontier: f,
		Ctx:      NewContext(),
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
		Stats:    &Stats{},
		ctx:      t.Context(),
	}
	require.NoError(t, New(topo).refresh(p))
	return p
}

func TestCandidates(t *testing.T) {
	p := testPass(t, topology.Ring(4), circuit.New(4, 0).CX(q(0), q(2)), 4)

	all := []Swap{{n(0), n(1)}, {n(0), n(3)}, {n(1), n(2)}, {n(2), n(3)}}
	assert.Equal(t, all, candidates(p, p.Ctx.Interactions))

	p.Ctx.LastSwap = Swap{A: n(3), B: n(2)}
	assert.Equal(t, all[:3], candidates(p, p.Ctx.Interactions))
}

func TestDecreasing(t *testing.T) {
	// node[1] and node[3] interact; node[0], node[2] and node[4] are idle.
	p := testPass(t, topology.Line(5), circuit.New(5, 0).CX(q(1), q(3)), 5)

	tests := []struct {
		swap Swap
		keep bool
	}{
		{Swap{n(0), n(1)}, false}, // moves node[1] away from its partner
		{Swap{n(1), n(2)}, true},
		{Swap{n(2), n(3)}, true},
		{Swap{n(3), n(4)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.swap.String(), func(t *testing.T) {
			got := decreasing(p, []Swap{tt.swap})
			assert.Equal(t, tt.keep, len(got) == 1)
		})
	}
}

func TestDecreasingSkipsPartners(t *testing.T) {
	p := testPass(t, topology.Ring(3), circuit.New(3, 0).CX(q(0), q(1)).CX(q(1), q(2)), 3)
	p.Ctx.Interactions = map[Node]Node{n(0): n(1), n(1): n(0)}

	assert.Empty(t, decreasing(p, []Swap{{n(0), n(1)}}))
}

// Every swap LexiRoute commits improves the distance vector of the layer
// it was chosen for.
func TestLexiRouteImprovesCost(t *testing.T) {
	topo := topology.SquareGrid(3, 3, 1)
	c := circuit.New(9, 0).CX(q(0), q(8)).CX(q(2), q(6)).CX(q(1), q(7)).CX(q(0), q(2))
	p := testPass(t, topo, c, 9)
	m := DefaultLexiRoute()

	for step := 0; !p.Frontier.Done() && step < 50; step++ {
		require.NoError(t, New(topo).refresh(p))
		require.True(t, m.Check(p))

		before, err := lexico.New(topo, p.Ctx.Interactions)
		require.NoError(t, err)
		swaps := p.Stats.Swaps
		require.NoError(t, m.Route(p))

		if p.Stats.Swaps > swaps && p.Stats.Fallbacks == 0 {
			last := p.Ctx.LastSwap
			assert.Negative(t, lexico.Compare(before.CostAfterSwap(last), before.Cost()), "swap %v", last)
		}
		p.Frontier.AdvanceResolved()
	}
	assert.True(t, p.Frontier.Done())
}

func TestMultiGateReorderCheck(t *testing.T) {
	tests := []struct {
		name string
		c    *circuit.Circuit
		want bool
	}{
		{"shared control", circuit.New(3, 0).CX(q(0), q(2)).CX(q(0), q(1)), true},
		{"hadamard between", circuit.New(3, 0).CX(q(0), q(2)).H(q(0)).CX(q(0), q(1)), false},
		{"nothing behind", circuit.New(3, 0).CX(q(0), q(2)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPass(t, topology.Line(3), tt.c, 3)
			assert.Equal(t, tt.want, DefaultMultiGateReorder().Check(p))
		})
	}
}
