package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qroute/pkg/circuit"
	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/frontier"
	"github.com/matzehuels/qroute/pkg/observability"
	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/topology"
)

var (
	q = qubit.Q
	n = qubit.Node
)

// identity seeds q[i] onto node[i] for i < k.
func identity(k int) map[Unit]Node {
	out := make(map[Unit]Node, k)
	for i := range k {
		out[q(i)] = n(i)
	}
	return out
}

func route(t *testing.T, topo *topology.Topology, c *circuit.Circuit, seeds map[Unit]Node, opts ...Option) (*Result, error) {
	t.Helper()
	f, err := frontier.New(c, topo, frontier.WithPlacement(seeds))
	require.NoError(t, err)
	return New(topo, opts...).Route(context.Background(), f)
}

func gates(c *circuit.Circuit) []string {
	out := make([]string, len(c.Ops))
	for i, op := range c.Ops {
		out[i] = op.String()
	}
	return out
}

// requireLegal checks every multi-qubit operation acts on coupled nodes.
func requireLegal(t *testing.T, topo *topology.Topology, c *circuit.Circuit) {
	t.Helper()
	for _, op := range c.Ops {
		if op.IsBarrier() || len(op.Qubits) < 2 {
			continue
		}
		require.True(t, topo.ValidOperation(op.Qubits...), "illegal %s", op)
	}
}

// requireReplay checks that applying the routed swaps to the initial
// placement gives the final placement.
func requireReplay(t *testing.T, res *Result) {
	t.Helper()
	at := make(map[Node]Unit)
	for u, node := range res.Initial {
		at[node] = u
	}
	for _, op := range res.Circuit.Ops {
		if op.Gate != circuit.GateSwap {
			continue
		}
		a, b := op.Qubits[0], op.Qubits[1]
		ua, okA := at[a]
		ub, okB := at[b]
		delete(at, a)
		delete(at, b)
		if okA {
			at[b] = ua
		}
		if okB {
			at[a] = ub
		}
	}
	got := make(map[Unit]Node)
	for node, u := range at {
		got[u] = node
	}
	require.Equal(t, res.Final, got)
}

func TestRouteDistanceTwoBridges(t *testing.T) {
	// Nothing follows the CX, so the swap gains nothing over a BRIDGE.
	tests := []struct {
		name string
		topo *topology.Topology
	}{
		{"line", topology.Line(3)},
		{"ring", topology.Ring(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := circuit.New(2, 0).CX(q(0), q(1))
			seeds := map[Unit]Node{q(0): n(0), q(1): n(2)}

			res, err := route(t, tt.topo, c, seeds)
			require.NoError(t, err)

			assert.Equal(t, []string{"bridge node[0],node[1],node[2];"}, gates(res.Circuit))
			assert.Equal(t, 0, res.Stats.Swaps)
			assert.Equal(t, 1, res.Stats.Bridges)
			require.Len(t, res.Actions, 1)
			assert.Equal(t, ActionBridge, res.Actions[0].Kind)
			assert.Equal(t, seeds, res.Final)
		})
	}
}

func TestRouteDistanceTwoSwapsWithoutBridge(t *testing.T) {
	topo := topology.Ring(4)
	c := circuit.New(2, 0).CX(q(0), q(1))
	lr := DefaultLexiRoute()
	lr.BridgeDepth = 0

	res, err := route(t, topo, c, map[Unit]Node{q(0): n(0), q(1): n(2)}, WithMethods(LexiLabelling{}, lr))
	require.NoError(t, err)

	assert.Equal(t, []string{"swap node[2],node[3];", "cx node[0],node[3];"}, gates(res.Circuit))
	assert.Equal(t, 1, res.Stats.Swaps)
	assert.Equal(t, 0, res.Stats.Bridges)
	assert.Equal(t, map[Unit]Node{q(0): n(0), q(1): n(3)}, res.Final)
	requireReplay(t, res)
}

func TestRouteLineDistanceThree(t *testing.T) {
	topo := topology.Line(4)
	c := circuit.New(4, 0).CX(q(0), q(3))

	res, err := route(t, topo, c, identity(4))
	require.NoError(t, err)

	// One swap brings q[3] within two hops, then the CX becomes a BRIDGE.
	assert.Equal(t, []string{
		"swap node[2],node[3];",
		"bridge node[0],node[1],node[2];",
	}, gates(res.Circuit))
	assert.Equal(t, 1, res.Stats.Swaps)
	assert.Equal(t, 1, res.Stats.Bridges)
	assert.Equal(t, 0, res.Stats.Fallbacks)
	assert.Equal(t, map[Unit]Node{q(0): n(0), q(1): n(1), q(2): n(3), q(3): n(2)}, res.Final)
	requireReplay(t, res)
}

func TestRouteShortestPathOnly(t *testing.T) {
	topo := topology.Line(4)
	c := circuit.New(4, 0).CX(q(0), q(3))

	res, err := route(t, topo, c, identity(4), WithMethods(ShortestPath{}))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"swap node[0],node[1];",
		"swap node[1],node[2];",
		"cx node[2],node[3];",
	}, gates(res.Circuit))
	assert.Equal(t, 2, res.Stats.Swaps)
	assert.Equal(t, 1, res.Stats.Fallbacks)
	requireReplay(t, res)
}

func TestRouteBridge(t *testing.T) {
	// After cx q1,q3 both neighbours of node[2] are busy on their own side,
	// so moving either costs more than bridging through node[2].
	topo := topology.Line(5)
	c := circuit.New(5, 0).CX(q(1), q(3)).CX(q(1), q(0)).CX(q(3), q(4))

	res, err := route(t, topo, c, identity(5))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"bridge node[1],node[2],node[3];",
		"cx node[1],node[0];",
		"cx node[3],node[4];",
	}, gates(res.Circuit))
	assert.Equal(t, 1, res.Stats.Bridges)
	assert.Equal(t, 0, res.Stats.Swaps)
	require.Len(t, res.Actions, 1)
	assert.Equal(t, ActionBridge, res.Actions[0].Kind)
	assert.Equal(t, identity(5), res.Final)
}

func TestRouteBridgeDisabled(t *testing.T) {
	topo := topology.Line(5)
	c := circuit.New(5, 0).CX(q(1), q(3)).CX(q(1), q(0)).CX(q(3), q(4))
	lr := DefaultLexiRoute()
	lr.BridgeDepth = 0

	res, err := route(t, topo, c, identity(5), WithMethods(LexiLabelling{}, lr))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.Bridges)
	assert.Positive(t, res.Stats.Swaps)
	requireLegal(t, topo, res.Circuit)
	requireReplay(t, res)
}

func TestRouteDisconnected(t *testing.T) {
	topo := topology.FromEdges([2]Node{n(0), n(1)}, [2]Node{n(2), n(3)})
	c := circuit.New(2, 0).CX(q(0), q(1))

	_, err := route(t, topo, c, map[Unit]Node{q(0): n(0), q(1): n(2)})
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.ErrCodeDisconnected))
	assert.True(t, errors.Is(err, topology.ErrDisconnected))
}

func TestRouteNoInteractions(t *testing.T) {
	topo := topology.Line(3)
	c := circuit.New(2, 1).H(q(0)).H(q(1)).Measure(q(0), qubit.ID{Register: "c", Index: 0})

	res, err := route(t, topo, c, identity(2))
	require.NoError(t, err)
	assert.Empty(t, res.Actions)
	assert.Equal(t, 0, res.Stats.Iterations)
	assert.Len(t, res.Circuit.Ops, 3)
}

func TestRouteAlreadyLegal(t *testing.T) {
	topo := topology.Line(3)
	c := circuit.New(2, 0).CX(q(0), q(1)).CX(q(1), q(0))

	res, err := route(t, topo, c, identity(2))
	require.NoError(t, err)
	assert.Empty(t, res.Actions)
	assert.Equal(t, []string{"cx node[0],node[1];", "cx node[1],node[0];"}, gates(res.Circuit))
}

func TestRouteDirected(t *testing.T) {
	topo := topology.New(topology.WithDirected())
	require.NoError(t, topo.AddEdge(n(0), n(1), 1))
	require.NoError(t, topo.AddEdge(n(1), n(2), 1))

	tests := []struct {
		name     string
		c        *circuit.Circuit
		want     []string
		reversed int
	}{
		{"forward", circuit.New(3, 0).CX(q(0), q(1)), []string{"cx node[0],node[1];"}, 0},
		{"against edge", circuit.New(3, 0).CX(q(1), q(0)), []string{"cx node[1],node[0];"}, 1},
		{"bridge against edges", circuit.New(3, 0).CX(q(2), q(0)), []string{"bridge node[2],node[1],node[0];"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := route(t, topo, tt.c, identity(3))
			require.NoError(t, err)
			assert.Equal(t, tt.want, gates(res.Circuit))
			assert.Equal(t, tt.reversed, res.Stats.Reversed)
			for _, op := range res.Circuit.Ops {
				assert.True(t, topo.Coupled(op.Qubits...), "uncoupled %s", op)
			}
		})
	}
}

func TestRouteMultiGateReorder(t *testing.T) {
	// cx q[0],q[1] shares only its control with the blocked cx q[0],q[2],
	// so it runs first.
	topo := topology.Line(3)
	c := circuit.New(3, 0).CX(q(0), q(2)).Gate("t", q(0)).CX(q(0), q(1))
	methods := append([]Method{DefaultMultiGateReorder()}, DefaultMethods()...)

	res, err := route(t, topo, c, identity(3), WithMethods(methods...))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"cx node[0],node[1];",
		"bridge node[0],node[1],node[2];",
		"t node[0];",
	}, gates(res.Circuit))
	assert.Equal(t, 1, res.Stats.Reorders)
	assert.Equal(t, 1, res.Stats.Bridges)
	require.Len(t, res.Actions, 2)
	assert.Equal(t, "reorder node[0],node[1]", res.Actions[0].String())
	assert.Equal(t, nameMultiGateReorder, res.Actions[0].Method)
	requireLegal(t, topo, res.Circuit)
}

func TestRouteLabelsUnplacedQubits(t *testing.T) {
	topo := topology.Line(5)
	c := circuit.New(2, 0).CX(q(0), q(1))

	res, err := route(t, topo, c, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"cx node[2],node[1];"}, gates(res.Circuit))
	assert.Equal(t, map[Unit]Node{q(0): n(2), q(1): n(1)}, res.Initial)
	assert.Equal(t, 2, res.Stats.Relabels)
	require.Len(t, res.Actions, 2)
	assert.Equal(t, "relabel q[0] -> node[2]", res.Actions[0].String())
}

func TestRoutePlacesIdleQubits(t *testing.T) {
	topo := topology.Line(3)
	c := circuit.New(2, 0).H(q(0)).H(q(1))

	res, err := route(t, topo, c, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"h node[1];", "h node[0];"}, gates(res.Circuit))
	assert.Equal(t, map[Unit]Node{q(0): n(1), q(1): n(0)}, res.Final)
}

func TestRouteMergesAncilla(t *testing.T) {
	topo := topology.Line(4)
	c := circuit.New(3, 0).CX(q(0), q(1)).CX(q(2), q(1))

	lr := DefaultLexiRoute()
	lr.BridgeDepth = 0
	res, err := route(t, topo, c, map[Unit]Node{q(0): n(0), q(1): n(2)}, WithMethods(LexiLabelling{}, lr))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"swap node[1],node[2];",
		"cx node[0],node[1];",
		"cx node[2],node[1];",
	}, gates(res.Circuit))
	assert.Equal(t, n(1), res.Initial[q(2)])
	assert.Equal(t, map[Unit]Node{q(0): n(0), q(1): n(1), q(2): n(2)}, res.Final)
	assert.Equal(t, 1, res.Stats.Relabels)
	requireReplay(t, res)
}

func TestRouteUnroutable(t *testing.T) {
	topo := topology.Line(2)
	c := circuit.New(3, 0).CX(q(0), q(1)).CX(q(1), q(2))

	_, err := route(t, topo, c, nil)
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.ErrCodeUnroutable))
	assert.True(t, errors.Is(err, ErrUnroutable))
}

func TestRouteContractViolation(t *testing.T) {
	topo := topology.Line(3)
	c := circuit.New(3, 0).Gate("ccx", q(0), q(1), q(2))

	_, err := route(t, topo, c, identity(3))
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.ErrCodeContractViolation))
}

func TestRouteNoMethod(t *testing.T) {
	topo := topology.Line(3)
	c := circuit.New(2, 0).CX(q(0), q(1))

	_, err := route(t, topo, c, nil, WithMethods(DefaultLexiRoute()))
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.ErrCodeContractViolation))
	assert.True(t, errors.Is(err, ErrNoMethod))
}

func TestRouteIterationLimit(t *testing.T) {
	topo := topology.Line(6)
	c := circuit.New(6, 0).CX(q(0), q(5))

	_, err := route(t, topo, c, identity(6), WithMaxIterations(1))
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.ErrCodeRoutingFailure))
}

func TestRouteCancelled(t *testing.T) {
	topo := topology.Line(4)
	c := circuit.New(4, 0).CX(q(0), q(3))
	f, err := frontier.New(c, topo, frontier.WithPlacement(identity(4)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(topo).Route(ctx, f)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRouteGridLegality(t *testing.T) {
	topo := topology.SquareGrid(3, 3, 1)
	c := circuit.New(9, 0)
	pairs := [][2]int{{0, 8}, {2, 6}, {1, 7}, {3, 5}, {0, 4}, {8, 2}, {6, 1}, {5, 0}, {7, 3}, {4, 8}}
	for _, p := range pairs {
		c.CX(q(p[0]), q(p[1])).H(q(p[1]))
	}

	for _, tt := range []struct {
		name    string
		seeds   map[Unit]Node
		methods []Method
	}{
		{"seeded", identity(9), DefaultMethods()},
		{"labelled", nil, DefaultMethods()},
		{"shortest path", identity(9), []Method{ShortestPath{}}},
		{"shallow", identity(9), []Method{LexiLabelling{}, LexiRoute{Depth: 1, BridgeDepth: 1, MaxAdvance: 1}}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			res, err := route(t, topo, c, tt.seeds, WithMethods(tt.methods...))
			require.NoError(t, err)
			requireLegal(t, topo, res.Circuit)
			requireReplay(t, res)
			assert.Equal(t, len(c.Ops)+res.Stats.Swaps, len(res.Circuit.Ops))
			assert.Equal(t, len(pairs), res.Circuit.GateCounts()[circuit.GateCX]+res.Stats.Bridges)
		})
	}
}

type countingHooks struct {
	observability.NoopRoutingHooks
	actions map[string]int
	passes  int
}

func (h *countingHooks) OnAction(_ context.Context, _, kind string) { h.actions[kind]++ }
func (h *countingHooks) OnPassComplete(context.Context, int, int, int, time.Duration) {
	h.passes++
}

func TestRouteEmitsHooks(t *testing.T) {
	hooks := &countingHooks{actions: map[string]int{}}
	observability.SetRoutingHooks(hooks)
	t.Cleanup(observability.Reset)

	_, err := route(t, topology.Line(4), circuit.New(4, 0).CX(q(0), q(3)), identity(4))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"swap": 1, "bridge": 1}, hooks.actions)
	assert.Equal(t, 1, hooks.passes)
}
