package router

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/qroute/pkg/frontier"
	"github.com/matzehuels/qroute/pkg/observability"
)

const nameMultiGateReorder = "multi_gate_reorder"

// Defaults for MultiGateReorder.
const (
	DefaultReorderDepth = 10
	DefaultReorderSize  = 10
)

// MultiGateReorder emits two-qubit gates that are already executable where
// they stand by commuting them past the operations ahead of them. Gates
// commute on a shared qubit when both are diagonal in the same Pauli basis
// there, so a CX moves past another CX sharing only its control, or past a
// Z rotation on its control.
//
// It applies only to frontiers implementing [frontier.Reorderer] and only
// when some gate can move, so placing it before LexiRoute lets LexiRoute
// see the interactions that remain.
type MultiGateReorder struct {
	// MaxDepth bounds how far past the cut candidates are looked for.
	MaxDepth int `json:"max_depth"`
	// MaxSize bounds how many candidates are examined per call.
	MaxSize int `json:"max_size"`
}

// DefaultMultiGateReorder returns a MultiGateReorder with the default
// limits.
func DefaultMultiGateReorder() MultiGateReorder {
	return MultiGateReorder{MaxDepth: DefaultReorderDepth, MaxSize: DefaultReorderSize}
}

func (m MultiGateReorder) validate() error {
	if m.MaxDepth < 1 || m.MaxSize < 1 {
		return fmt.Errorf("router: %s max_depth and max_size must be positive, got %d and %d", nameMultiGateReorder, m.MaxDepth, m.MaxSize)
	}
	return nil
}

// Name implements Method.
func (MultiGateReorder) Name() string { return nameMultiGateReorder }

// MarshalJSON implements json.Marshaler.
func (m MultiGateReorder) MarshalJSON() ([]byte, error) {
	type plain MultiGateReorder
	return json.Marshal(struct {
		Name string `json:"name"`
		plain
	}{nameMultiGateReorder, plain(m)})
}

// Check implements Method.
func (m MultiGateReorder) Check(p *Pass) bool {
	r, ok := p.Frontier.(frontier.Reorderer)
	return ok && r.Reorderable(m.MaxDepth, m.MaxSize)
}

// Route implements Method.
func (m MultiGateReorder) Route(p *Pass) error {
	r, ok := p.Frontier.(frontier.Reorderer)
	if !ok {
		return fmt.Errorf("%w: %T cannot reorder", ErrNoMethod, p.Frontier)
	}
	moved := r.Reorder(m.MaxDepth, m.MaxSize)
	if len(moved) == 0 {
		return fmt.Errorf("%w: nothing to reorder", ErrRoutingFailure)
	}
	for _, nodes := range moved {
		p.Ctx.record(Action{Kind: ActionReorder, Nodes: nodes, Method: m.Name()})
		p.Stats.Reorders++
		p.Logger.Debug("reorder", "method", m.Name(), "nodes", nodes)
		observability.Routing().OnAction(p.ctx, m.Name(), ActionReorder.String())
	}
	return nil
}
