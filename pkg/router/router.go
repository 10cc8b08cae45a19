package router

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/frontier"
	"github.com/matzehuels/qroute/pkg/observability"
	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/topology"
)

// Stats counts what a routing pass did. Reorders counts gates emitted ahead
// of program order. Reversed counts routed operations that run against the
// direction of a coupling on a directed topology.
type Stats struct {
	Iterations int `json:"iterations"`
	Swaps      int `json:"swaps"`
	Bridges    int `json:"bridges"`
	Fallbacks  int `json:"fallbacks"`
	Relabels   int `json:"relabels"`
	Reorders   int `json:"reorders,omitempty"`
	Reversed   int `json:"reversed,omitempty"`
}

// Result is the outcome of a successful routing pass.
type Result struct {
	// Circuit is the routed circuit over the topology's nodes. It is nil
	// when the frontier cannot produce one.
	Circuit *circuit.Circuit `json:"-"`
	Stats   Stats            `json:"stats"`
	Actions []Action         `json:"actions"`
	// Initial and Final map every placed circuit qubit to the node it
	// started on and the node it ended on.
	Initial  map[Unit]Node `json:"initial"`
	Final    map[Unit]Node `json:"final"`
	Duration time.Duration `json:"duration"`
}

// Option configures a Router.
type Option func(*Router)

// WithMethods sets the methods tried in order on every iteration.
func WithMethods(ms ...Method) Option {
	return func(r *Router) { r.methods = ms }
}

// WithLogger sets the logger. Routing decisions are logged at debug level.
func WithLogger(l *log.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxIterations caps the number of iterations of one pass. Zero derives
// the cap from the size of the circuit and topology.
func WithMaxIterations(n int) Option {
	return func(r *Router) { r.maxIterations = n }
}

// Router routes circuits onto one topology.
type Router struct {
	topo          *topology.Topology
	methods       []Method
	logger        *log.Logger
	maxIterations int
}

// DefaultMethods returns LexiLabelling followed by LexiRoute with default
// settings.
func DefaultMethods() []Method {
	return []Method{LexiLabelling{}, DefaultLexiRoute()}
}

// New returns a router for t.
func New(t *topology.Topology, opts ...Option) *Router {
	r := &Router{
		topo:    t,
		methods: DefaultMethods(),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Topology returns the topology the router targets.
func (r *Router) Topology() *topology.Topology { return r.topo }

// sized is implemented by frontiers that know how many operations they
// hold.
type sized interface {
	Len() int
}

// routed is implemented by frontiers that can produce the routed circuit.
type routed interface {
	Routed() *circuit.Circuit
}

// Route drives f to completion. Each iteration emits whatever is
// executable and runs the first method whose Check passes. Errors carry a
// code from pkg/errors; on error f keeps every action committed so far.
//
// ctx is checked between iterations only.
func (r *Router) Route(ctx context.Context, f frontier.Frontier) (*Result, error) {
	start := time.Now()
	if _, err := r.topo.Diameter(); err != nil {
		return nil, coded(err)
	}
	if len(r.methods) == 0 {
		return nil, coded(fmt.Errorf("%w: no methods configured", ErrNoMethod))
	}

	p := &Pass{
		Topology: r.topo,
		Frontier: f,
		Ctx:      NewContext(),
		Logger:   r.logger,
		Stats:    &Stats{},
		ctx:      ctx,
	}
	limit := r.limit(f)

	f.AdvanceResolved()
	for !f.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.Stats.Iterations >= limit {
			return nil, coded(fmt.Errorf("%w: no progress after %d iterations", ErrRoutingFailure, limit))
		}
		p.Stats.Iterations++

		if err := r.refresh(p); err != nil {
			return nil, coded(err)
		}
		m := r.pick(p)
		if m == nil {
			return nil, coded(fmt.Errorf("%w: %d interactions, %d unplaced", ErrNoMethod, len(p.Ctx.Interactions), len(f.Unplaced())))
		}
		r.logger.Debug("iteration", "n", p.Stats.Iterations, "method", m.Name(), "interactions", len(p.Ctx.Interactions)/2)
		if err := m.Route(p); err != nil {
			return nil, coded(err, interacting(p.Ctx.Interactions)...)
		}
		f.AdvanceResolved()
	}

	pl := f.Placement()
	res := &Result{
		Stats:    *p.Stats,
		Actions:  p.Ctx.Actions,
		Initial:  pl.Initial,
		Final:    pl.Final,
		Duration: time.Since(start),
	}
	if rf, ok := f.(routed); ok {
		res.Circuit = rf.Routed()
		res.Stats.Reversed = reversed(r.topo, res.Circuit)
	}
	observability.Routing().OnPassComplete(ctx, res.Stats.Iterations, res.Stats.Swaps, res.Stats.Bridges, res.Duration)
	r.logger.Debug("routed", "iterations", res.Stats.Iterations, "swaps", res.Stats.Swaps, "bridges", res.Stats.Bridges)
	return res, nil
}

// refresh reloads the labelling and interactions from the frontier.
func (r *Router) refresh(p *Pass) error {
	if err := p.Frontier.Resolvable(); err != nil {
		return err
	}
	inter, err := p.Frontier.Interactions(frontier.ModeAll)
	if err != nil {
		return err
	}
	p.Ctx.Interactions = inter
	p.Ctx.Labelling = p.Frontier.Placement().Final
	return nil
}

func (r *Router) pick(p *Pass) Method {
	for _, m := range r.methods {
		if m.Check(p) {
			return m
		}
	}
	return nil
}

// limit bounds the iterations of one pass. Every interaction needs at most
// one labelling step and diameter routing steps.
func (r *Router) limit(f frontier.Frontier) int {
	if r.maxIterations > 0 {
		return r.maxIterations
	}
	ops := 1024
	if s, ok := f.(sized); ok {
		ops = s.Len()
	}
	return (ops + 1) * (r.topo.NodeCount() + 2)
}

// reversed counts the multi-qubit operations of c that are coupled on t
// only against an edge direction.
func reversed(t *topology.Topology, c *circuit.Circuit) int {
	if !t.Directed() {
		return 0
	}
	count := 0
	for _, op := range c.Ops {
		if op.IsBarrier() || len(op.Qubits) < 2 {
			continue
		}
		if !t.ValidOperation(op.Qubits...) {
			count++
		}
	}
	return count
}

func interacting(inter map[Node]Node) []Node {
	out := make([]Node, 0, len(inter))
	for a := range inter {
		out = append(out, a)
	}
	qubit.Sort(out)
	return out
}
