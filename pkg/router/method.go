package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qroute/pkg/frontier"
	"github.com/matzehuels/qroute/pkg/observability"
	"github.com/matzehuels/qroute/pkg/topology"
)

// Pass is what a method sees while routing one circuit.
type Pass struct {
	Topology *topology.Topology
	Frontier frontier.Frontier
	Ctx      *Context
	Logger   *log.Logger
	Stats    *Stats

	ctx context.Context
}

// Method is one routing strategy. The driver asks each configured method in
// turn whether it applies to the current state and runs the first that
// does.
type Method interface {
	// Name identifies the method in configuration and in the action trace.
	Name() string

	// Check reports whether the method can make progress on the pass.
	Check(p *Pass) bool

	// Route commits one or more actions through the frontier.
	Route(p *Pass) error
}

// =============================================================================
// Pass helpers
// =============================================================================

// distance returns the hop count between two placed nodes.
func (p *Pass) distance(a, b Node) (int, error) {
	return p.Topology.Distance(a, b)
}

// far reports whether any interacting pair is more than one hop apart.
func (p *Pass) far(inter map[Node]Node) (bool, error) {
	for a, b := range inter {
		if !p.Topology.HasNode(a) || !p.Topology.HasNode(b) {
			continue
		}
		d, err := p.distance(a, b)
		if err != nil {
			return false, err
		}
		if d > 1 {
			return true, nil
		}
	}
	return false, nil
}

func (p *Pass) swap(method string, s Swap) (bool, error) {
	ok, err := p.Frontier.InsertSwap(s.A, s.B)
	if err != nil || !ok {
		return ok, err
	}
	p.Ctx.LastSwap = s
	p.Ctx.record(Action{Kind: ActionSwap, Nodes: []Node{s.A, s.B}, Method: method})
	p.Stats.Swaps++
	p.Logger.Debug("swap", "method", method, "a", s.A, "b", s.B)
	observability.Routing().OnAction(p.ctx, method, ActionSwap.String())
	return true, nil
}

func (p *Pass) bridge(method string, control, mediator, target Node) error {
	if err := p.Frontier.InsertBridge(control, mediator, target); err != nil {
		return err
	}
	p.Ctx.record(Action{Kind: ActionBridge, Nodes: []Node{control, mediator, target}, Method: method})
	p.Stats.Bridges++
	p.Logger.Debug("bridge", "method", method, "control", control, "mediator", mediator, "target", target)
	observability.Routing().OnAction(p.ctx, method, ActionBridge.String())
	return nil
}

func (p *Pass) relabel(method string, u Unit, n Node) error {
	evicted, taken := p.Frontier.Occupant(n)
	if err := p.Frontier.Relabel(u, n); err != nil {
		return err
	}
	if taken {
		delete(p.Ctx.Labelling, evicted)
	}
	if err := p.Frontier.Reclassify(n, frontier.Assigned); err != nil {
		return err
	}
	p.Ctx.Labelling[u] = n
	p.Ctx.record(Action{Kind: ActionRelabel, Nodes: []Node{n}, Unit: u, Method: method})
	p.Stats.Relabels++
	p.Logger.Debug("relabel", "method", method, "unit", u, "node", n)
	observability.Routing().OnAction(p.ctx, method, ActionRelabel.String())
	return nil
}

// =============================================================================
// Method registry
// =============================================================================

// Decoder builds a method from its JSON form.
type Decoder func(data []byte) (Method, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Decoder{}
)

// Register makes a method decodable by name. Registering a name twice
// panics.
func Register(name string, d Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("router: method registered twice: " + name)
	}
	registry[name] = d
}

// Methods returns the registered method names in ascending order.
func Methods() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DecodeMethod decodes a method from JSON of the form
// {"name": "lexi_route", "depth": 10}.
func DecodeMethod(data []byte) (Method, error) {
	var head struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("router: decode method: %w", err)
	}
	registryMu.RLock()
	d, ok := registry[head.Name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("router: unknown method %q (known: %v)", head.Name, Methods())
	}
	return d(data)
}

// ParseMethod returns the named method with its default settings.
func ParseMethod(name string) (Method, error) {
	data, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return DecodeMethod(data)
}

// DecodeMethods decodes a JSON array of methods.
func DecodeMethods(data []byte) ([]Method, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("router: decode methods: %w", err)
	}
	out := make([]Method, 0, len(raw))
	for _, r := range raw {
		m, err := DecodeMethod(r)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// MethodNames returns the names of ms in order.
func MethodNames(ms []Method) []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}
	return names
}

func init() {
	Register(nameLexiLabelling, func([]byte) (Method, error) { return LexiLabelling{}, nil })
	Register(nameShortestPath, func([]byte) (Method, error) { return ShortestPath{}, nil })
	Register(nameMultiGateReorder, func(data []byte) (Method, error) {
		m := DefaultMultiGateReorder()
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("router: decode %s: %w", nameMultiGateReorder, err)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return m, nil
	})
	Register(nameLexiRoute, func(data []byte) (Method, error) {
		m := DefaultLexiRoute()
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("router: decode %s: %w", nameLexiRoute, err)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return m, nil
	})
}
