package router

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/qroute/pkg/frontier"
	"github.com/matzehuels/qroute/pkg/lexico"
)

// Unit is a logical qubit, or a node once placed.
type Unit = frontier.Unit

// Node is a physical qubit.
type Node = frontier.Node

// Swap is a SWAP between two adjacent nodes.
type Swap = lexico.Swap

// ActionKind identifies what a committed action did to the circuit.
type ActionKind int

const (
	ActionSwap ActionKind = iota
	ActionBridge
	ActionRelabel
	ActionReorder
)

var actionNames = [...]string{"swap", "bridge", "relabel", "reorder"}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k ActionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *ActionKind) UnmarshalText(b []byte) error {
	i := slices.Index(actionNames[:], string(b))
	if i < 0 {
		return fmt.Errorf("router: unknown action %q", b)
	}
	*k = ActionKind(i)
	return nil
}

// Action is one committed change to the circuit.
//
// Swaps list their two nodes, bridges list control, mediator and target.
// Relabels name the placed unit and list the node it was placed on.
// Reorders list the nodes of the gate moved to the cut.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Nodes  []Node     `json:"nodes"`
	Unit   Unit       `json:"unit,omitzero"`
	Method string     `json:"method"`
}

func (a Action) String() string {
	parts := make([]string, len(a.Nodes))
	for i, n := range a.Nodes {
		parts[i] = n.String()
	}
	if a.Kind == ActionRelabel {
		return fmt.Sprintf("relabel %v -> %s", a.Unit, strings.Join(parts, ","))
	}
	return fmt.Sprintf("%s %s", a.Kind, strings.Join(parts, ","))
}

// Context is the routing state shared by the methods of one pass.
//
// Labelling and Interactions are refreshed from the frontier before every
// method runs. LastSwap is the most recent committed swap and is never
// proposed again immediately. Actions is the trace of committed changes.
type Context struct {
	Labelling    map[Unit]Node
	Interactions map[Node]Node
	LastSwap     Swap
	Actions      []Action
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{
		Labelling:    make(map[Unit]Node),
		Interactions: make(map[Node]Node),
	}
}

// Clone returns an independent copy of c.
func (c *Context) Clone() *Context {
	return &Context{
		Labelling:    maps.Clone(c.Labelling),
		Interactions: maps.Clone(c.Interactions),
		LastSwap:     c.LastSwap,
		Actions:      slices.Clone(c.Actions),
	}
}

// hasLastSwap reports whether a swap has been committed in this pass.
func (c *Context) hasLastSwap() bool { return !c.LastSwap.IsNoop() }

func (c *Context) record(a Action) { c.Actions = append(c.Actions, a) }
