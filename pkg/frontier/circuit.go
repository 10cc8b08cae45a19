package frontier

import (
	"fmt"
	"slices"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/topology"
)

type wireKind int

const (
	quantumWire wireKind = iota
	classicalWire
	ancillaWire
)

// wire is one qubit or bit line. Quantum wires are renamed as they are
// placed and swapped; classical wires keep their bit name.
type wire struct {
	name   qubit.ID
	origin qubit.ID // circuit qubit or bit; creation node for ancillas
	kind   wireKind
	class  Class
	ops    []int // entries on this wire in program order
	last   int   // index of the last emitted operation on the wire, -1 if none
	dead   bool
}

// entry is a source operation with its wires resolved.
type entry struct {
	op     circuit.Op
	qwires []int
	cwires []int
}

// Option configures a Circuit frontier.
type Option func(*options)

type options struct {
	placement map[Unit]Node
}

// WithPlacement seeds qubits onto nodes before routing. Seeded nodes are
// Reassignable until an operation is emitted on them.
func WithPlacement(p map[Unit]Node) Option {
	return func(o *options) { o.placement = p }
}

// Circuit is a Frontier over a [circuit.Circuit].
//
// Every circuit qubit and bit is a wire with a cursor pointing at its next
// unemitted operation. An operation is at the cut when it is under the
// cursor of all of its quantum wires, and emitted once it is under the
// cursor of all of its wires and executable on the topology. Emitted
// operations name physical nodes.
type Circuit struct {
	src     *circuit.Circuit
	topo    *topology.Topology
	entries []entry
	wires   []wire
	pos     []int
	byName  map[qubit.ID]int // current name of live quantum and ancilla wires
	initial map[Unit]Node
	out     []circuit.Op
}

var _ Frontier = (*Circuit)(nil)

// New builds a frontier over c for routing onto t. Qubits whose names are
// already nodes of t start placed on those nodes.
func New(c *circuit.Circuit, t *topology.Topology, opts ...Option) (*Circuit, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	f := &Circuit{
		src:     c,
		topo:    t,
		byName:  make(map[qubit.ID]int),
		initial: make(map[Unit]Node),
	}
	for _, q := range c.Qubits() {
		w := f.addWire(wire{name: q, origin: q, kind: quantumWire, class: Assigned})
		f.byName[q] = w
		if t.HasNode(q) {
			f.initial[q] = q
		}
	}
	bits := make(map[qubit.ID]int)
	for _, b := range c.Bits() {
		bits[b] = f.addWire(wire{name: b, origin: b, kind: classicalWire})
	}

	for i, op := range c.Ops {
		e := entry{op: op}
		for _, q := range op.Qubits {
			e.qwires = append(e.qwires, f.byName[q])
		}
		for _, b := range c.ClassicalArgs(op) {
			e.cwires = append(e.cwires, bits[b])
		}
		for _, w := range slices.Concat(e.qwires, e.cwires) {
			f.wires[w].ops = append(f.wires[w].ops, i)
		}
		f.entries = append(f.entries, e)
	}

	for _, u := range qubit.Sorted(o.placement) {
		n := o.placement[u]
		w, ok := f.byName[u]
		switch {
		case !ok || f.wires[w].kind != quantumWire:
			return nil, fmt.Errorf("%w: unknown qubit %v", ErrInvalidPlacement, u)
		case f.placed(u):
			return nil, fmt.Errorf("%w: %v is already a device node", ErrInvalidPlacement, u)
		case !t.HasNode(n):
			return nil, fmt.Errorf("%w: unknown node %v", ErrInvalidPlacement, n)
		}
		if _, taken := f.byName[n]; taken {
			return nil, fmt.Errorf("%w: node %v used twice", ErrInvalidPlacement, n)
		}
		f.rename(w, n)
		f.wires[w].class = Reassignable
		f.initial[u] = n
	}
	return f, nil
}

func (f *Circuit) addWire(w wire) int {
	w.last = -1
	f.wires = append(f.wires, w)
	f.pos = append(f.pos, 0)
	return len(f.wires) - 1
}

func (f *Circuit) rename(w int, name qubit.ID) {
	delete(f.byName, f.wires[w].name)
	f.wires[w].name = name
	f.byName[name] = w
}

func (f *Circuit) placed(u qubit.ID) bool { return f.topo.HasNode(u) }

// cursor returns the entry under wire w's cursor, or -1 at the end.
func (f *Circuit) cursor(w int) int {
	if f.pos[w] >= len(f.wires[w].ops) {
		return -1
	}
	return f.wires[w].ops[f.pos[w]]
}

// ready reports whether entry idx is under the cursor of all of its quantum
// wires, and of its classical wires too unless quantumOnly.
func (f *Circuit) ready(idx int, quantumOnly bool) bool {
	e := &f.entries[idx]
	for _, w := range e.qwires {
		if f.cursor(w) != idx {
			return false
		}
	}
	if quantumOnly {
		return true
	}
	for _, w := range e.cwires {
		if f.cursor(w) != idx {
			return false
		}
	}
	return true
}

// cut returns the entries at the cut in program order.
func (f *Circuit) cut() []int {
	seen := make(map[int]bool)
	var out []int
	for w := range f.wires {
		if f.wires[w].kind == classicalWire || f.wires[w].dead {
			continue
		}
		idx := f.cursor(w)
		if idx < 0 || seen[idx] {
			continue
		}
		seen[idx] = true
		if f.ready(idx, true) {
			out = append(out, idx)
		}
	}
	slices.Sort(out)
	return out
}

func (f *Circuit) names(idx int) []qubit.ID {
	e := &f.entries[idx]
	out := make([]qubit.ID, len(e.qwires))
	for k, w := range e.qwires {
		out[k] = f.wires[w].name
	}
	return out
}

// executable reports whether entry idx can be emitted with the current
// names.
func (f *Circuit) executable(idx int) bool {
	names := f.names(idx)
	for _, n := range names {
		if !f.placed(n) {
			return false
		}
	}
	op := f.entries[idx].op
	switch {
	case op.IsBarrier(), len(names) == 1:
		return true
	case len(names) == 2:
		return f.topo.Coupled(names...)
	case len(names) == 3 && op.Gate == circuit.GateBridge:
		return f.topo.Coupled(names...)
	}
	return false
}

func unsupported(op circuit.Op) bool {
	return len(op.Qubits) > 2 && !op.IsBarrier() && op.Gate != circuit.GateBridge
}

// Interactions implements Frontier.
func (f *Circuit) Interactions(mode Mode) (map[Unit]Unit, error) {
	out := make(map[Unit]Unit)
	for _, idx := range f.cut() {
		op := f.entries[idx].op
		if unsupported(op) {
			return nil, fmt.Errorf("%w: %s on %d qubits", ErrContract, op.Gate, len(op.Qubits))
		}
		if op.IsBarrier() || len(op.Qubits) != 2 {
			continue
		}
		names := f.names(idx)
		a, b := names[0], names[1]
		if mode == ModePlaced && !(f.placed(a) && f.placed(b)) {
			continue
		}
		out[a], out[b] = b, a
	}
	return out, nil
}

// Resolvable implements Frontier.
func (f *Circuit) Resolvable() error {
	for _, idx := range f.cut() {
		if op := f.entries[idx].op; unsupported(op) {
			return fmt.Errorf("%w: %s on %v", ErrContract, op.Gate, f.names(idx))
		}
	}
	return nil
}

// NextOp implements Frontier.
func (f *Circuit) NextOp(u Unit) (Pending, bool) {
	w, ok := f.byName[u]
	if !ok {
		return Pending{}, false
	}
	idx := f.cursor(w)
	if idx < 0 {
		return Pending{}, false
	}
	e := &f.entries[idx]
	return Pending{
		Gate:  e.op.Gate,
		Port:  slices.Index(e.qwires, w),
		CX:    e.op.IsCX(),
		Ready: f.ready(idx, false),
	}, true
}

// Unplaced implements Frontier.
func (f *Circuit) Unplaced() []Unit {
	var out []Unit
	for w := range f.wires {
		wr := &f.wires[w]
		if wr.kind == quantumWire && !f.placed(wr.name) && f.cursor(w) >= 0 {
			out = append(out, wr.name)
		}
	}
	qubit.Sort(out)
	return out
}

// Done implements Frontier.
func (f *Circuit) Done() bool {
	for w := range f.wires {
		if !f.wires[w].dead && f.cursor(w) >= 0 {
			return false
		}
	}
	return true
}

// Occupant returns the circuit qubit on n. Free nodes and ancillas report
// false.
func (f *Circuit) Occupant(n Node) (Unit, bool) {
	w, ok := f.byName[n]
	if !ok || !f.placed(n) || f.wires[w].kind != quantumWire {
		return Unit{}, false
	}
	return f.wires[w].origin, true
}

// Class implements Frontier.
func (f *Circuit) Class(n Node) Class {
	w, ok := f.byName[n]
	if !ok || !f.placed(n) {
		return Free
	}
	return f.wires[w].class
}

// NodesOf returns the topology nodes in class c, in ascending order.
func (f *Circuit) NodesOf(c Class) []Node {
	var out []Node
	for _, n := range f.topo.Nodes() {
		if f.Class(n) == c {
			out = append(out, n)
		}
	}
	return out
}

// Reclassify implements Frontier. Occupied nodes cannot become Free.
func (f *Circuit) Reclassify(n Node, c Class) error {
	w, ok := f.byName[n]
	if !ok || !f.placed(n) {
		if c == Free {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrFreeNode, n)
	}
	if c == Free {
		return fmt.Errorf("%w: %v", ErrOccupied, n)
	}
	f.wires[w].class = c
	return nil
}

// Len returns the number of operations in the source circuit.
func (f *Circuit) Len() int { return len(f.entries) }

// Placement implements Frontier.
func (f *Circuit) Placement() Placement {
	p := Placement{
		Initial: make(map[Unit]Node, len(f.initial)),
		Final:   make(map[Unit]Node),
	}
	for u, n := range f.initial {
		p.Initial[u] = n
	}
	for _, wr := range f.wires {
		if wr.kind == quantumWire && f.placed(wr.name) {
			p.Final[wr.origin] = wr.name
		}
	}
	return p
}

// Routed returns the emitted operations as a circuit over the topology's
// registers.
func (f *Circuit) Routed() *circuit.Circuit {
	out := &circuit.Circuit{
		QRegs: registers(f.topo.Nodes()),
		CRegs: slices.Clone(f.src.CRegs),
		Ops:   make([]circuit.Op, len(f.out)),
	}
	for i, op := range f.out {
		out.Ops[i] = op.Clone()
	}
	return out
}

// registers sizes one register per register name to hold every node.
func registers(nodes []Node) []circuit.Register {
	var regs []circuit.Register
	for _, n := range nodes {
		if len(regs) == 0 || regs[len(regs)-1].Name != n.Register {
			regs = append(regs, circuit.Register{Name: n.Register})
		}
		r := &regs[len(regs)-1]
		r.Size = max(r.Size, n.Index+1)
	}
	return regs
}
