package frontier

import (
	"fmt"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/qubit"
)

// occupy returns the wire on n, creating an ancilla wire when n is free.
func (f *Circuit) occupy(n Node) int {
	if w, ok := f.byName[n]; ok {
		return w
	}
	w := f.addWire(wire{name: n, origin: n, kind: ancillaWire, class: Ancilla})
	f.byName[n] = w
	return w
}

// InsertSwap implements Frontier. Swapping into a free node creates an
// ancilla on it.
func (f *Circuit) InsertSwap(a, b Node) (bool, error) {
	if a == b {
		return false, nil
	}
	for _, n := range []Node{a, b} {
		if !f.topo.HasNode(n) {
			return false, fmt.Errorf("%w: %v", ErrUnknownNode, n)
		}
	}
	if !f.topo.Connected(a, b) {
		return false, fmt.Errorf("%w: %v and %v", ErrNotAdjacent, a, b)
	}
	wa, okA := f.byName[a]
	wb, okB := f.byName[b]
	if okA && okB {
		last := f.wires[wa].last
		if last >= 0 && last == f.wires[wb].last && f.out[last].Gate == circuit.GateSwap {
			return false, nil
		}
	}
	wa, wb = f.occupy(a), f.occupy(b)

	f.out = append(f.out, circuit.Op{Gate: circuit.GateSwap, Qubits: []qubit.ID{a, b}})
	f.touch(wa)
	f.touch(wb)
	delete(f.byName, a)
	delete(f.byName, b)
	f.wires[wa].name, f.wires[wb].name = b, a
	f.byName[b], f.byName[a] = wa, wb
	return true, nil
}

// InsertBridge implements Frontier. A free mediator receives an ancilla.
func (f *Circuit) InsertBridge(control, mediator, target Node) error {
	if !f.topo.Coupled(control, mediator, target) {
		return fmt.Errorf("%w: %v-%v-%v is not a path", ErrBridgeInvalid, control, mediator, target)
	}
	wc, okC := f.byName[control]
	wt, okT := f.byName[target]
	if !okC || !okT {
		return fmt.Errorf("%w: control or target unoccupied", ErrBridgeInvalid)
	}
	idx := f.cursor(wc)
	if idx < 0 || idx != f.cursor(wt) || !f.ready(idx, false) {
		return fmt.Errorf("%w: no ready operation between %v and %v", ErrBridgeInvalid, control, target)
	}
	e := &f.entries[idx]
	if !e.op.IsCX() || e.qwires[0] != wc || e.qwires[1] != wt {
		return fmt.Errorf("%w: pending %s is not cx %v,%v", ErrBridgeInvalid, e.op.Gate, control, target)
	}
	wm := f.occupy(mediator)
	op := e.op.Clone()
	op.Gate = circuit.GateBridge
	op.Qubits = []qubit.ID{control, mediator, target}
	f.out = append(f.out, op)
	for _, w := range []int{wc, wm, wt} {
		f.touch(w)
	}
	f.pos[wc]++
	f.pos[wt]++
	for _, w := range e.cwires {
		f.pos[w]++
	}
	return nil
}

// Relabel implements Frontier. A Free node is taken directly. An Ancilla is
// merged: the qubit takes over the ancilla's wire and its starting node. A
// Reassignable occupant is evicted back to its logical name.
func (f *Circuit) Relabel(logical Unit, physical Node) error {
	w, ok := f.byName[logical]
	if !ok || f.wires[w].kind != quantumWire {
		return fmt.Errorf("%w: %v", ErrUnknownUnit, logical)
	}
	if f.placed(logical) {
		return fmt.Errorf("%w: %v", ErrAlreadyPlaced, logical)
	}
	if !f.topo.HasNode(physical) {
		return fmt.Errorf("%w: %v", ErrUnknownNode, physical)
	}
	origin := f.wires[w].origin
	start := physical

	if o, taken := f.byName[physical]; taken {
		occ := &f.wires[o]
		switch {
		case occ.kind == ancillaWire:
			start = occ.origin
			f.wires[w].last = occ.last
			occ.dead = true
			delete(f.byName, physical)
		case occ.class == Reassignable && occ.last < 0:
			delete(f.initial, occ.origin)
			f.rename(o, occ.origin)
		default:
			return fmt.Errorf("%w: %v holds %v", ErrOccupied, physical, occ.origin)
		}
	}
	f.rename(w, physical)
	f.initial[origin] = start
	return nil
}
