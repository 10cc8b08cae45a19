package frontier

import "slices"

// AdvanceResolved implements Frontier. Operations are emitted in wire order
// until no wire can move.
func (f *Circuit) AdvanceResolved() bool {
	progress := false
	for changed := true; changed; {
		changed = false
		for w := range f.wires {
			if f.wires[w].dead {
				continue
			}
			idx := f.cursor(w)
			if idx < 0 || !f.ready(idx, false) || !f.executable(idx) {
				continue
			}
			f.emit(idx)
			changed, progress = true, true
		}
	}
	return progress
}

// emit appends entry idx to the output under the current wire names and
// moves every wire of the entry past it.
func (f *Circuit) emit(idx int) {
	e := &f.entries[idx]
	op := e.op.Clone()
	for k, w := range e.qwires {
		op.Qubits[k] = f.wires[w].name
	}
	f.out = append(f.out, op)
	for _, w := range e.qwires {
		f.touch(w)
		f.pos[w]++
	}
	for _, w := range e.cwires {
		f.pos[w]++
	}
}

// touch records that the last emitted operation involved wire w.
func (f *Circuit) touch(w int) {
	wr := &f.wires[w]
	wr.last = len(f.out) - 1
	if wr.kind == quantumWire {
		wr.class = Assigned
	}
}

// AdvanceSpeculative implements Frontier. maxAdvance <= 0 means no limit on
// single-qubit operations.
func (f *Circuit) AdvanceSpeculative(maxAdvance int) bool {
	moved := false
	for _, idx := range f.cut() {
		e := &f.entries[idx]
		if len(e.qwires) < 2 {
			continue
		}
		for _, w := range e.qwires {
			f.pos[w]++
		}
		moved = true
	}
	for w := range f.wires {
		if f.wires[w].kind == classicalWire || f.wires[w].dead {
			continue
		}
		for skipped := 0; maxAdvance <= 0 || skipped < maxAdvance; {
			idx := f.cursor(w)
			if idx < 0 {
				break
			}
			e := &f.entries[idx]
			if len(e.qwires) == 1 {
				f.pos[w]++
				skipped++
				moved = true
				continue
			}
			if e.op.IsBarrier() && f.ready(idx, true) {
				for _, bw := range e.qwires {
					f.pos[bw]++
				}
				moved = true
				continue
			}
			break
		}
	}
	return moved
}

// Snapshot implements Frontier.
func (f *Circuit) Snapshot() Snapshot {
	return Snapshot{pos: slices.Clone(f.pos)}
}

// Restore implements Frontier. Wires created after the snapshot keep their
// cursors.
func (f *Circuit) Restore(s Snapshot) {
	copy(f.pos, s.pos)
}
