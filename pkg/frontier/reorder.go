package frontier

import (
	"slices"

	"github.com/matzehuels/qroute/pkg/circuit"
)

// Reorderer is implemented by frontiers that can move gates ahead of the
// operations before them when the two commute.
type Reorderer interface {
	// Reorderable reports whether Reorder would emit anything.
	Reorderable(maxDepth, maxSize int) bool

	// Reorder commutes two-qubit gates that are already executable on their
	// nodes to the cut and emits them. Candidates lie within maxDepth
	// operations of the cut on one of their wires; at most maxSize are
	// examined, in program order. Non-positive limits mean no limit. It
	// returns the nodes of each emitted gate.
	Reorder(maxDepth, maxSize int) [][]Node
}

var _ Reorderer = (*Circuit)(nil)

// Reorderable implements Reorderer.
func (f *Circuit) Reorderable(maxDepth, maxSize int) bool {
	for _, idx := range f.reorderCandidates(maxDepth, maxSize) {
		if _, ok := f.commutePositions(idx); ok {
			return true
		}
	}
	return false
}

// Reorder implements Reorderer.
func (f *Circuit) Reorder(maxDepth, maxSize int) [][]Node {
	var out [][]Node
	for _, idx := range f.reorderCandidates(maxDepth, maxSize) {
		at, ok := f.commutePositions(idx)
		if !ok {
			continue
		}
		for k, w := range f.entries[idx].qwires {
			ops := f.wires[w].ops
			copy(ops[f.pos[w]+1:at[k]+1], ops[f.pos[w]:at[k]])
			ops[f.pos[w]] = idx
		}
		out = append(out, f.names(idx))
		f.emit(idx)
	}
	return out
}

// reorderCandidates returns the unconditioned two-qubit gates within
// maxDepth operations of the cut whose nodes are coupled, in program order.
func (f *Circuit) reorderCandidates(maxDepth, maxSize int) []int {
	seen := make(map[int]bool)
	var out []int
	for w := range f.wires {
		wr := &f.wires[w]
		if wr.kind == classicalWire || wr.dead {
			continue
		}
		end := len(wr.ops)
		if maxDepth > 0 {
			end = min(end, f.pos[w]+maxDepth)
		}
		for _, idx := range wr.ops[f.pos[w]:end] {
			if seen[idx] {
				continue
			}
			seen[idx] = true
			if f.reorderable(idx) {
				out = append(out, idx)
			}
		}
	}
	slices.Sort(out)
	if maxSize > 0 && len(out) > maxSize {
		out = out[:maxSize]
	}
	return out
}

func (f *Circuit) reorderable(idx int) bool {
	e := &f.entries[idx]
	if len(e.qwires) != 2 || len(e.cwires) > 0 || e.op.IsBarrier() || e.op.Condition != nil {
		return false
	}
	names := f.names(idx)
	return f.placed(names[0]) && f.placed(names[1]) && f.topo.Coupled(names...)
}

// commutePositions returns where entry idx sits on each of its wires when
// it commutes with every unemitted operation before it there.
func (f *Circuit) commutePositions(idx int) ([]int, bool) {
	e := &f.entries[idx]
	at := make([]int, len(e.qwires))
	for k, w := range e.qwires {
		ahead := f.wires[w].ops[f.pos[w]:]
		i := slices.Index(ahead, idx)
		if i < 0 {
			return nil, false
		}
		for _, prev := range ahead[:i] {
			pe := &f.entries[prev]
			if len(pe.cwires) > 0 || !circuit.Commute(pe.op, slices.Index(pe.qwires, w), e.op, k) {
				return nil, false
			}
		}
		at[k] = f.pos[w] + i
	}
	return at, true
}
