package circuit

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/qroute/pkg/qubit"
)

// Gate names with special meaning to the router.
const (
	GateCX      = "cx"
	GateSwap    = "swap"
	GateBridge  = "bridge"
	GateBarrier = "barrier"
	GateMeasure = "measure"
	GateReset   = "reset"
)

var (
	// ErrUndeclared is returned when an operation references a qubit, bit or
	// register that was not declared.
	ErrUndeclared = errors.New("circuit: undeclared argument")

	// ErrDuplicateArgument is returned when an operation names the same qubit
	// twice.
	ErrDuplicateArgument = errors.New("circuit: duplicate argument")

	// ErrDuplicateRegister is returned when a register name is declared twice.
	ErrDuplicateRegister = errors.New("circuit: duplicate register")
)

// Register is a named array of qubits or classical bits.
type Register struct {
	Name string
	Size int
}

// Condition guards an operation on the value of classical bits. When Bit is
// false the whole register is compared against Value.
type Condition struct {
	Register string
	Index    int
	Bit      bool
	Value    int
}

func (c Condition) String() string {
	if c.Bit {
		return fmt.Sprintf("if(%s[%d]==%d)", c.Register, c.Index, c.Value)
	}
	return fmt.Sprintf("if(%s==%d)", c.Register, c.Value)
}

// Op is one operation of a circuit.
type Op struct {
	Gate      string
	Qubits    []qubit.ID
	Bits      []qubit.ID
	Params    []string
	Condition *Condition
}

// IsCX reports whether the operation is a CX, conditional or not.
func (o Op) IsCX() bool { return o.Gate == GateCX }

// IsBarrier reports whether the operation is a barrier.
func (o Op) IsBarrier() bool { return o.Gate == GateBarrier }

// Clone returns a deep copy of the operation.
func (o Op) Clone() Op {
	out := Op{
		Gate:   o.Gate,
		Qubits: slices.Clone(o.Qubits),
		Bits:   slices.Clone(o.Bits),
		Params: slices.Clone(o.Params),
	}
	if o.Condition != nil {
		cond := *o.Condition
		out.Condition = &cond
	}
	return out
}

// String renders the operation as one QASM statement.
func (o Op) String() string {
	var sb strings.Builder
	if o.Condition != nil {
		sb.WriteString(o.Condition.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(o.Gate)
	if len(o.Params) > 0 {
		sb.WriteString("(" + strings.Join(o.Params, ",") + ")")
	}
	sb.WriteByte(' ')
	sb.WriteString(joinIDs(o.Qubits))
	if o.Gate == GateMeasure && len(o.Bits) > 0 {
		sb.WriteString(" -> ")
		sb.WriteString(joinIDs(o.Bits))
	}
	sb.WriteByte(';')
	return sb.String()
}

func joinIDs(ids []qubit.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

// Circuit is a flat list of operations over declared registers.
type Circuit struct {
	QRegs []Register
	CRegs []Register
	Ops   []Op
}

// New creates a circuit with a q register of qubits and, when bits > 0, a c
// register of bits.
func New(qubits, bits int) *Circuit {
	c := &Circuit{}
	if qubits > 0 {
		c.QRegs = append(c.QRegs, Register{Name: qubit.DefaultLogical, Size: qubits})
	}
	if bits > 0 {
		c.CRegs = append(c.CRegs, Register{Name: "c", Size: bits})
	}
	return c
}

// Append adds op to the end of the circuit without validation.
func (c *Circuit) Append(op Op) *Circuit {
	c.Ops = append(c.Ops, op)
	return c
}

// Gate appends an unconditioned gate.
func (c *Circuit) Gate(name string, qubits ...qubit.ID) *Circuit {
	return c.Append(Op{Gate: name, Qubits: qubits})
}

// CX appends cx control, target.
func (c *Circuit) CX(control, target qubit.ID) *Circuit {
	return c.Gate(GateCX, control, target)
}

// H appends a Hadamard.
func (c *Circuit) H(q qubit.ID) *Circuit { return c.Gate("h", q) }

// Measure appends measure q -> bit.
func (c *Circuit) Measure(q, bit qubit.ID) *Circuit {
	return c.Append(Op{Gate: GateMeasure, Qubits: []qubit.ID{q}, Bits: []qubit.ID{bit}})
}

// Barrier appends a barrier over qubits.
func (c *Circuit) Barrier(qubits ...qubit.ID) *Circuit {
	return c.Gate(GateBarrier, qubits...)
}

// Qubits returns every declared qubit in declaration order.
func (c *Circuit) Qubits() []qubit.ID { return expand(c.QRegs) }

// Bits returns every declared classical bit in declaration order.
func (c *Circuit) Bits() []qubit.ID { return expand(c.CRegs) }

func expand(regs []Register) []qubit.ID {
	var out []qubit.ID
	for _, r := range regs {
		for i := range r.Size {
			out = append(out, qubit.ID{Register: r.Name, Index: i})
		}
	}
	return out
}

// NumQubits returns the number of declared qubits.
func (c *Circuit) NumQubits() int {
	n := 0
	for _, r := range c.QRegs {
		n += r.Size
	}
	return n
}

// CReg returns the classical register with the given name.
func (c *Circuit) CReg(name string) (Register, bool) {
	for _, r := range c.CRegs {
		if r.Name == name {
			return r, true
		}
	}
	return Register{}, false
}

// ClassicalArgs returns the classical bits op reads or writes: its own bits
// followed by the bits its condition depends on.
func (c *Circuit) ClassicalArgs(op Op) []qubit.ID {
	out := slices.Clone(op.Bits)
	if op.Condition == nil {
		return out
	}
	if op.Condition.Bit {
		return appendUnique(out, qubit.ID{Register: op.Condition.Register, Index: op.Condition.Index})
	}
	if r, ok := c.CReg(op.Condition.Register); ok {
		for i := range r.Size {
			out = appendUnique(out, qubit.ID{Register: r.Name, Index: i})
		}
	}
	return out
}

func appendUnique(ids []qubit.ID, id qubit.ID) []qubit.ID {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// TwoQubitOps counts operations acting on exactly two qubits, barriers
// excluded.
func (c *Circuit) TwoQubitOps() int {
	n := 0
	for _, op := range c.Ops {
		if len(op.Qubits) == 2 && !op.IsBarrier() {
			n++
		}
	}
	return n
}

// GateCounts returns the number of operations per gate name.
func (c *Circuit) GateCounts() map[string]int {
	out := make(map[string]int)
	for _, op := range c.Ops {
		out[op.Gate]++
	}
	return out
}

// Clone returns a deep copy of the circuit.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{
		QRegs: slices.Clone(c.QRegs),
		CRegs: slices.Clone(c.CRegs),
		Ops:   make([]Op, len(c.Ops)),
	}
	for i, op := range c.Ops {
		out.Ops[i] = op.Clone()
	}
	return out
}

// Validate checks that registers are unique and every operation references
// declared, distinct qubits and declared bits.
func (c *Circuit) Validate() error {
	names := make(map[string]bool)
	for _, r := range slices.Concat(c.QRegs, c.CRegs) {
		if names[r.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateRegister, r.Name)
		}
		names[r.Name] = true
	}
	qubits := idSet(c.Qubits())
	bits := idSet(c.Bits())
	for i, op := range c.Ops {
		seen := make(map[qubit.ID]bool, len(op.Qubits))
		for _, q := range op.Qubits {
			if !qubits[q] {
				return fmt.Errorf("%w: op %d (%s): qubit %v", ErrUndeclared, i, op.Gate, q)
			}
			if seen[q] {
				return fmt.Errorf("%w: op %d (%s): qubit %v", ErrDuplicateArgument, i, op.Gate, q)
			}
			seen[q] = true
		}
		for _, b := range op.Bits {
			if !bits[b] {
				return fmt.Errorf("%w: op %d (%s): bit %v", ErrUndeclared, i, op.Gate, b)
			}
		}
		if cond := op.Condition; cond != nil {
			r, ok := c.CReg(cond.Register)
			if !ok || (cond.Bit && cond.Index >= r.Size) {
				return fmt.Errorf("%w: op %d (%s): condition %s", ErrUndeclared, i, op.Gate, cond)
			}
		}
	}
	return nil
}

func idSet(ids []qubit.ID) map[qubit.ID]bool {
	out := make(map[qubit.ID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
