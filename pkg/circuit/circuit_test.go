package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qroute/pkg/qubit"
)

func TestCircuitBuilders(t *testing.T) {
	c := New(2, 2).H(qubit.Q(0)).CX(qubit.Q(0), qubit.Q(1)).Barrier(qubit.Q(0), qubit.Q(1))
	require.NoError(t, c.Validate())

	assert.Equal(t, 2, c.NumQubits())
	assert.Equal(t, []qubit.ID{qubit.Q(0), qubit.Q(1)}, c.Qubits())
	assert.Equal(t, []qubit.ID{id("c", 0), id("c", 1)}, c.Bits())
	assert.Equal(t, 1, c.TwoQubitOps(), "barriers are not interactions")
	assert.Equal(t, map[string]int{"h": 1, "cx": 1, "barrier": 1}, c.GateCounts())
}

func TestClone(t *testing.T) {
	c := New(2, 1)
	c.Append(Op{Gate: "x", Qubits: []qubit.ID{qubit.Q(0)}, Condition: &Condition{Register: "c", Value: 1}})

	cp := c.Clone()
	cp.Ops[0].Qubits[0] = qubit.Q(1)
	cp.Ops[0].Condition.Value = 0

	assert.Equal(t, qubit.Q(0), c.Ops[0].Qubits[0])
	assert.Equal(t, 1, c.Ops[0].Condition.Value)
}

func TestValidate(t *testing.T) {
	c := New(1, 0).Measure(qubit.Q(0), id("c", 0))
	assert.ErrorIs(t, c.Validate(), ErrUndeclared)

	c = New(1, 1)
	c.Append(Op{Gate: "x", Qubits: []qubit.ID{qubit.Q(0)}, Condition: &Condition{Register: "c", Bit: true, Index: 3}})
	assert.ErrorIs(t, c.Validate(), ErrUndeclared)
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{op: Op{Gate: "cx", Qubits: []qubit.ID{qubit.Node(0), qubit.Node(1)}}, want: "cx node[0],node[1];"},
		{op: Op{Gate: "u1", Params: []string{"0.1"}, Qubits: []qubit.ID{qubit.Q(0)}}, want: "u1(0.1) q[0];"},
		{
			op:   Op{Gate: "x", Qubits: []qubit.ID{qubit.Q(0)}, Condition: &Condition{Register: "c", Bit: true, Index: 1, Value: 1}},
			want: "if(c[1]==1) x q[0];",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
}

func TestCommute(t *testing.T) {
	q0, q1, q2 := qubit.Q(0), qubit.Q(1), qubit.Q(2)
	cx := func(ctl, tgt qubit.ID) Op { return Op{Gate: GateCX, Qubits: []qubit.ID{ctl, tgt}} }
	one := func(gate string) Op { return Op{Gate: gate, Qubits: []qubit.ID{q0}} }

	tests := []struct {
		name   string
		a      Op
		pa     int
		b      Op
		pb     int
		expect bool
	}{
		{"shared control", cx(q0, q1), 0, cx(q0, q2), 0, true},
		{"shared target", cx(q1, q0), 1, cx(q2, q0), 1, true},
		{"control meets target", cx(q0, q1), 0, cx(q2, q0), 1, false},
		{"rz on control", Op{Gate: "rz", Qubits: []qubit.ID{q0}, Params: []string{"pi/4"}}, 0, cx(q0, q1), 0, true},
		{"x on target", one("x"), 0, cx(q1, q0), 1, true},
		{"x on control", one("x"), 0, cx(q0, q1), 0, false},
		{"identity", one("id"), 0, cx(q1, q0), 1, true},
		{"hadamard", one("h"), 0, cx(q0, q1), 0, false},
		{"cz both sides", Op{Gate: "cz", Qubits: []qubit.ID{q1, q0}}, 1, cx(q0, q2), 0, true},
		{"swap", Op{Gate: GateSwap, Qubits: []qubit.ID{q0, q1}}, 0, cx(q0, q2), 0, false},
		{"measure", Op{Gate: GateMeasure, Qubits: []qubit.ID{q0}, Bits: []qubit.ID{{Register: "c"}}}, 0, cx(q0, q1), 0, false},
		{"conditioned", Op{Gate: "z", Qubits: []qubit.ID{q0}, Condition: &Condition{Register: "c", Value: 1}}, 0, cx(q0, q1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Commute(tt.a, tt.pa, tt.b, tt.pb))
			assert.Equal(t, tt.expect, Commute(tt.b, tt.pb, tt.a, tt.pa))
		})
	}
}

func TestBasis(t *testing.T) {
	op := Op{Gate: "cy", Qubits: []qubit.ID{qubit.Q(0), qubit.Q(1)}}
	assert.Equal(t, BasisZ, op.Basis(0))
	assert.Equal(t, BasisY, op.Basis(1))
	assert.Equal(t, BasisNone, op.Basis(2))
	assert.Equal(t, "y", op.Basis(1).String())
}
