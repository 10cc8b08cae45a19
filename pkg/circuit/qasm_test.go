package circuit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qroute/pkg/qubit"
)

func id(reg string, i int) qubit.ID { return qubit.ID{Register: reg, Index: i} }

func TestParseQASM(t *testing.T) {
	src := `OPENQASM 2.0;
include "qelib1.inc";
// a comment
gate majority a,b,c
{
  cx c,b;
  cx c,a;
  ccx a,b,c;
}

qreg q[3];
creg c0[1];
creg c1[2];

h q[1];
cx q[1], q[2];
rz(pi/2) q[0];
u3(cos(0.5), 0, -pi) q[2];
majority q[0],q[1],q[2];
measure q[0] -> c0[0];
if(c1==1) x q[2];
if(c1[1]==0) cx q[0],q[1];
barrier q;
reset q[1];`

	c, err := ParseQASM(src)
	require.NoError(t, err)

	assert.Equal(t, []Register{{Name: "q", Size: 3}}, c.QRegs)
	assert.Equal(t, []Register{{Name: "c0", Size: 1}, {Name: "c1", Size: 2}}, c.CRegs)
	require.Len(t, c.Ops, 10)

	assert.Equal(t, Op{Gate: "h", Qubits: []qubit.ID{id("q", 1)}}, c.Ops[0])
	assert.True(t, c.Ops[1].IsCX())
	assert.Equal(t, []string{"pi/2"}, c.Ops[2].Params)
	assert.Equal(t, []string{"cos(0.5)", "0", "-pi"}, c.Ops[3].Params)
	assert.Equal(t, "majority", c.Ops[4].Gate)
	assert.Len(t, c.Ops[4].Qubits, 3)
	assert.Equal(t, []qubit.ID{id("c0", 0)}, c.Ops[5].Bits)

	require.NotNil(t, c.Ops[6].Condition)
	assert.Equal(t, Condition{Register: "c1", Value: 1}, *c.Ops[6].Condition)
	assert.Equal(t, []qubit.ID{id("c1", 0), id("c1", 1)}, c.ClassicalArgs(c.Ops[6]))

	require.NotNil(t, c.Ops[7].Condition)
	assert.True(t, c.Ops[7].IsCX())
	assert.Equal(t, []qubit.ID{id("c1", 1)}, c.ClassicalArgs(c.Ops[7]))

	assert.True(t, c.Ops[8].IsBarrier())
	assert.Len(t, c.Ops[8].Qubits, 3)
	assert.Equal(t, GateReset, c.Ops[9].Gate)
}

func TestParseBroadcast(t *testing.T) {
	c, err := ParseQASM(`qreg a[2]; qreg b[2]; creg m[2];
h a;
cx a, b;
cx a[0], b;
measure a -> m;`)
	require.NoError(t, err)
	require.Len(t, c.Ops, 8)
	assert.Equal(t, []qubit.ID{id("a", 1), id("b", 1)}, c.Ops[3].Qubits)
	assert.Equal(t, []qubit.ID{id("a", 0), id("b", 1)}, c.Ops[5].Qubits)
	assert.Equal(t, []qubit.ID{id("m", 1)}, c.Ops[7].Bits)
	assert.Equal(t, 4, c.TwoQubitOps())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "undeclared register", src: "qreg q[2]; h r[0];", want: ErrUndeclared},
		{name: "index out of range", src: "qreg q[2]; h q[2];", want: ErrUndeclared},
		{name: "duplicate argument", src: "qreg q[2]; cx q[0], q[0];", want: ErrDuplicateArgument},
		{name: "duplicate register", src: "qreg q[2]; creg q[2];", want: ErrDuplicateRegister},
		{name: "size mismatch", src: "qreg a[2]; qreg b[3]; cx a, b;", want: ErrSyntax},
		{name: "unbalanced", src: "qreg q[1]; rz(pi q[0];", want: ErrSyntax},
		{name: "missing args", src: "qreg q[1]; h;", want: ErrSyntax},
		{name: "unknown condition", src: "qreg q[1]; if(c==1) x q[0];", want: ErrUndeclared},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQASM(tt.src)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseErrorLine(t *testing.T) {
	_, err := ParseQASM("qreg q[2];\nh q[0];\n\nh r[0];")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func TestWriteQASM(t *testing.T) {
	c := New(3, 1)
	c.H(qubit.Q(0)).CX(qubit.Q(0), qubit.Q(1)).Measure(qubit.Q(1), id("c", 0))
	c.Append(Op{Gate: "rz", Params: []string{"pi/4"}, Qubits: []qubit.ID{qubit.Q(2)}, Condition: &Condition{Register: "c", Value: 1}})

	want := `OPENQASM 2.0;
include "qelib1.inc";

qreg q[3];
creg c[1];

h q[0];
cx q[0],q[1];
measure q[1] -> c[0];
if(c==1) rz(pi/4) q[2];
`
	assert.Equal(t, want, c.QASM())

	parsed, err := ParseQASM(c.QASM())
	require.NoError(t, err)
	assert.Equal(t, c.Ops, parsed.Ops)
}

func TestWriteBridgeDefinition(t *testing.T) {
	c := New(3, 0).Gate(GateBridge, qubit.Q(0), qubit.Q(1), qubit.Q(2))
	out := c.QASM()
	assert.True(t, strings.Contains(out, "gate bridge a,b,c"))

	parsed, err := ParseQASM(out)
	require.NoError(t, err)
	require.Len(t, parsed.Ops, 1)
	assert.Equal(t, GateBridge, parsed.Ops[0].Gate)
}
