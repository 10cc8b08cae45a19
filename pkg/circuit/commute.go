package circuit

// Basis is the Pauli basis an operation is diagonal in on one of its qubits.
// Two gates sharing a qubit commute there when their bases agree.
type Basis int

const (
	BasisNone Basis = iota
	// BasisI marks the identity, which commutes with everything.
	BasisI
	BasisZ
	BasisX
	BasisY
)

var basisNames = [...]string{"none", "i", "z", "x", "y"}

func (b Basis) String() string {
	if int(b) < len(basisNames) {
		return basisNames[b]
	}
	return "unknown"
}

var singleQubitBasis = map[string]Basis{
	"id": BasisI, "z": BasisZ, "s": BasisZ, "sdg": BasisZ, "t": BasisZ, "tdg": BasisZ,
	"rz": BasisZ, "u1": BasisZ, "p": BasisZ,
	"x": BasisX, "rx": BasisX, "sx": BasisX, "sxdg": BasisX,
	"y": BasisY, "ry": BasisY,
}

// controlledTargetBasis gives the target basis of controlled gates. Their
// control is always diagonal in Z.
var controlledTargetBasis = map[string]Basis{
	GateCX: BasisX, "cy": BasisY, "cz": BasisZ,
	"crx": BasisX, "cry": BasisY, "crz": BasisZ, "cu1": BasisZ, "cp": BasisZ,
}

// symmetricBasis lists two-qubit gates diagonal in one basis on both qubits.
var symmetricBasis = map[string]Basis{"rzz": BasisZ, "rxx": BasisX, "ryy": BasisY}

// Basis returns the basis o is diagonal in on its qubit at port.
// Conditioned operations, measurements, resets, barriers, swaps and bridges
// have none.
func (o Op) Basis(port int) Basis {
	if o.Condition != nil || len(o.Bits) > 0 || port < 0 || port >= len(o.Qubits) {
		return BasisNone
	}
	switch len(o.Qubits) {
	case 1:
		return singleQubitBasis[o.Gate]
	case 2:
		if b, ok := symmetricBasis[o.Gate]; ok {
			return b
		}
		b, ok := controlledTargetBasis[o.Gate]
		switch {
		case !ok:
			return BasisNone
		case port == 0:
			return BasisZ
		default:
			return b
		}
	}
	return BasisNone
}

// Commute reports whether a and b commute on the qubit they share, which is
// a's qubit at port pa and b's at port pb.
func Commute(a Op, pa int, b Op, pb int) bool {
	ba, bb := a.Basis(pa), b.Basis(pb)
	if ba == BasisNone || bb == BasisNone {
		return false
	}
	return ba == BasisI || bb == BasisI || ba == bb
}
