// Package circuit provides the flat gate-list representation used as input
// and output of routing, together with an OpenQASM 2.0 reader and writer.
//
// # Overview
//
// A [Circuit] declares quantum and classical registers and holds an ordered
// list of [Op] values. Qubits and bits are named with [qubit.ID], so a wire
// can be renamed from q[0] to node[3] without changing its type.
//
// # QASM
//
// [ParseQASM] accepts the common subset of OpenQASM 2.0: register
// declarations, gate applications with optional parameters, measure,
// reset, barrier and classically conditioned operations. Whole-register
// arguments are broadcast into one operation per index. Custom gate
// definitions are skipped, so their applications parse as opaque gates.
//
// [Circuit.WriteQASM] emits the inverse form and adds a definition for
// the bridge gate when a routed circuit contains one.
package circuit
