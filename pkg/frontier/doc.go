// Package frontier exposes the part of a circuit the router acts on.
//
// # Overview
//
// The [Frontier] interface is the router's only view of the circuit being
// rewritten: which qubits meet at a two-qubit operation next, how to skip
// ahead speculatively, and how to insert SWAP and BRIDGE operations or place
// a qubit on a node.
//
// [Circuit] implements Frontier over a [circuit.Circuit]. It keeps one
// cursor per qubit and bit, emits operations as soon as they are executable
// on the topology, and renames qubits from their logical names to physical
// nodes as they are placed and swapped. Emission ignores edge direction;
// [topology.Topology.ValidOperation] still reports a reversed coupling.
// Circuit also implements [Reorderer], which moves a gate past the
// operations ahead of it when they commute.
//
// # Node Classes
//
// Nodes are Free, Assigned, Ancilla or Reassignable. Swapping a qubit into
// a Free node leaves an Ancilla behind; placing a qubit on an Ancilla merges
// the two. Nodes seeded with [WithPlacement] are Reassignable until an
// operation is emitted on them, and may be taken over by another qubit.
//
// # Placement
//
// [Circuit.Placement] reports, for each circuit qubit, the node it started
// on and the node it occupies now. Replaying the SWAP operations of
// [Circuit.Routed] from the initial placement reproduces the final one.
package frontier
