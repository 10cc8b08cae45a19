// Package router inserts SWAP and BRIDGE operations so that every
// two-qubit operation of a circuit acts on coupled nodes of a topology.
//
// # Overview
//
// A [Router] drives a [frontier.Frontier] to completion. Every iteration it
// emits whatever is already executable, then hands the state to the first
// configured [Method] whose Check passes:
//
//   - [LexiLabelling] places qubits that interact but have no node yet
//   - [LexiRoute] commits one SWAP or BRIDGE chosen by distance vectors
//   - [ShortestPath] swaps the most distant pair together along a path
//   - [MultiGateReorder] emits executable gates early when they commute with
//     the operations ahead of them
//
// The default method list is LexiLabelling followed by LexiRoute, which
// falls back to ShortestPath on its own. MultiGateReorder is opt-in and
// belongs first in the list.
//
// # Choosing a Swap
//
// LexiRoute ranks candidate swaps with a [lexico.Comparator]: the swap that
// leaves the fewest pairs at the largest distance wins. Ties are broken by
// comparing later layers of the circuit, then by taking the last candidate
// in ascending (A, B) order. A swap equal to the one committed last is never
// proposed, so the router cannot oscillate between two states.
//
// # Errors
//
// Route returns *errors.Error values from pkg/errors. The codes are
// TOPOLOGY_DISCONNECTED and INVALID_TOPOLOGY for unusable topologies,
// UNROUTABLE when no node is left for a qubit, ROUTING_FAILURE when no
// progress is possible, and BRIDGE_INVALID or CONTRACT_VIOLATION when the
// frontier reports a state the router cannot act on. Broken internal
// invariants panic.
//
// # Methods as Data
//
// Methods serialise to JSON objects such as {"name":"lexi_route","depth":10}
// and are decoded with [DecodeMethod]. Custom methods become decodable
// through [Register].
package router
