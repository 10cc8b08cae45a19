// Package topology models the connectivity graph of a quantum device.
//
// # Overview
//
// A [Topology] holds physical qubits ([Node]) and weighted couplings between
// them. Couplings are stored with a direction so that directed devices can
// reject operations against the native direction, but every distance and
// path query treats the graph as undirected.
//
// # Distances
//
// [Topology.Distance], [Topology.Diameter] and [Topology.NodesAtDistance]
// share an all-pairs hop table that is built on first use and discarded on
// any mutation. Queries on disconnected or empty graphs fail with
// [ErrDisconnected] or [ErrEmpty] instead of returning a sentinel distance.
//
// # Structure
//
// [Topology.ArticulationPoints] finds cut nodes of the whole graph;
// [Topology.SubgraphArticulationPoints] restricts the question to pairs of
// nodes inside a designated subset. [Topology.RemoveWorstNodes] shrinks a
// device to the size a circuit needs while keeping it connected, and
// [Topology.Lines] carves disjoint straight chains of nodes.
//
// # Removal
//
// Nodes are stored in an arena. [Topology.RemoveNode] marks a slot dead and
// detaches its edges at once; [Topology.Compact] reclaims dead slots. No
// query can observe a partially removed node.
package topology
