package frontier

import (
	"errors"

	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/topology"
)

var (
	// ErrContract is returned when the cut holds an operation the router
	// cannot handle: more than two qubits and neither a barrier nor a bridge.
	ErrContract = errors.New("frontier: unsupported operation at cut")

	// ErrBridgeInvalid is returned by InsertBridge when the nodes do not form
	// a path of length two or the pending operation is not a ready CX
	// between control and target.
	ErrBridgeInvalid = errors.New("frontier: invalid bridge")

	// ErrNotAdjacent is returned when a swap names nodes without a coupling.
	ErrNotAdjacent = errors.New("frontier: nodes not adjacent")

	// ErrUnknownUnit is returned when a unit is not the current name of any
	// wire.
	ErrUnknownUnit = errors.New("frontier: unknown unit")

	// ErrUnknownNode is returned when a node is not in the topology.
	ErrUnknownNode = errors.New("frontier: unknown node")

	// ErrAlreadyPlaced is returned when relabelling a unit that is already on
	// a node.
	ErrAlreadyPlaced = errors.New("frontier: unit already placed")

	// ErrOccupied is returned when relabelling onto a node whose occupant
	// cannot be merged or evicted.
	ErrOccupied = errors.New("frontier: node occupied")

	// ErrFreeNode is returned when reclassifying a node that hosts no wire.
	ErrFreeNode = errors.New("frontier: node is free")

	// ErrInvalidPlacement is returned by New for a seed placement that names
	// unknown qubits or nodes, or places two qubits on one node.
	ErrInvalidPlacement = errors.New("frontier: invalid placement")
)

// Unit is the current name of a wire: the logical qubit while unplaced, the
// physical node once placed.
type Unit = qubit.ID

// Node is a physical qubit.
type Node = topology.Node

// Mode selects which interactions are reported.
type Mode int

const (
	// ModeAll reports every interaction at the cut.
	ModeAll Mode = iota
	// ModePlaced reports only interactions whose units are both placed.
	ModePlaced
)

// Class classifies a physical node by what it holds.
type Class int

const (
	// Free nodes hold no wire.
	Free Class = iota
	// Assigned nodes hold a qubit with program history.
	Assigned
	// Ancilla nodes hold an identity state created by routing and can be
	// merged with a qubit being placed.
	Ancilla
	// Reassignable nodes hold a seeded qubit without history that may be
	// moved elsewhere when its node is needed.
	Reassignable
)

var classNames = [...]string{"free", "assigned", "ancilla", "reassignable"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Pending describes the next operation on a wire.
type Pending struct {
	Gate  string
	Port  int  // position of the wire among the operation's qubits
	CX    bool // plain or classically conditioned CX
	Ready bool // every wire of the operation, classical ones included, is at it
}

// Placement is the correspondence between the circuit's qubits and the
// nodes they started on and currently occupy.
type Placement struct {
	Initial map[Unit]Node
	Final   map[Unit]Node
}

// Snapshot is an opaque copy of the cut taken by Frontier.Snapshot.
type Snapshot struct {
	pos []int
}

// Frontier is the router's view of the circuit being routed: the current cut
// through the operations and the mutations the router may apply at it.
type Frontier interface {
	// Interactions returns the pairs of units meeting at a two-qubit
	// operation at the cut, in both directions.
	Interactions(mode Mode) (map[Unit]Unit, error)

	// Resolvable reports ErrContract when an operation at the cut spans more
	// than two qubits and is neither a barrier nor a bridge.
	Resolvable() error

	// AdvanceResolved emits every operation that is executable as-is and
	// reports whether the cut moved.
	AdvanceResolved() bool

	// AdvanceSpeculative moves the cut past the current layer of
	// multi-qubit operations and up to maxAdvance single-qubit operations
	// per wire, without emitting anything. It reports whether the cut moved.
	AdvanceSpeculative(maxAdvance int) bool

	Snapshot() Snapshot
	Restore(Snapshot)

	// InsertSwap emits a SWAP between two adjacent nodes and exchanges their
	// occupants. It reports false for a swap of a node with itself or a swap
	// that would undo the previous operation on both wires.
	InsertSwap(a, b Node) (bool, error)

	// InsertBridge replaces the pending CX between control and target with
	// a BRIDGE through mediator.
	InsertBridge(control, mediator, target Node) error

	// Relabel places the unplaced unit logical on physical.
	Relabel(logical Unit, physical Node) error

	Class(n Node) Class
	NodesOf(c Class) []Node
	Reclassify(n Node, c Class) error
	Occupant(n Node) (Unit, bool)

	NextOp(u Unit) (Pending, bool)

	// Unplaced returns the unplaced units that still have operations to
	// execute.
	Unplaced() []Unit

	Done() bool
	Placement() Placement
}
