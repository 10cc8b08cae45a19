package router

import (
	"errors"

	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/frontier"
	"github.com/matzehuels/qroute/pkg/topology"
)

var (
	// ErrUnroutable is returned when a qubit needs a node and no Free,
	// Ancilla or Reassignable node is left.
	ErrUnroutable = errors.New("router: no node available")

	// ErrRoutingFailure is returned when no action makes progress: the
	// fallback could not insert its swaps, or the iteration limit was hit.
	ErrRoutingFailure = errors.New("router: routing failure")

	// ErrNoMethod is returned when interactions remain but no configured
	// method accepts the state.
	ErrNoMethod = errors.New("router: no method applies")
)

// coded attaches an error code to err based on the sentinel it wraps.
// Errors that already carry a code are returned unchanged.
func coded(err error, subjects ...Node) error {
	if err == nil || qerrors.GetCode(err) != "" {
		return err
	}
	var code qerrors.Code
	switch {
	case errors.Is(err, topology.ErrDisconnected):
		code = qerrors.ErrCodeDisconnected
	case errors.Is(err, topology.ErrEmpty), errors.Is(err, topology.ErrNodeNotFound):
		code = qerrors.ErrCodeInvalidTopology
	case errors.Is(err, ErrUnroutable):
		code = qerrors.ErrCodeUnroutable
	case errors.Is(err, ErrRoutingFailure):
		code = qerrors.ErrCodeRoutingFailure
	case errors.Is(err, frontier.ErrBridgeInvalid):
		code = qerrors.ErrCodeBridgeInvalid
	case errors.Is(err, frontier.ErrContract), errors.Is(err, ErrNoMethod),
		errors.Is(err, frontier.ErrNotAdjacent), errors.Is(err, frontier.ErrOccupied),
		errors.Is(err, frontier.ErrUnknownUnit), errors.Is(err, frontier.ErrAlreadyPlaced):
		code = qerrors.ErrCodeContractViolation
	default:
		code = qerrors.ErrCodeInternal
	}
	e := qerrors.Wrap(code, err, "routing failed")
	for _, n := range subjects {
		e.WithSubjects(n.String())
	}
	return e
}
