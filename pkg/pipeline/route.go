package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/qroute/pkg/circuit"
	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/frontier"
	"github.com/matzehuels/qroute/pkg/observability"
	"github.com/matzehuels/qroute/pkg/router"
	"github.com/matzehuels/qroute/pkg/topology"
)

// Route routes c onto t with the methods and seed placement in opts.
// deviceName labels hooks and logs.
func Route(ctx context.Context, c *circuit.Circuit, t *topology.Topology, deviceName string, opts Options) (*router.Result, error) {
	methods, err := opts.RouterMethods()
	if err != nil {
		return nil, err
	}
	seed, err := opts.SeedPlacement()
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRouteStart(ctx, deviceName, t.NodeCount())
	start := time.Now()

	res, err := route(ctx, c, t, seed, methods, opts)
	hooks.OnRouteComplete(ctx, deviceName, time.Since(start), err)
	return res, err
}

func route(ctx context.Context, c *circuit.Circuit, t *topology.Topology, seed map[frontier.Unit]frontier.Node, methods []router.Method, opts Options) (*router.Result, error) {
	var fopts []frontier.Option
	if seed != nil {
		fopts = append(fopts, frontier.WithPlacement(seed))
	}
	f, err := frontier.New(c, t, fopts...)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "prepare circuit")
	}
	r := router.New(t,
		router.WithMethods(methods...),
		router.WithLogger(opts.Logger),
		router.WithMaxIterations(opts.MaxIterations),
	)
	return r.Route(ctx, f)
}
