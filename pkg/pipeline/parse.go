package pipeline

import (
	"context"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/observability"
	"github.com/matzehuels/qroute/pkg/topology"
)

// Parse reads the circuit source.
func Parse(ctx context.Context, opts Options) (*circuit.Circuit, error) {
	source := opts.Source
	if source == "" {
		source = "<input>"
	}
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, source)
	start := time.Now()

	c, err := circuit.ParseQASM(opts.Circuit)
	if err != nil {
		err = qerrors.Wrap(qerrors.ErrCodeInvalidCircuit, err, "parse %s", source)
		hooks.OnParseComplete(ctx, source, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnParseComplete(ctx, source, c.NumQubits(), len(c.Ops), time.Since(start), nil)
	return c, nil
}

// LoadDevice resolves the device and builds its topology.
func LoadDevice(opts Options) (*device.Device, *topology.Topology, error) {
	d := opts.DeviceSpec
	if d == nil {
		vars := make(map[string]cty.Value, len(opts.DeviceVars))
		for k, v := range opts.DeviceVars {
			vars[k] = cty.StringVal(v)
		}
		var err error
		if d, err = device.Resolve(opts.Device, device.WithVars(vars)); err != nil {
			return nil, nil, err
		}
	} else if err := d.Validate(); err != nil {
		return nil, nil, err
	}
	t, err := d.Topology()
	if err != nil {
		return nil, nil, qerrors.Wrap(qerrors.ErrCodeInvalidDevice, err, "device %q", d.Name)
	}
	return d, t, nil
}
