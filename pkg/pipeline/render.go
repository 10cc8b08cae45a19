package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/qroute/pkg/lexico"
	"github.com/matzehuels/qroute/pkg/observability"
	"github.com/matzehuels/qroute/pkg/render"
	"github.com/matzehuels/qroute/pkg/router"
	"github.com/matzehuels/qroute/pkg/topology"
)

// Report is the JSON artifact: the routed program plus what the router did.
type Report struct {
	Device string `json:"device"`
	QASM   string `json:"qasm"`
	*router.Result
}

// RenderArtifacts produces every requested format for a routed result.
func RenderArtifacts(ctx context.Context, res *router.Result, t *topology.Topology, deviceName string, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderAll(ctx, res, t, deviceName, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderAll(ctx context.Context, res *router.Result, t *topology.Topology, deviceName string, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatQASM:
			data = []byte(res.Circuit.QASM())
		case FormatJSON:
			data, err = json.MarshalIndent(Report{Device: deviceName, QASM: res.Circuit.QASM(), Result: res}, "", "  ")
		default:
			if dot == "" {
				dot = render.ToDOT(t, render.Options{
					Placement: res.Final,
					Swaps:     Swaps(res.Actions),
					Title:     opts.Title,
				})
			}
			data, err = render.Render(ctx, dot, format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Swaps lists the couplings exercised by the routing actions. A bridge
// exercises both of its couplings.
func Swaps(actions []router.Action) []lexico.Swap {
	var out []lexico.Swap
	for _, a := range actions {
		switch a.Kind {
		case router.ActionSwap:
			out = append(out, lexico.Swap{A: a.Nodes[0], B: a.Nodes[1]})
		case router.ActionBridge:
			out = append(out,
				lexico.Swap{A: a.Nodes[0], B: a.Nodes[1]},
				lexico.Swap{A: a.Nodes[1], B: a.Nodes[2]})
		}
	}
	return out
}
