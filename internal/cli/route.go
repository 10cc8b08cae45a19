package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/pipeline"
)

// routeFlags holds the flags of the route command that do not map directly
// onto pipeline.Options fields.
type routeFlags struct {
	formats     string
	methods     string
	output      string
	placement   []string
	vars        []string
	bridgeDepth int
	noCache     bool
}

// routeCommand creates the route command.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		flags routeFlags
		opts  pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "route [circuit.qasm]",
		Short: "Route an OpenQASM circuit onto a device",
		Long: `Route an OpenQASM 2.0 circuit onto a device's coupling graph.

The device is a preset (line-N, ring-N, full-N, grid-RxC, grid-RxCxL) or a
JSON, TOML or HCL device file. HCL variables are set with --var.

Routed results are cached by content, so re-running with the same circuit,
device and settings is instant. Use --refresh to route again.`,
		Example: `  qroute route bell.qasm -d grid-3x3
  qroute route adder.qasm -d ibm.json -f qasm,svg -o out/adder
  qroute route ghz.qasm -d chain.hcl --var size=12 --place q[0]=node[5]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("bridge-depth") {
				d := flags.bridgeDepth
				opts.BridgeDepth = &d
			}
			return c.runRoute(cmd.Context(), args[0], opts, flags)
		},
	}

	cmd.Flags().StringVarP(&opts.Device, "device", "d", "", "device preset or file (required)")
	cmd.Flags().StringArrayVar(&flags.vars, "var", nil, "HCL device variable name=value (repeatable)")
	cmd.Flags().StringArrayVar(&flags.placement, "place", nil, "seed placement qubit=node, e.g. q[0]=node[3] (repeatable)")
	cmd.Flags().StringVarP(&flags.methods, "method", "m", "", "routing methods in order (comma-separated, default lexi_labelling,lexi_route)")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "LexiRoute look-ahead depth")
	cmd.Flags().IntVar(&flags.bridgeDepth, "bridge-depth", 0, "look-ahead layers for BRIDGE decisions (0 disables bridges)")
	cmd.Flags().IntVar(&opts.MaxAdvance, "max-advance", 0, "interactions advanced per look-ahead step")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "iteration cap (0 derives one from the circuit size)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): qasm (default), json, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVar(&opts.Title, "title", "", "diagram title")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached routes")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}

// runRoute reads the circuit, runs the pipeline and writes the artifacts.
func (c *CLI) runRoute(ctx context.Context, input string, opts pipeline.Options, flags routeFlags) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return qerrors.Wrap(qerrors.ErrCodeFileNotFound, err, "read circuit").WithSubjects(input)
	}
	opts.Circuit = string(src)
	opts.Source = input
	opts.Methods = splitList(flags.methods)
	opts.Formats = splitList(flags.formats)
	if opts.Placement, err = parseAssignments(flags.placement); err != nil {
		return err
	}
	if opts.DeviceVars, err = parseAssignments(flags.vars); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	cfg.Apply(&opts)
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	finished := startStopwatch(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Routing %s on %s...", input, opts.Device))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Routing failed")
		return err
	}
	spinner.Stop()
	finished("Routed "+input, "device", result.Device.Name, "run", result.RunID)

	if flags.output != stdoutPath {
		printRouteStats(result)
	}

	formats := opts.Formats
	if len(formats) == 0 {
		formats = []string{pipeline.DefaultFormat}
	}
	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   formats,
		input:     input,
		output:    flags.output,
	})
}
