package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qroute/pkg/device"
	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/render"
	"github.com/matzehuels/qroute/pkg/topology"
)

// topologyCommand groups the device graph inspection commands.
func (c *CLI) topologyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "topology",
		Aliases: []string{"topo"},
		Short:   "Inspect, render and reduce device topologies",
	}

	cmd.AddCommand(c.topologyInfoCommand())
	cmd.AddCommand(c.topologyRenderCommand())
	cmd.AddCommand(c.topologyReduceCommand())
	cmd.AddCommand(c.topologyLinesCommand())

	return cmd
}

// loadTopology resolves a device reference with HCL variables.
func loadTopology(ref string, vars []string) (*device.Device, *topology.Topology, error) {
	values, err := device.ParseVars(vars)
	if err != nil {
		return nil, nil, err
	}
	d, err := device.Resolve(ref, device.WithVars(values))
	if err != nil {
		return nil, nil, err
	}
	t, err := d.Topology()
	if err != nil {
		return nil, nil, qerrors.Wrap(qerrors.ErrCodeInvalidDevice, err, "device %q", d.Name)
	}
	return d, t, nil
}

func (c *CLI) topologyInfoCommand() *cobra.Command {
	var vars []string
	cmd := &cobra.Command{
		Use:   "info [device]",
		Short: "Show size, diameter and per-node connectivity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, t, err := loadTopology(args[0], vars)
			if err != nil {
				return err
			}
			return printTopologyInfo(d, t)
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "HCL device variable name=value (repeatable)")
	return cmd
}

func printTopologyInfo(d *device.Device, t *topology.Topology) error {
	fmt.Println(StyleTitle.Render(d.Name))
	if d.Description != "" {
		printDetail("%s", d.Description)
	}
	printNewline()

	printKeyValue("nodes", strconv.Itoa(t.NodeCount()))
	printKeyValue("edges", strconv.Itoa(t.EdgeCount()))
	printKeyValue("directed", strconv.FormatBool(t.Directed()))
	if diam, err := t.Diameter(); err == nil {
		printKeyValue("diameter", strconv.Itoa(diam))
	} else {
		printKeyValue("diameter", StyleWarning.Render("disconnected"))
	}
	printKeyValue("max degree", joinNodes(t.MaxDegreeNodes()))
	printKeyValue("cut nodes", joinNodes(t.ArticulationPoints()))
	printNewline()

	rows := make([][]string, 0, t.NodeCount())
	for _, n := range t.Nodes() {
		profile, err := t.DistanceProfile(n)
		dist := "-"
		if err == nil {
			dist = joinInts(profile)
		}
		rows = append(rows, []string{n.String(), strconv.Itoa(t.Degree(n)), joinNodes(t.Neighbours(n)), dist})
	}
	fmt.Println(renderTable([]string{"Node", "Degree", "Neighbours", "At distance 1..d"}, rows))
	return nil
}

func (c *CLI) topologyRenderCommand() *cobra.Command {
	var (
		vars   []string
		format string
		output string
		title  string
	)
	cmd := &cobra.Command{
		Use:   "render [device]",
		Short: "Render a device's coupling graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTopologyRender(cmd.Context(), args[0], vars, format, output, title)
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "HCL device variable name=value (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatSVG, "output format: dot, svg, png, pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <device>.<format>, - for stdout)")
	cmd.Flags().StringVar(&title, "title", "", "diagram title (default: device name)")
	return cmd
}

func (c *CLI) runTopologyRender(ctx context.Context, ref string, vars []string, format, output, title string) error {
	d, t, err := loadTopology(ref, vars)
	if err != nil {
		return err
	}
	if title == "" {
		title = d.Name
	}
	data, err := render.Render(ctx, render.ToDOT(t, render.Options{Title: title}), format)
	if err != nil {
		return err
	}
	if output == "" {
		output = d.Name + "." + format
	}
	return writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{format: data},
		formats:   []string{format},
		output:    output,
	})
}

func (c *CLI) topologyReduceCommand() *cobra.Command {
	var (
		vars   []string
		n      int
		output string
	)
	cmd := &cobra.Command{
		Use:   "reduce [device]",
		Short: "Remove the n least useful nodes and write the smaller device",
		Long: `Remove the n least useful nodes: the lowest-degree node whose removal keeps
the graph connected, with ties broken by distance profile. The reduced device
is written as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, t, err := loadTopology(args[0], vars)
			if err != nil {
				return err
			}
			removed := t.RemoveWorstNodes(n)
			if len(removed) < n {
				printWarning("only %d of %d nodes could be removed", len(removed), n)
			}
			reduced := device.FromTopology(d.Name+"-reduced", t)
			return writeDevice(reduced, output, removed)
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "HCL device variable name=value (repeatable)")
	cmd.Flags().IntVarP(&n, "count", "n", 1, "number of nodes to remove")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file (default stdout)")
	return cmd
}

// writeDevice writes d as JSON to path, or to stdout when path is empty.
func writeDevice(d *device.Device, path string, removed []qubit.ID) error {
	if path == "" || path == stdoutPath {
		return device.WriteJSON(d, os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := device.WriteJSON(d, f); err != nil {
		return err
	}
	printSuccess("Removed %s", joinNodes(removed))
	printFile(path)
	return nil
}

func (c *CLI) topologyLinesCommand() *cobra.Command {
	var (
		vars    []string
		lengths string
	)
	cmd := &cobra.Command{
		Use:   "lines [device]",
		Short: "Carve disjoint lines of the given lengths out of the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := parseLengths(lengths)
			if err != nil {
				return err
			}
			_, t, err := loadTopology(args[0], vars)
			if err != nil {
				return err
			}
			lines, err := t.Lines(ls)
			if err != nil {
				return qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "lines")
			}
			rows := make([][]string, len(lines))
			for i, line := range lines {
				rows[i] = []string{strconv.Itoa(ls[i]), strconv.Itoa(len(line)), joinNodes(line)}
			}
			fmt.Println(renderTable([]string{"Wanted", "Got", "Nodes"}, rows))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "HCL device variable name=value (repeatable)")
	cmd.Flags().StringVarP(&lengths, "lengths", "l", "", "line lengths in nodes (comma-separated, required)")
	_ = cmd.MarkFlagRequired("lengths")
	return cmd
}

func parseLengths(s string) ([]int, error) {
	parts := splitList(s)
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, qerrors.New(qerrors.ErrCodeInvalidInput, "invalid line length %q", p)
		}
		out[i] = n
	}
	return out, nil
}

func joinNodes(ns []qubit.ID) string {
	if len(ns) == 0 {
		return "-"
	}
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}
