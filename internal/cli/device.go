package cli

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qroute/pkg/device"
	qerrors "github.com/matzehuels/qroute/pkg/errors"
)

// deviceCommand groups the device catalogue commands.
func (c *CLI) deviceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "List, pick and export devices",
	}

	cmd.AddCommand(c.deviceListCommand())
	cmd.AddCommand(c.devicePickCommand())
	cmd.AddCommand(c.deviceExportCommand())

	return cmd
}

func (c *CLI) deviceListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in device presets",
		Long: `List built-in device presets. Any line-N, ring-N, full-N, grid-RxC or
grid-RxCxL name is accepted as a preset; these are the common ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(renderTable([]string{"Name", "Nodes", "Links", "Description"}, deviceRows(device.Builtins())))
			return nil
		},
	}
}

func deviceRows(ds []*device.Device) [][]string {
	rows := make([][]string, 0, len(ds))
	for _, d := range ds {
		nodes, edges := "?", "?"
		if t, err := d.Topology(); err == nil {
			nodes, edges = strconv.Itoa(t.NodeCount()), strconv.Itoa(t.EdgeCount())
		}
		rows = append(rows, []string{d.Name, nodes, edges, d.Description})
	}
	return rows
}

func (c *CLI) devicePickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a preset interactively and show its topology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(newDevicePicker(device.Builtins()), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("device picker: %w", err)
			}
			picked := final.(devicePicker).Selected
			if picked == nil {
				printInfo("No device selected")
				return nil
			}
			t, err := picked.Topology()
			if err != nil {
				return err
			}
			if err := printTopologyInfo(picked, t); err != nil {
				return err
			}
			printNewline()
			printNextStep("Route a circuit on it", "qroute route circuit.qasm -d "+picked.Name)
			return nil
		},
	}
}

func (c *CLI) deviceExportCommand() *cobra.Command {
	var (
		vars   []string
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export [device]",
		Short: "Write a preset or device file as JSON or TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := qerrors.ValidateFormat(format, device.FormatJSON, device.FormatTOML); err != nil {
				return err
			}
			d, t, err := loadTopology(args[0], vars)
			if err != nil {
				return err
			}
			// generated devices are written out link by link
			flat := device.FromTopology(d.Name, t)
			flat.Description = d.Description

			w := os.Stdout
			if output != "" && output != stdoutPath {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if format == device.FormatTOML {
				err = device.WriteTOML(flat, w)
			} else {
				err = device.WriteJSON(flat, w)
			}
			if err == nil && w != os.Stdout {
				printFile(output)
			}
			return err
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "HCL device variable name=value (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", device.FormatJSON, "output format: json, toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
