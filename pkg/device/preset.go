package device

import (
	"fmt"
	"regexp"
	"strconv"

	qerrors "github.com/matzehuels/qroute/pkg/errors"
)

var (
	sizedPreset = regexp.MustCompile(`^(line|ring|full)-([1-9][0-9]*)$`)
	gridPreset  = regexp.MustCompile(`^grid-([1-9][0-9]*)x([1-9][0-9]*)(?:x([1-9][0-9]*))?$`)
)

// maxPresetNodes bounds generated devices so a typo cannot allocate a huge
// distance table.
const maxPresetNodes = 4096

// Preset returns the generated device called name:
//
//	line-N, ring-N, full-N   N nodes
//	grid-RxC                 R rows by C columns
//	grid-RxCxL               L stacked grid layers
func Preset(name string) (*Device, error) {
	var gen Generator
	if m := sizedPreset.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[2])
		gen = Generator{Kind: m[1], Size: n}
	} else if m := gridPreset.FindStringSubmatch(name); m != nil {
		rows, _ := strconv.Atoi(m[1])
		cols, _ := strconv.Atoi(m[2])
		layers := 1
		if m[3] != "" {
			layers, _ = strconv.Atoi(m[3])
		}
		gen = Generator{Kind: "grid", Rows: rows, Cols: cols, Layers: layers}
	} else {
		return nil, qerrors.New(qerrors.ErrCodeDeviceNotFound, "unknown preset %q", name)
	}
	if gen.nodes() > maxPresetNodes {
		return nil, qerrors.New(qerrors.ErrCodeInvalidDevice, "preset %q exceeds %d nodes", name, maxPresetNodes)
	}
	return &Device{
		Name:        name,
		Description: gen.describe(),
		Generator:   &gen,
	}, nil
}

func (g *Generator) nodes() int {
	if g.Kind == "grid" {
		return g.Rows * g.Cols * max(g.Layers, 1)
	}
	return g.Size
}

func (g *Generator) describe() string {
	switch g.Kind {
	case "line":
		return fmt.Sprintf("%d qubits in a line", g.Size)
	case "ring":
		return fmt.Sprintf("%d qubits in a ring", g.Size)
	case "full":
		return fmt.Sprintf("%d fully connected qubits", g.Size)
	}
	if g.Layers > 1 {
		return fmt.Sprintf("%d layers of %dx%d square grid", g.Layers, g.Rows, g.Cols)
	}
	return fmt.Sprintf("%dx%d square grid", g.Rows, g.Cols)
}

// Builtins lists the presets offered by the device picker.
func Builtins() []*Device {
	names := []string{
		"line-5", "line-20",
		"ring-8", "ring-16",
		"grid-3x3", "grid-5x5", "grid-4x4x2",
		"full-5",
	}
	out := make([]*Device, 0, len(names))
	for _, n := range names {
		d, err := Preset(n)
		if err != nil {
			panic(err)
		}
		out = append(out, d)
	}
	return out
}
