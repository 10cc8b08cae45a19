package device

import (
	"errors"
	"fmt"

	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/topology"
)

var (
	// ErrInvalidLink is returned when a link does not name exactly two nodes.
	ErrInvalidLink = errors.New("device: invalid link")

	// ErrUnknownGenerator is returned for a generator kind that is not
	// line, ring, grid or full.
	ErrUnknownGenerator = errors.New("device: unknown generator")

	// ErrEmpty is returned when a definition yields no nodes.
	ErrEmpty = errors.New("device: no nodes")
)

// Device is a named coupling map. The nodes of the generator, if any, are
// added first; explicit Nodes and Links are layered on top, so a file can
// extend a generated grid with extra couplers.
type Device struct {
	Name        string     `json:"name,omitempty" toml:"name"`
	Description string     `json:"description,omitempty" toml:"description,omitempty"`
	Directed    bool       `json:"directed,omitempty" toml:"directed,omitempty"`
	Generator   *Generator `json:"generator,omitempty" toml:"generator,omitempty"`
	Nodes       []qubit.ID `json:"nodes" toml:"nodes"`
	Links       []Link     `json:"links" toml:"links"`
}

// Link couples two nodes. Weight defaults to 1.
type Link struct {
	Link   []qubit.ID `json:"link" toml:"link"`
	Weight int        `json:"weight" toml:"weight"`
}

// Generator describes a regular coupling map.
//
//	line, ring, full  use Size
//	grid              uses Rows, Cols and Layers (default 1)
type Generator struct {
	Kind   string `json:"kind" toml:"kind"`
	Size   int    `json:"size,omitempty" toml:"size,omitempty"`
	Rows   int    `json:"rows,omitempty" toml:"rows,omitempty"`
	Cols   int    `json:"cols,omitempty" toml:"cols,omitempty"`
	Layers int    `json:"layers,omitempty" toml:"layers,omitempty"`
}

func (g *Generator) build() (*topology.Topology, error) {
	switch g.Kind {
	case "line":
		return topology.Line(g.Size), nil
	case "ring":
		return topology.Ring(g.Size), nil
	case "full":
		return topology.FullyConnected(g.Size), nil
	case "grid":
		return topology.SquareGrid(g.Rows, g.Cols, g.Layers), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, g.Kind)
}

// Topology builds the coupling graph.
func (d *Device) Topology() (*topology.Topology, error) {
	var opts []topology.Option
	if d.Directed {
		opts = append(opts, topology.WithDirected())
	}
	t := topology.New(opts...)

	if d.Generator != nil {
		gen, err := d.Generator.build()
		if err != nil {
			return nil, err
		}
		for _, n := range gen.Nodes() {
			t.AddNode(n)
		}
		for _, e := range gen.Edges() {
			if err := t.AddEdge(e.From, e.To, e.Weight); err != nil {
				return nil, err
			}
		}
	}
	for _, n := range d.Nodes {
		t.AddNode(n)
	}
	for i, l := range d.Links {
		if len(l.Link) != 2 {
			return nil, fmt.Errorf("%w: links[%d] has %d nodes", ErrInvalidLink, i, len(l.Link))
		}
		if err := t.AddEdge(l.Link[0], l.Link[1], l.Weight); err != nil {
			return nil, fmt.Errorf("links[%d]: %w", i, err)
		}
	}
	if t.NodeCount() == 0 {
		return nil, ErrEmpty
	}
	return t, nil
}

// Validate checks the name and that the definition builds.
func (d *Device) Validate() error {
	if d.Name != "" {
		if err := qerrors.ValidateDeviceName(d.Name); err != nil {
			return err
		}
	}
	if _, err := d.Topology(); err != nil {
		return qerrors.Wrap(qerrors.ErrCodeInvalidDevice, err, "device %q", d.Name)
	}
	return nil
}

// FromTopology describes t as an explicit node and link list.
func FromTopology(name string, t *topology.Topology) *Device {
	d := &Device{
		Name:     name,
		Directed: t.Directed(),
		Nodes:    t.Nodes(),
		Links:    make([]Link, 0, t.EdgeCount()),
	}
	for _, e := range t.Edges() {
		d.Links = append(d.Links, Link{Link: []qubit.ID{e.From, e.To}, Weight: e.Weight})
	}
	return d
}
