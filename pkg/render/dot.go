package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/qroute/pkg/lexico"
	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/topology"
)

// Options configures topology diagrams.
type Options struct {
	// Placement maps logical qubits to nodes. Occupied nodes are filled and
	// labelled with their qubit.
	Placement map[qubit.ID]qubit.ID

	// Swaps are drawn as thicker couplings labelled with their count.
	Swaps []lexico.Swap

	// Title is drawn above the graph when set.
	Title string
}

const (
	occupiedFill = "#a6cee3"
	trafficColor = "#e31a1c"
)

// ToDOT converts a topology to Graphviz DOT. Undirected topologies become
// a graph, directed ones a digraph. Output is deterministic: nodes and
// couplings appear in ascending order.
func ToDOT(t *topology.Topology, opts Options) string {
	occupant := make(map[qubit.ID]qubit.ID, len(opts.Placement))
	for u, n := range opts.Placement {
		occupant[n] = u
	}
	traffic := make(map[lexico.Swap]int, len(opts.Swaps))
	for _, s := range opts.Swaps {
		traffic[s.Normalize()]++
	}

	kind, arrow := "graph", "--"
	if t.Directed() {
		kind, arrow = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", kind)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range t.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.String(), strings.Join(nodeAttrs(n, occupant), ", "))
	}

	buf.WriteString("\n")
	for _, e := range t.Edges() {
		fmt.Fprintf(&buf, "  %q %s %q", e.From.String(), arrow, e.To.String())
		if attrs := edgeAttrs(e, traffic); len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n qubit.ID, occupant map[qubit.ID]qubit.ID) []string {
	u, ok := occupant[n]
	if !ok {
		return []string{fmt.Sprintf("label=%q", n.String())}
	}
	return []string{
		fmt.Sprintf("label=%q", n.String()+"\n"+u.String()),
		fmt.Sprintf("fillcolor=%q", occupiedFill),
	}
}

func edgeAttrs(e topology.Edge, traffic map[lexico.Swap]int) []string {
	var attrs []string
	if e.Weight > 1 {
		attrs = append(attrs, "style=dashed")
	}
	if k := traffic[lexico.Swap{A: e.From, B: e.To}.Normalize()]; k > 0 {
		attrs = append(attrs,
			fmt.Sprintf("penwidth=%d", min(1+k, 6)),
			fmt.Sprintf("color=%q", trafficColor),
			fmt.Sprintf("label=%q", fmt.Sprint(k)),
		)
	}
	return attrs
}
