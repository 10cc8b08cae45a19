package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/lexico"
	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/topology"
)

func TestToDOT(t *testing.T) {
	directed := topology.New(topology.WithDirected())
	require.NoError(t, directed.AddEdge(qubit.Node(0), qubit.Node(1), 1))
	weighted := topology.New()
	require.NoError(t, weighted.AddEdge(qubit.Node(0), qubit.Node(1), 3))

	tests := []struct {
		name string
		topo *topology.Topology
		opts Options
		want []string
		skip []string
	}{
		{
			name: "plain",
			topo: topology.Line(2),
			want: []string{"graph G {", `"node[0]" -- "node[1]";`, `"node[0]" [label="node[0]"];`},
			skip: []string{"digraph", "fillcolor=\"#a6cee3\"", "labelloc"},
		},
		{
			name: "directed",
			topo: directed,
			want: []string{"digraph G {", `"node[0]" -> "node[1]";`},
		},
		{
			name: "weighted",
			topo: weighted,
			want: []string{`"node[0]" -- "node[1]" [style=dashed];`},
		},
		{
			name: "title",
			topo: topology.Line(2),
			opts: Options{Title: "line-2"},
			want: []string{`label="line-2";`, "labelloc=t;"},
		},
		{
			name: "traffic",
			topo: topology.Line(3),
			opts: Options{Swaps: []lexico.Swap{{A: qubit.Node(2), B: qubit.Node(1)}, {A: qubit.Node(1), B: qubit.Node(2)}}},
			want: []string{`"node[1]" -- "node[2]" [penwidth=3, color="#e31a1c", label="2"];`, `"node[0]" -- "node[1]";`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(tt.topo, tt.opts)
			for _, s := range tt.want {
				assert.Contains(t, dot, s)
			}
			for _, s := range tt.skip {
				assert.NotContains(t, dot, s)
			}
		})
	}
}

func TestRenderDOTPassesThrough(t *testing.T) {
	dot := ToDOT(topology.Ring(3), Options{})
	out, err := Render(t.Context(), dot, FormatDOT)
	require.NoError(t, err)
	assert.Equal(t, dot, string(out))

	_, err = Render(t.Context(), dot, "gif")
	assert.True(t, qerrors.Is(err, qerrors.ErrCodeInvalidFormat))
}

func TestRenderSVG(t *testing.T) {
	dot := ToDOT(topology.SquareGrid(2, 2, 1), Options{
		Placement: map[qubit.ID]qubit.ID{qubit.Q(0): qubit.Node(3)},
	})
	svg, err := RenderSVG(t.Context(), dot)
	require.NoError(t, err)
	s := string(svg)
	assert.Contains(t, s, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)
	assert.Contains(t, s, "node[3]")
	assert.Contains(t, s, "q[0]")
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	assert.Equal(t, want, string(normalizeViewBox(in)))

	bare := []byte(`<svg><g/></svg>`)
	assert.Equal(t, bare, normalizeViewBox(bare))
}
