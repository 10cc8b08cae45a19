package topology

import "github.com/matzehuels/qroute/pkg/qubit"

// Line returns node[0] - node[1] - ... - node[n-1].
func Line(n int) *Topology {
	t := New()
	for i := range n {
		t.AddNode(qubit.Node(i))
	}
	for i := 0; i+1 < n; i++ {
		_ = t.AddEdge(qubit.Node(i), qubit.Node(i+1), 1)
	}
	return t
}

// Ring returns a line of n nodes closed by an edge node[n-1] - node[0].
// Rings of fewer than three nodes are lines.
func Ring(n int) *Topology {
	t := Line(n)
	if n >= 3 {
		_ = t.AddEdge(qubit.Node(n-1), qubit.Node(0), 1)
	}
	return t
}

// SquareGrid returns a rows x cols grid repeated over layers, with vertical
// couplings between matching positions of adjacent layers. The node at
// (row, col, layer) is node[layer*rows*cols + row*cols + col].
func SquareGrid(rows, cols, layers int) *Topology {
	if layers < 1 {
		layers = 1
	}
	t := New()
	id := func(r, c, l int) Node { return qubit.Node(l*rows*cols + r*cols + c) }
	for l := range layers {
		for r := range rows {
			for c := range cols {
				t.AddNode(id(r, c, l))
				if c+1 < cols {
					_ = t.AddEdge(id(r, c, l), id(r, c+1, l), 1)
				}
				if r+1 < rows {
					_ = t.AddEdge(id(r, c, l), id(r+1, c, l), 1)
				}
				if l+1 < layers {
					_ = t.AddEdge(id(r, c, l), id(r, c, l+1), 1)
				}
			}
		}
	}
	return t
}

// FullyConnected returns the complete graph on n nodes.
func FullyConnected(n int) *Topology {
	t := New()
	for i := range n {
		t.AddNode(qubit.Node(i))
		for j := range i {
			_ = t.AddEdge(qubit.Node(j), qubit.Node(i), 1)
		}
	}
	return t
}
