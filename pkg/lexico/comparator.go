package lexico

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/topology"
)

var (
	// ErrUnknownNode is returned when an interaction names a node that is not
	// in the topology.
	ErrUnknownNode = errors.New("lexico: interacting node not in topology")

	// ErrInconsistent is returned when the interaction map pairs a node with
	// two different partners.
	ErrInconsistent = errors.New("lexico: inconsistent interaction map")
)

// Node is a physical qubit.
type Node = topology.Node

// Swap exchanges the occupants of two physical nodes. A swap with A == B is
// the no-op swap and leaves every cost unchanged.
type Swap struct {
	A, B Node
}

// Normalize returns the swap with its nodes in ascending order.
func (s Swap) Normalize() Swap {
	if s.B.Less(s.A) {
		return Swap{A: s.B, B: s.A}
	}
	return s
}

// IsNoop reports whether the swap exchanges a node with itself.
func (s Swap) IsNoop() bool { return s.A == s.B }

// Equal reports whether s and o exchange the same pair of nodes.
func (s Swap) Equal(o Swap) bool { return s.Normalize() == o.Normalize() }

func (s Swap) String() string {
	return "swap(" + s.A.String() + ", " + s.B.String() + ")"
}

// CompareSwaps orders swaps by A, then B.
func CompareSwaps(a, b Swap) int {
	if c := qubit.Compare(a.A, b.A); c != 0 {
		return c
	}
	return qubit.Compare(a.B, b.B)
}

// Vector counts interacting pairs by distance. Index 0 holds pairs at the
// diameter, the last index pairs at distance 0. Each pair is counted once
// per direction.
type Vector []int

// Compare orders cost vectors lexicographically from index 0. A negative
// result means a is better than b.
func Compare(a, b Vector) int { return slices.Compare(a, b) }

// Comparator ranks swaps by their effect on the distances between
// interacting nodes.
type Comparator struct {
	topo     *topology.Topology
	partner  map[Node]Node
	diameter int
	cost     Vector
}

// New builds a comparator for the given interactions. interactions maps a
// node to its partner; the relation is symmetrised and entries mapping a
// node to itself are ignored.
func New(t *topology.Topology, interactions map[Node]Node) (*Comparator, error) {
	diameter, err := t.Diameter()
	if err != nil {
		return nil, err
	}
	partner := make(map[Node]Node, len(interactions))
	link := func(a, b Node) error {
		if p, ok := partner[a]; ok && p != b {
			return fmt.Errorf("%w: %v paired with %v and %v", ErrInconsistent, a, p, b)
		}
		partner[a] = b
		return nil
	}
	for _, a := range qubit.Sorted(interactions) {
		b := interactions[a]
		if a == b {
			continue
		}
		for _, n := range []Node{a, b} {
			if !t.HasNode(n) {
				return nil, fmt.Errorf("%w: %v", ErrUnknownNode, n)
			}
		}
		if err := link(a, b); err != nil {
			return nil, err
		}
		if err := link(b, a); err != nil {
			return nil, err
		}
	}

	c := &Comparator{
		topo:     t,
		partner:  partner,
		diameter: diameter,
		cost:     make(Vector, diameter+1),
	}
	for a, b := range partner {
		c.cost[c.bucket(a, b)]++
	}
	return c, nil
}

// Diameter returns the topology diameter the vector is sized for.
func (c *Comparator) Diameter() int { return c.diameter }

// Partner returns the node a interacts with, or a itself.
func (c *Comparator) Partner(a Node) Node {
	if p, ok := c.partner[a]; ok {
		return p
	}
	return a
}

// Cost returns a copy of the current cost vector.
func (c *Comparator) Cost() Vector { return slices.Clone(c.cost) }

// CostAfterSwap returns the cost vector as it would be after s. Only the
// pairs touching s.A or s.B are adjusted. A no-op swap, a swap between
// partners, or a swap naming a node outside the topology returns the
// current vector.
func (c *Comparator) CostAfterSwap(s Swap) Vector {
	out := slices.Clone(c.cost)
	if s.IsNoop() || !c.topo.HasNode(s.A) || !c.topo.HasNode(s.B) {
		return out
	}
	move := func(from, to Node) {
		p, ok := c.partner[from]
		if !ok || p == to {
			return
		}
		old, now := c.bucket(from, p), c.bucket(to, p)
		if out[old] < 2 {
			panic(fmt.Sprintf("lexico: cost bucket %d underflow moving %v", old, s))
		}
		out[old] -= 2
		out[now] += 2
	}
	move(s.A, s.B)
	move(s.B, s.A)
	return out
}

// PruneToBest returns the swaps whose resulting cost vector is minimal,
// keeping every tied swap in input order.
func (c *Comparator) PruneToBest(swaps []Swap) []Swap {
	var (
		best Vector
		out  []Swap
	)
	for _, s := range swaps {
		v := c.CostAfterSwap(s)
		switch cmp := Compare(v, best); {
		case best == nil || cmp < 0:
			best = v
			out = append(out[:0], s)
		case cmp == 0:
			out = append(out, s)
		}
	}
	return out
}

func (c *Comparator) bucket(a, b Node) int {
	d, err := c.topo.Distance(a, b)
	if err != nil {
		panic(fmt.Sprintf("lexico: distance %v-%v: %v", a, b, err))
	}
	return c.diameter - d
}
