package router

import (
	"fmt"
	"slices"

	"github.com/matzehuels/qroute/pkg/frontier"
	"github.com/matzehuels/qroute/pkg/qubit"
)

const nameLexiLabelling = "lexi_labelling"

// LexiLabelling places unplaced qubits that take part in an interaction.
//
// The first qubit of a pass goes to the most central node of highest
// degree. Every later qubit goes to the free node closest to its partner,
// or to the occupied nodes when the partner is unplaced too, ties going to
// the node with the smaller distance profile. Ancilla nodes count as free
// and are merged. When nothing is free a Reassignable node outside the
// current interactions is taken over.
//
// When no interacting pair needs routing, unplaced qubits blocked on other
// operations are placed on the most central free nodes.
type LexiLabelling struct{}

// Name implements Method.
func (LexiLabelling) Name() string { return nameLexiLabelling }

// MarshalJSON implements json.Marshaler.
func (LexiLabelling) MarshalJSON() ([]byte, error) {
	return []byte(`{"name":"` + nameLexiLabelling + `"}`), nil
}

// Check implements Method.
func (LexiLabelling) Check(p *Pass) bool {
	for a := range p.Ctx.Interactions {
		if !p.Topology.HasNode(a) {
			return true
		}
	}
	if len(p.Frontier.Unplaced()) == 0 {
		return false
	}
	far, err := p.far(p.Ctx.Interactions)
	return err == nil && !far
}

// Route implements Method.
func (m LexiLabelling) Route(p *Pass) error {
	pairs := unplacedPairs(p)
	if len(pairs) == 0 {
		return m.placeIdle(p)
	}
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		na, placedA := p.locate(a)
		nb, placedB := p.locate(b)
		var err error
		switch {
		case !placedA && !placedB:
			if na, err = m.root(p, a); err != nil {
				return err
			}
			if _, err = m.near(p, b, na); err != nil {
				return err
			}
		case !placedA:
			_, err = m.near(p, a, nb)
		case !placedB:
			_, err = m.near(p, b, na)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// unplacedPairs returns the interacting pairs with an unplaced member, each
// once and in ascending order.
func unplacedPairs(p *Pass) [][2]Unit {
	var out [][2]Unit
	for _, a := range qubit.Sorted(p.Ctx.Interactions) {
		b := p.Ctx.Interactions[a]
		if !a.Less(b) {
			continue
		}
		if !p.Topology.HasNode(a) || !p.Topology.HasNode(b) {
			out = append(out, [2]Unit{a, b})
		}
	}
	return out
}

// locate returns the node u is on: u itself when it is a node, or where
// this pass has already placed it.
func (p *Pass) locate(u Unit) (Node, bool) {
	if p.Topology.HasNode(u) {
		return u, true
	}
	n, ok := p.Ctx.Labelling[u]
	return n, ok
}

// root places u when its partner is unplaced too.
func (m LexiLabelling) root(p *Pass, u Unit) (Node, error) {
	occupied := p.occupied()
	if len(occupied) == 0 {
		n, err := p.mostCentral(p.Topology.MaxDegreeNodes())
		if err != nil {
			return Node{}, err
		}
		return n, p.relabel(m.Name(), u, n)
	}
	for _, reassign := range []bool{false, true} {
		for k := 1; k < p.Topology.NodeCount(); k++ {
			for _, r := range occupied {
				n, ok, err := p.bestAt(r, k, reassign)
				if err != nil {
					return Node{}, err
				}
				if ok {
					return n, p.relabel(m.Name(), u, n)
				}
			}
		}
	}
	return Node{}, unroutable(u)
}

// near places u as close to the node partner as possible.
func (m LexiLabelling) near(p *Pass, u Unit, partner Node) (Node, error) {
	for _, reassign := range []bool{false, true} {
		for k := 1; k < p.Topology.NodeCount(); k++ {
			n, ok, err := p.bestAt(partner, k, reassign)
			if err != nil {
				return Node{}, err
			}
			if ok {
				return n, p.relabel(m.Name(), u, n)
			}
		}
	}
	return Node{}, unroutable(u)
}

// placeIdle places every unplaced qubit on the most central free node.
func (m LexiLabelling) placeIdle(p *Pass) error {
	for _, u := range p.Frontier.Unplaced() {
		var (
			n   Node
			err error
		)
		if free := p.available(p.Topology.Nodes(), false); len(free) > 0 {
			n, err = p.mostCentral(free)
		} else if spare := p.available(p.Topology.Nodes(), true); len(spare) > 0 {
			n, err = p.mostCentral(spare)
		} else {
			return unroutable(u)
		}
		if err != nil {
			return err
		}
		if err := p.relabel(m.Name(), u, n); err != nil {
			return err
		}
	}
	return nil
}

// occupied returns the nodes holding a wire, in ascending order.
func (p *Pass) occupied() []Node {
	var out []Node
	for _, c := range []frontier.Class{frontier.Assigned, frontier.Ancilla, frontier.Reassignable} {
		out = append(out, p.Frontier.NodesOf(c)...)
	}
	qubit.Sort(out)
	return out
}

// available filters nodes down to those a qubit can be placed on. Without
// reassign those are Free and Ancilla nodes; with it, Reassignable nodes
// that are not interacting.
func (p *Pass) available(nodes []Node, reassign bool) []Node {
	var out []Node
	for _, n := range nodes {
		switch p.Frontier.Class(n) {
		case frontier.Free, frontier.Ancilla:
			if !reassign {
				out = append(out, n)
			}
		case frontier.Reassignable:
			if _, busy := p.Ctx.Interactions[n]; reassign && !busy {
				out = append(out, n)
			}
		}
	}
	return out
}

// bestAt returns the most central available node k hops from root.
func (p *Pass) bestAt(root Node, k int, reassign bool) (Node, bool, error) {
	ring, err := p.Topology.NodesAtDistance(root, k)
	if err != nil {
		return Node{}, false, err
	}
	cands := p.available(ring, reassign)
	if len(cands) == 0 {
		return Node{}, false, nil
	}
	n, err := p.mostCentral(cands)
	return n, err == nil, err
}

// mostCentral returns the node with the lexicographically smallest distance
// profile, the first in ascending order on ties.
func (p *Pass) mostCentral(nodes []Node) (Node, error) {
	if len(nodes) == 0 {
		return Node{}, ErrUnroutable
	}
	nodes = slices.Clone(nodes)
	qubit.Sort(nodes)
	best := nodes[0]
	bestProfile, err := p.Topology.DistanceProfile(best)
	if err != nil {
		return Node{}, err
	}
	for _, n := range nodes[1:] {
		profile, err := p.Topology.DistanceProfile(n)
		if err != nil {
			return Node{}, err
		}
		if slices.Compare(profile, bestProfile) < 0 {
			best, bestProfile = n, profile
		}
	}
	return best, nil
}

func unroutable(u Unit) error {
	return fmt.Errorf("%w: cannot place %v", ErrUnroutable, u)
}
