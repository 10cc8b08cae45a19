package router

import (
	"fmt"

	"github.com/matzehuels/qroute/pkg/qubit"
)

const nameShortestPath = "shortest_path"

// ShortestPath brings the two most distant interacting nodes together by
// swapping one of them along a shortest path until they are adjacent. It
// always makes progress on a connected topology and serves as LexiRoute's
// fallback.
type ShortestPath struct{}

// Name implements Method.
func (ShortestPath) Name() string { return nameShortestPath }

// MarshalJSON implements json.Marshaler.
func (ShortestPath) MarshalJSON() ([]byte, error) {
	return []byte(`{"name":"` + nameShortestPath + `"}`), nil
}

// Check implements Method.
func (ShortestPath) Check(p *Pass) bool { return routable(p) }

// Route implements Method.
func (m ShortestPath) Route(p *Pass) error { return m.route(p, m.Name()) }

func (ShortestPath) route(p *Pass, method string) error {
	a, b, d, err := furthest(p)
	if err != nil {
		return err
	}
	if d < 2 {
		return fmt.Errorf("%w: no interacting pair to bring together", ErrRoutingFailure)
	}
	path, err := p.Topology.Path(a, b)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRoutingFailure, err)
	}
	swaps := make([]Swap, 0, len(path)-2)
	for i := 0; i+2 < len(path); i++ {
		swaps = append(swaps, Swap{A: path[i], B: path[i+1]})
	}
	if p.Ctx.hasLastSwap() && swaps[0].Equal(p.Ctx.LastSwap) {
		n := len(path)
		for i := range swaps {
			swaps[i] = Swap{A: path[n-1-i], B: path[n-2-i]}
		}
	}

	p.Stats.Fallbacks++
	p.Logger.Debug("shortest path", "method", method, "from", a, "to", b, "swaps", len(swaps))
	for _, s := range swaps {
		ok, err := p.swap(method, s)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %v rejected", ErrRoutingFailure, s)
		}
	}
	return nil
}

// furthest returns the interacting pair with the largest distance, the
// first in ascending order on ties.
func furthest(p *Pass) (Node, Node, int, error) {
	var (
		best   = -1
		ba, bb Node
	)
	for _, a := range qubit.Sorted(p.Ctx.Interactions) {
		b := p.Ctx.Interactions[a]
		if !a.Less(b) || !p.Topology.HasNode(a) || !p.Topology.HasNode(b) {
			continue
		}
		d, err := p.distance(a, b)
		if err != nil {
			return a, b, 0, err
		}
		if d > best {
			best, ba, bb = d, a, b
		}
	}
	return ba, bb, best, nil
}
