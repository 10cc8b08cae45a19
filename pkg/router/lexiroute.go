package router

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/qroute/pkg/frontier"
	"github.com/matzehuels/qroute/pkg/lexico"
	"github.com/matzehuels/qroute/pkg/qubit"
)

const nameLexiRoute = "lexi_route"

// Defaults for LexiRoute.
const (
	DefaultDepth       = 10
	DefaultBridgeDepth = 2
	DefaultMaxAdvance  = 10
)

// LexiRoute chooses one SWAP or BRIDGE per call by comparing the distance
// vectors of the interactions at the cut and, while candidates tie, of
// later layers.
//
// Candidates are the swaps on edges incident to an interacting node, minus
// the swap committed last. A candidate survives only when it brings one of
// its two nodes strictly closer to its partner. Survivors are pruned layer
// by layer for at most Depth layers; the last survivor in (A, B) order
// wins. If the winning swap touches a CX whose operands are two hops apart,
// a BRIDGE is used instead unless looking BridgeDepth layers ahead shows the
// swap doing strictly better.
type LexiRoute struct {
	// Depth is the number of layers compared while candidates tie.
	Depth int `json:"depth"`
	// BridgeDepth is the number of layers compared for the BRIDGE check.
	BridgeDepth int `json:"bridge_depth"`
	// MaxAdvance caps the single-qubit operations skipped per wire when
	// moving to the next layer. Zero or less means no cap.
	MaxAdvance int `json:"max_advance"`
}

// DefaultLexiRoute returns a LexiRoute with the default settings.
func DefaultLexiRoute() LexiRoute {
	return LexiRoute{Depth: DefaultDepth, BridgeDepth: DefaultBridgeDepth, MaxAdvance: DefaultMaxAdvance}
}

func (m LexiRoute) validate() error {
	if m.Depth < 1 {
		return fmt.Errorf("router: %s depth must be positive, got %d", nameLexiRoute, m.Depth)
	}
	if m.BridgeDepth < 0 {
		return fmt.Errorf("router: %s bridge_depth must not be negative, got %d", nameLexiRoute, m.BridgeDepth)
	}
	return nil
}

// Name implements Method.
func (LexiRoute) Name() string { return nameLexiRoute }

// MarshalJSON implements json.Marshaler.
func (m LexiRoute) MarshalJSON() ([]byte, error) {
	type plain LexiRoute
	return json.Marshal(struct {
		Name string `json:"name"`
		plain
	}{nameLexiRoute, plain(m)})
}

// Check implements Method. It applies once every interacting unit is placed
// and some pair is not yet adjacent.
func (LexiRoute) Check(p *Pass) bool {
	return routable(p)
}

func routable(p *Pass) bool {
	if len(p.Ctx.Interactions) == 0 {
		return false
	}
	for a := range p.Ctx.Interactions {
		if !p.Topology.HasNode(a) {
			return false
		}
	}
	far, err := p.far(p.Ctx.Interactions)
	return err == nil && far
}

// Route implements Method.
func (m LexiRoute) Route(p *Pass) error {
	inter := p.Ctx.Interactions
	cands := decreasing(p, candidates(p, inter))
	if len(cands) == 0 {
		p.Logger.Debug("no decreasing swap, falling back", "method", m.Name())
		return ShortestPath{}.route(p, m.Name())
	}

	cands, err := m.lookahead(p, inter, cands)
	if err != nil {
		return err
	}
	winner := cands[len(cands)-1]

	if end, ok := m.bridgeEnd(p, inter, winner); ok {
		useBridge, err := m.bridgeWins(p, winner, end)
		if err != nil {
			return err
		}
		if useBridge {
			return m.commitBridge(p, end, inter[end])
		}
	}

	ok, err := p.swap(m.Name(), winner)
	if err != nil {
		return err
	}
	if !ok {
		p.Logger.Debug("swap rejected, falling back", "method", m.Name(), "swap", winner)
		return ShortestPath{}.route(p, m.Name())
	}
	return nil
}

// candidates returns the normalised swaps on edges incident to an
// interacting node, ascending, without the last committed swap.
func candidates(p *Pass, inter map[Node]Node) []Swap {
	seen := make(map[Swap]bool)
	var out []Swap
	for _, a := range qubit.Sorted(inter) {
		if inter[a] == a {
			continue
		}
		for _, b := range p.Topology.Neighbours(a) {
			s := Swap{A: a, B: b}.Normalize()
			if seen[s] || (p.Ctx.hasLastSwap() && s.Equal(p.Ctx.LastSwap)) {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	slices.SortFunc(out, lexico.CompareSwaps)
	return out
}

// decreasing keeps the swaps that strictly improve the pair of distances
// from their two nodes to their partners, compared largest first. A node
// without a partner is its own partner.
func decreasing(p *Pass, swaps []Swap) []Swap {
	partner := func(n Node) Node {
		if q, ok := p.Ctx.Interactions[n]; ok {
			return q
		}
		return n
	}
	dist := func(a, b Node) int {
		d, err := p.distance(a, b)
		if err != nil {
			panic(fmt.Sprintf("router: distance %v-%v: %v", a, b, err))
		}
		return d
	}
	desc := func(x, y int) [2]int {
		if x < y {
			return [2]int{y, x}
		}
		return [2]int{x, y}
	}
	var out []Swap
	for _, s := range swaps {
		pa, pb := partner(s.A), partner(s.B)
		if pa == s.B {
			continue
		}
		cur := desc(dist(s.A, pa), dist(s.B, pb))
		next := desc(dist(s.B, pa), dist(s.A, pb))
		if slices.Compare(next[:], cur[:]) < 0 {
			out = append(out, s)
		}
	}
	return out
}

// lookahead prunes cands against the current interactions and then against
// later layers while more than one survives.
func (m LexiRoute) lookahead(p *Pass, inter map[Node]Node, cands []Swap) ([]Swap, error) {
	snap := p.Frontier.Snapshot()
	defer p.Frontier.Restore(snap)

	current := inter
	for depth := 0; len(cands) > 1 && depth < m.Depth; depth++ {
		cmp, err := lexico.New(p.Topology, current)
		if err != nil {
			return nil, err
		}
		cands = cmp.PruneToBest(cands)
		if len(cands) <= 1 || !p.Frontier.AdvanceSpeculative(m.MaxAdvance) {
			break
		}
		if current, err = p.Frontier.Interactions(frontier.ModePlaced); err != nil {
			return nil, err
		}
		if len(current) == 0 {
			break
		}
	}
	return cands, nil
}

// bridgeEnd returns the node of s whose pending CX could become a BRIDGE.
// Exactly one of the two nodes must qualify.
func (m LexiRoute) bridgeEnd(p *Pass, inter map[Node]Node, s Swap) (Node, bool) {
	if m.BridgeDepth <= 0 {
		return Node{}, false
	}
	qualifies := func(n Node) bool {
		q, ok := inter[n]
		if !ok || q == n {
			return false
		}
		if d, err := p.distance(n, q); err != nil || d != 2 {
			return false
		}
		next, ok := p.Frontier.NextOp(n)
		return ok && next.CX && next.Ready
	}
	a, b := qualifies(s.A), qualifies(s.B)
	switch {
	case a && !b:
		return s.A, true
	case b && !a:
		return s.B, true
	}
	return Node{}, false
}

// bridgeWins compares s against leaving end's CX to a BRIDGE on the layers
// after the current one. The BRIDGE wins whenever it survives pruning, so
// ties and an empty lookahead go to the BRIDGE.
func (m LexiRoute) bridgeWins(p *Pass, s Swap, end Node) (bool, error) {
	snap := p.Frontier.Snapshot()
	defer p.Frontier.Restore(snap)

	cands := []Swap{s, {A: end, B: end}}
	for depth := 0; len(cands) > 1 && depth < m.BridgeDepth; depth++ {
		if !p.Frontier.AdvanceSpeculative(m.MaxAdvance) {
			break
		}
		next, err := p.Frontier.Interactions(frontier.ModePlaced)
		if err != nil {
			return false, err
		}
		if len(next) == 0 {
			break
		}
		cmp, err := lexico.New(p.Topology, next)
		if err != nil {
			return false, err
		}
		cands = cmp.PruneToBest(cands)
	}
	return slices.ContainsFunc(cands, Swap.IsNoop), nil
}

func (m LexiRoute) commitBridge(p *Pass, end, partner Node) error {
	next, _ := p.Frontier.NextOp(end)
	control, target := end, partner
	if next.Port != 0 {
		control, target = partner, end
	}
	path, err := p.Topology.Path(control, target)
	if err != nil {
		return err
	}
	if len(path) != 3 {
		return fmt.Errorf("%w: %v and %v are %d hops apart", frontier.ErrBridgeInvalid, control, target, len(path)-1)
	}
	return p.bridge(m.Name(), control, path[1], target)
}
