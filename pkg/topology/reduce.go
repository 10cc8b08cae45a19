package topology

import "slices"

// FindWorstNode picks the node to drop when shrinking the topology without
// disconnecting it. Candidates are the minimum-degree nodes that are not
// articulation points; among them the node with the lexicographically
// largest [Topology.DistanceProfile] (the most peripheral) wins. Ties are
// broken by the profiles in original, typically the topology before a batch
// of removals started, and then by node order. original may be nil.
//
// It reports false when no node can be removed safely.
func (t *Topology) FindWorstNode(original *Topology) (Node, bool) {
	cuts := make(map[Node]bool)
	for _, n := range t.ArticulationPoints() {
		cuts[n] = true
	}
	var bad []Node
	for _, n := range t.MinDegreeNodes() {
		if !cuts[n] {
			bad = append(bad, n)
		}
	}
	if len(bad) == 0 {
		return Node{}, false
	}
	if original == nil {
		original = t
	}

	worst := bad[0]
	worstProfile := t.profileOrNil(worst)
	for _, n := range bad[1:] {
		p := t.profileOrNil(n)
		switch c := slices.Compare(p, worstProfile); {
		case c > 0:
			worst, worstProfile = n, p
		case c == 0:
			if slices.Compare(original.profileOrNil(n), original.profileOrNil(worst)) > 0 {
				worst, worstProfile = n, p
			}
		}
	}
	return worst, true
}

func (t *Topology) profileOrNil(n Node) []int {
	p, _ := t.DistanceProfile(n)
	return p
}

// RemoveWorstNodes removes up to n nodes chosen by FindWorstNode, comparing
// ties against the topology as it was before the first removal. It returns
// the removed nodes in removal order.
func (t *Topology) RemoveWorstNodes(n int) []Node {
	original := t.Clone()
	var removed []Node
	for range n {
		worst, ok := t.FindWorstNode(original)
		if !ok {
			break
		}
		t.RemoveNode(worst)
		removed = append(removed, worst)
	}
	t.Compact()
	return removed
}
