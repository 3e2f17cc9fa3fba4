package chord

import "chordsim/internal/domain"

// WarmUp snaps every active node directly into the ideal steady state: each
// node's successor, predecessor, successor list, and entire finger table
// are assigned from LatestRing's sorted order rather than converged via
// stabilization rounds (§4.9). Used to start mass-failure and churn
// experiments from a known-good ring instead of waiting out a stabilize
// convergence the experiment isn't measuring.
func WarmUp(env *Environment) {
	env.refreshRing()
	ring := env.latestRing
	n := len(ring)
	if n == 0 {
		return
	}

	space := env.Space()
	r := space.SuccListSize

	for idx, id := range ring {
		node, ok := env.NodeByID(id)
		if !ok {
			continue
		}

		node.rt.SetSuccessor(ring[(idx+1)%n])
		node.rt.SetPredecessor(ring[(idx-1+n)%n])

		// The successor list contains self only when the node is alone
		// in the ring (then every entry is self). When the ring has
		// fewer than r other live nodes, the distinct clockwise
		// neighbors repeat to fill out r entries instead of wrapping
		// back onto idx itself (§8: "successor_list of each contains
		// the other repeated up to r times" in the two-node case).
		list := make([]domain.ID, r)
		for j := 0; j < r; j++ {
			offset := 1
			if n > 1 {
				offset = (j % (n - 1)) + 1
			}
			list[j] = ring[(idx+offset)%n]
		}
		node.rt.SetSuccessorList(list)

		for b := 0; b < space.Bits; b++ {
			start := space.FingerStart(id, b)
			owner := env.OwnerOf(start)
			if owner == nil {
				owner = ring[0]
			}
			node.rt.SetFinger(b, owner)
		}
	}
}
