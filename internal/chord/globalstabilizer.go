package chord

import "math"

// GlobalStabilizer drives the batched maintenance loop of §4.8, used in
// ModeBatched instead of per-node StabilizeTickEvents: once per
// StabilizeInterval it refreshes LatestRing, then for every active node
// promotes a dead successor, runs StabilizeSync, repairs a bounded number
// of finger slots, and clears a dead predecessor. It advances the
// simulated clock itself, one StabilizeInterval per round (no events are
// scheduled here), and stops once until is reached or the ring empties.
func GlobalStabilizer(env *Environment, until float64) {
	for env.clock < until {
		env.clock += env.params.StabilizeInterval
		if env.clock > until {
			env.clock = until
		}

		env.refreshRing()
		ring := env.latestRing
		n := len(ring)
		if n == 0 {
			return
		}

		for idx, id := range ring {
			node, ok := env.NodeByID(id)
			if !ok || !node.Active {
				continue
			}

			succID := node.rt.Successor()
			succNode, succOK := env.NodeByID(succID)
			if !succOK || !succNode.Active {
				node.rt.SetSuccessor(ring[(idx+1)%n])
			}

			node.StabilizeSync(ring)

			maxFingers := int(math.Ceil(math.Log2(float64(n))))
			if maxFingers < 1 {
				maxFingers = 1
			}
			for i := 0; i < maxFingers; i++ {
				node.FixSpecificFingerSync(i)
			}

			node.CheckPredecessorSync()
		}
	}
}
