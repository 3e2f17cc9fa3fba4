// Package scenario holds the small amount of ring-construction glue
// every chordsim subcommand needs (build N nodes, fail a fraction of
// them), kept out of the core per spec.md §1 — experiment drivers are
// external collaborators, not part of the simulated protocol.
package scenario

import (
	"chordsim/internal/chord"
)

// BuildRing joins n nodes into env one at a time: the first founds the
// ring, the rest bootstrap through it. Mirrors
// the original simulator's bootstrap loop (experiments/exp_4_churn.py:
// `first = Node(...); for _ in range(n-1): Node(env, bootstrap_id=first.node_id)`).
func BuildRing(env *chord.Environment, n int, countStats bool) []*chord.Node {
	return BuildVirtualRing(env, n, 1, countStats)
}

// BuildVirtualRing is BuildRing generalized for the virtual-node
// load-balance experiment: it joins hosts*virtualPerHost nodes, grouping each
// run of virtualPerHost consecutive nodes under one shared PhysicalID
// (the host they were "placed" on). virtualPerHost <= 1 degenerates to
// BuildRing's one-node-per-host behavior. PhysicalID never influences
// routing (chord.WithPhysicalID is a passthrough tag); this only changes
// how many node_ids a host count maps to.
func BuildVirtualRing(env *chord.Environment, hosts, virtualPerHost int, countStats bool) []*chord.Node {
	if hosts <= 0 {
		return nil
	}
	if virtualPerHost < 1 {
		virtualPerHost = 1
	}

	var baseOpts []chord.Option
	if countStats {
		baseOpts = append(baseOpts, chord.WithCountStats())
	}

	space := env.Space()
	nodes := make([]*chord.Node, 0, hosts*virtualPerHost)
	var bootstrap *chord.Node
	for h := 0; h < hosts; h++ {
		hostID := space.RandomID(env.Rand())
		for v := 0; v < virtualPerHost; v++ {
			opts := append(append([]chord.Option(nil), baseOpts...), chord.WithPhysicalID(hostID))
			var n *chord.Node
			if bootstrap == nil {
				n = chord.NewNode(env, nil, opts...)
			} else {
				n = chord.NewNode(env, bootstrap.NodeID, opts...)
			}
			if bootstrap == nil {
				bootstrap = n
			}
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// FailFraction marks floor(frac*len(nodes)) active nodes inactive,
// chosen uniformly at random via env.Rand() so the choice is
// reproducible from the run's seed. Returns the number actually failed.
func FailFraction(env *chord.Environment, frac float64) int {
	ring := env.LatestRing()
	k := int(frac * float64(len(ring)))
	if k <= 0 || len(ring) == 0 {
		return 0
	}
	if k >= len(ring) {
		k = len(ring) - 1 // never drop the last surviving node
	}

	rng := env.Rand()
	picked := make(map[string]struct{}, k)
	failed := 0
	for failed < k {
		id := ring[rng.Intn(len(ring))]
		if _, already := picked[id.Key()]; already {
			continue
		}
		picked[id.Key()] = struct{}{}
		env.ScheduleEvent(0, chord.NodeFailEvent{NodeID: id})
		failed++
	}
	now := env.Now()
	env.Run(&now)
	return failed
}
