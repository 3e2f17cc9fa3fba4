package experiment

import (
	"math/rand"
	"sort"
)

// ChurnEventKind tags a scheduled churn arrival as a join, fail, or
// lookup, so a driver can fan a merged, time-sorted schedule out to the
// right chord.Event constructor.
type ChurnEventKind int

const (
	ChurnJoin ChurnEventKind = iota
	ChurnFail
	ChurnLookup
)

// ChurnEvent is one arrival in a generated churn schedule: a simulated
// time and what kind of event fires there.
type ChurnEvent struct {
	At   float64
	Kind ChurnEventKind
}

// PoissonSchedule yields arrival times for a Poisson process of the given
// rate (events per simulated second) up to horizon, drawing exclusively
// from rng so a run is fully reproducible from its seed — grounded on
// the original simulator's inline generator in experiments/exp_4_churn.py
// (`t += rng.expovariate(rate); if t > horizon: break`).
func PoissonSchedule(rng *rand.Rand, rate, horizon float64) []float64 {
	if rate <= 0 {
		return nil
	}
	var out []float64
	t := 0.0
	for {
		t += rng.ExpFloat64() / rate
		if t > horizon {
			return out
		}
		out = append(out, t)
	}
}

// MergedChurnSchedule builds the time-sorted join/fail/lookup arrival
// sequence exp_4_churn.py assembles before driving the environment,
// exposed here so a driver doesn't have to reimplement the merge-and-sort.
func MergedChurnSchedule(rng *rand.Rand, joinRate, failRate, lookupRate, horizon float64) []ChurnEvent {
	var events []ChurnEvent
	for _, t := range PoissonSchedule(rng, joinRate, horizon) {
		events = append(events, ChurnEvent{At: t, Kind: ChurnJoin})
	}
	for _, t := range PoissonSchedule(rng, failRate, horizon) {
		events = append(events, ChurnEvent{At: t, Kind: ChurnFail})
	}
	for _, t := range PoissonSchedule(rng, lookupRate, horizon) {
		events = append(events, ChurnEvent{At: t, Kind: ChurnLookup})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].At < events[j].At })
	return events
}
