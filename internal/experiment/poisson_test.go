package experiment

import (
	"math/rand"
	"testing"
)

func TestPoissonScheduleStaysWithinHorizon(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	events := PoissonSchedule(rng, 2.0, 100.0)
	if len(events) == 0 {
		t.Fatal("expected at least one arrival")
	}
	for i, at := range events {
		if at > 100.0 {
			t.Fatalf("event %d at t=%.3f exceeds horizon", i, at)
		}
		if i > 0 && at <= events[i-1] {
			t.Fatalf("arrivals must be strictly increasing: event %d at %.3f <= event %d at %.3f", i, at, i-1, events[i-1])
		}
	}
}

func TestPoissonScheduleZeroRateYieldsNothing(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if events := PoissonSchedule(rng, 0, 100); events != nil {
		t.Errorf("expected no events for a zero rate, got %d", len(events))
	}
}

func TestPoissonScheduleDeterministicFromSeed(t *testing.T) {
	a := PoissonSchedule(rand.New(rand.NewSource(42)), 1.5, 50)
	b := PoissonSchedule(rand.New(rand.NewSource(42)), 1.5, 50)
	if len(a) != len(b) {
		t.Fatalf("same seed produced different event counts: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("event %d differs: %.6f vs %.6f", i, a[i], b[i])
		}
	}
}

func TestMergedChurnScheduleIsSortedByTime(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	events := MergedChurnSchedule(rng, 0.5, 0.1, 1.0, 200)
	for i := 1; i < len(events); i++ {
		if events[i].At < events[i-1].At {
			t.Fatalf("merged schedule not sorted at index %d: %.3f < %.3f", i, events[i].At, events[i-1].At)
		}
	}
}
