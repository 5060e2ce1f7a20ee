package scan

import (
	"testing"
	"time"
)

// fakeClock advances by a fixed step on every call, letting the throttle
// logic be tested deterministically.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestTrail(capacity int, minInterval, step time.Duration) *Trail {
	tr := NewTrail(capacity, minInterval)
	clock := &fakeClock{t: time.Unix(1000, 0), step: step}
	tr.now = clock.now
	return tr
}

func TestTrail_CapacityNeverExceeded(t *testing.T) {
	tr := newTestTrail(20, 200*time.Millisecond, 250*time.Millisecond)

	for i := 0; i < 100; i++ {
		tr.Record(PlanPoint{X: float64(i)})
		if tr.Len() > tr.Capacity() {
			t.Fatalf("trail length %d exceeds capacity %d", tr.Len(), tr.Capacity())
		}
	}
	if tr.Len() != 20 {
		t.Errorf("expected full trail of 20, got %d", tr.Len())
	}
}

func TestTrail_ThrottleRejectsSubIntervalSamples(t *testing.T) {
	// 250 samples pushed at 50ms spacing with a 200ms threshold: the first
	// sample is accepted, then every 5th (spacing must exceed, not meet,
	// the threshold), giving exactly 50 accepted at a capacity that allows
	// them all.
	tr := newTestTrail(100, 200*time.Millisecond, 50*time.Millisecond)

	accepted := 0
	for i := 0; i < 250; i++ {
		if tr.Record(PlanPoint{X: float64(i)}) {
			accepted++
		}
	}
	if accepted != 50 {
		t.Errorf("expected 50 accepted samples, got %d", accepted)
	}
	if tr.Len() != 50 {
		t.Errorf("expected trail length 50, got %d", tr.Len())
	}
}

func TestTrail_ThrottleWithSmallCapacityCaps(t *testing.T) {
	// Same push pattern but capacity below the qualifying count: the trail
	// caps at capacity, keeping the newest qualifying samples.
	tr := newTestTrail(30, 200*time.Millisecond, 50*time.Millisecond)

	for i := 0; i < 250; i++ {
		tr.Record(PlanPoint{X: float64(i)})
	}
	if tr.Len() != 30 {
		t.Errorf("expected capped trail length 30, got %d", tr.Len())
	}
}

func TestTrail_FIFOEviction(t *testing.T) {
	tr := newTestTrail(3, 200*time.Millisecond, 250*time.Millisecond)

	for i := 0; i < 5; i++ {
		tr.Record(PlanPoint{X: float64(i)})
	}

	got := tr.Positions()
	want := []float64{2, 3, 4} // oldest two evicted
	if len(got) != len(want) {
		t.Fatalf("expected %d positions, got %d", len(want), len(got))
	}
	for i, x := range want {
		if got[i].X != x {
			t.Errorf("position %d: got X=%v, want %v", i, got[i].X, x)
		}
	}
}

func TestTrail_PositionsOrderedOldestFirst(t *testing.T) {
	tr := newTestTrail(10, 200*time.Millisecond, 300*time.Millisecond)

	for i := 0; i < 7; i++ {
		tr.Record(PlanPoint{X: float64(i)})
	}
	positions := tr.Positions()
	for i := 1; i < len(positions); i++ {
		if positions[i].X <= positions[i-1].X {
			t.Fatalf("positions not in append order: %v", positions)
		}
	}
}

func TestTrail_Reset(t *testing.T) {
	tr := newTestTrail(10, 200*time.Millisecond, 300*time.Millisecond)
	for i := 0; i < 5; i++ {
		tr.Record(PlanPoint{X: float64(i)})
	}

	tr.Reset()
	if tr.Len() != 0 {
		t.Errorf("expected empty trail after reset, got %d", tr.Len())
	}
	if tr.Positions() != nil {
		t.Error("expected nil positions after reset")
	}

	// Throttle state is cleared too: the next sample is accepted.
	if !tr.Record(PlanPoint{X: 99}) {
		t.Error("expected first sample after reset to be accepted")
	}
}

func TestNewTrail_Defaults(t *testing.T) {
	tr := NewTrail(0, 0)
	if tr.Capacity() != DefaultTrailCapacity {
		t.Errorf("default capacity = %d, want %d", tr.Capacity(), DefaultTrailCapacity)
	}
	if tr.minInterval != DefaultTrailInterval {
		t.Errorf("default interval = %v, want %v", tr.minInterval, DefaultTrailInterval)
	}
}
