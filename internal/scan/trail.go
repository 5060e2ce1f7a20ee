package scan

import "time"

// Trail capacity and sampling defaults. Sampling is throttled by wall-clock
// time so the trail density is independent of how fast the capture device
// pushes snapshots.
const (
	DefaultTrailCapacity = 200
	DefaultTrailInterval = 200 * time.Millisecond
)

// TrailSample is one accepted device position estimate.
type TrailSample struct {
	Pos PlanPoint
	At  time.Time
}

// Trail is a bounded, time-throttled history of estimated device positions,
// stored as a ring buffer with FIFO eviction. It records raw centroid
// estimates only, with no interpolation or smoothing, so the approximation
// error of the pose estimate is carried through honestly.
//
// Trail is not safe for concurrent use; the owning Session serializes access.
type Trail struct {
	samples     []TrailSample
	capacity    int
	head        int // next write position
	size        int
	minInterval time.Duration
	last        time.Time // time of the last accepted sample
	now         func() time.Time
}

// NewTrail creates a trail with the given capacity and minimum spacing
// between accepted samples. Non-positive arguments fall back to the defaults.
func NewTrail(capacity int, minInterval time.Duration) *Trail {
	if capacity < 1 {
		capacity = DefaultTrailCapacity
	}
	if minInterval <= 0 {
		minInterval = DefaultTrailInterval
	}
	return &Trail{
		samples:     make([]TrailSample, capacity),
		capacity:    capacity,
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Record offers a position estimate to the trail. It is accepted only if
// strictly more than the configured interval has elapsed since the last
// accepted sample; the oldest sample is evicted once the trail is at
// capacity. Returns whether the sample was accepted.
func (tr *Trail) Record(p PlanPoint) bool {
	t := tr.now()
	if !tr.last.IsZero() && t.Sub(tr.last) <= tr.minInterval {
		return false
	}
	tr.last = t

	tr.samples[tr.head] = TrailSample{Pos: p, At: t}
	tr.head = (tr.head + 1) % tr.capacity
	if tr.size < tr.capacity {
		tr.size++
	}
	return true
}

// Positions returns the accepted positions from oldest to newest.
func (tr *Trail) Positions() []PlanPoint {
	if tr.size == 0 {
		return nil
	}
	out := make([]PlanPoint, tr.size)
	for i := 0; i < tr.size; i++ {
		idx := (tr.head - tr.size + i + tr.capacity) % tr.capacity
		out[i] = tr.samples[idx].Pos
	}
	return out
}

// Samples returns the accepted samples with timestamps, oldest to newest.
func (tr *Trail) Samples() []TrailSample {
	if tr.size == 0 {
		return nil
	}
	out := make([]TrailSample, tr.size)
	for i := 0; i < tr.size; i++ {
		idx := (tr.head - tr.size + i + tr.capacity) % tr.capacity
		out[i] = tr.samples[idx]
	}
	return out
}

// Len returns the number of samples currently held.
func (tr *Trail) Len() int { return tr.size }

// Capacity returns the maximum number of samples the trail retains.
func (tr *Trail) Capacity() int { return tr.capacity }

// Reset discards all samples and the throttle state. Called at session start.
func (tr *Trail) Reset() {
	for i := range tr.samples {
		tr.samples[i] = TrailSample{}
	}
	tr.head = 0
	tr.size = 0
	tr.last = time.Time{}
}
