package scan

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session owns the live scan state: the latest snapshot, the compass heading,
// the device trail and the user's pan delta. Snapshot and heading updates
// arrive from the capture feed's goroutine while HTTP handlers read frames
// concurrently; the mutex is the marshaling point that guarantees a reader
// never observes a partially applied update. Snapshots are swapped in whole;
// the stored pointer is never mutated after ApplySnapshot returns.
type Session struct {
	mu sync.RWMutex

	id        string
	startedAt time.Time

	snapshot   *Snapshot
	heading    float64
	hasHeading bool
	trail      *Trail
	panX, panY float64

	updates int64
}

// NewSession starts a fresh session with an empty trail.
func NewSession() *Session {
	return &Session{
		id:        uuid.New().String(),
		startedAt: time.Now(),
		trail:     NewTrail(DefaultTrailCapacity, DefaultTrailInterval),
	}
}

// ID returns the session's UUID.
func (s *Session) ID() string { return s.id }

// StartedAt returns the session start time.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// ApplySnapshot atomically replaces the current snapshot (latest wins) and
// offers the new pose estimate to the trail. Invalid wall transforms are
// logged but still rendered; the pipeline degrades rather than drops data.
func (s *Session) ApplySnapshot(snap *Snapshot) {
	if snap == nil {
		return
	}

	for _, el := range snap.Surfaces {
		if el.Kind != SurfaceWall {
			continue
		}
		if check := CheckTransform(el.Transform); !check.Valid {
			log.Printf("scan: wall %s has a suspect transform: %v", el.ID, check.Issues)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.updates++
	if pos, ok := EstimateDevicePose(snap); ok {
		s.trail.Record(pos)
	}
}

// SetHeading stores a compass heading in degrees [0,360). Out-of-range
// values are rejected so a misbehaving source cannot wedge the indicator.
func (s *Session) SetHeading(deg float64) error {
	if deg < 0 || deg >= 360 {
		return fmt.Errorf("heading %.2f out of range [0,360)", deg)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heading = deg
	s.hasHeading = true
	return nil
}

// Pan adds a user pan delta in canvas pixels. The delta persists across
// viewport re-fits and is applied additively on top of the computed offset;
// it is never re-derived from geometry.
func (s *Session) Pan(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panX += dx
	s.panY += dy
}

// ResetPan clears the accumulated pan delta.
func (s *Session) ResetPan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panX = 0
	s.panY = 0
}

// HasSnapshot reports whether any snapshot has been applied yet. Before the
// first one, frames contain only the default grid and exports are refused.
func (s *Session) HasSnapshot() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

// Frame fits the viewport to the current scene and projects the drawable
// list for a canvas of the given pixel size. Safe to call before the first
// snapshot; the result is then just the background grid at the default scale.
func (s *Session) Frame(canvasW, canvasH float64) ([]Primitive, Viewport) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vp := FitViewport(s.snapshot, s.trail, canvasW, canvasH, s.panX, s.panY)
	prims := Project(s.snapshot, s.trail, vp, s.heading, s.hasHeading)
	return prims, vp
}

// Export builds the export document for the current snapshot. Returns an
// error while no snapshot has arrived.
func (s *Session) Export() (*ExportDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, fmt.Errorf("no snapshot captured yet")
	}
	return BuildExportDocument(s.snapshot), nil
}

// TrailSamples returns a copy of the accepted trail samples, oldest first.
func (s *Session) TrailSamples() []TrailSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trail.Samples()
}

// SessionStats is a point-in-time summary for the status page.
type SessionStats struct {
	SessionID   string    `json:"session_id"`
	StartedAt   time.Time `json:"started_at"`
	Updates     int64     `json:"updates"`
	HasSnapshot bool      `json:"has_snapshot"`
	HasHeading  bool      `json:"has_heading"`
	Walls       int       `json:"walls"`
	Doors       int       `json:"doors"`
	Windows     int       `json:"windows"`
	Objects     int       `json:"objects"`
	TrailLen    int       `json:"trail_len"`
}

// Stats summarizes the session for monitoring.
func (s *Session) Stats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := SessionStats{
		SessionID:   s.id,
		StartedAt:   s.startedAt,
		Updates:     s.updates,
		HasSnapshot: s.snapshot != nil,
		HasHeading:  s.hasHeading,
		TrailLen:    s.trail.Len(),
	}
	if s.snapshot != nil {
		for _, el := range s.snapshot.Surfaces {
			switch el.Kind {
			case SurfaceWall:
				stats.Walls++
			case SurfaceDoor:
				stats.Doors++
			case SurfaceWindow:
				stats.Windows++
			}
		}
		stats.Objects = len(s.snapshot.Objects)
	}
	return stats
}
