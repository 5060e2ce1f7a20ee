package scan

import (
	"testing"
)

func TestSession_LatestSnapshotWins(t *testing.T) {
	s := NewSession()

	first := &Snapshot{Surfaces: []SurfaceElement{wallAlong("w1", 0, 1, 0, 1, 0, 2)}}
	second := &Snapshot{Surfaces: []SurfaceElement{
		wallAlong("w1", 0, 1, 0, 1, 0, 2),
		wallAlong("w2", 2, 1, 2, 0, 1, 2),
	}}

	s.ApplySnapshot(first)
	s.ApplySnapshot(second)

	stats := s.Stats()
	if stats.Walls != 2 {
		t.Errorf("stats report %d walls, want 2 from the latest snapshot", stats.Walls)
	}
	if stats.Updates != 2 {
		t.Errorf("updates = %d, want 2", stats.Updates)
	}
}

func TestSession_NilSnapshotIgnored(t *testing.T) {
	s := NewSession()
	s.ApplySnapshot(nil)

	if s.HasSnapshot() {
		t.Error("nil snapshot must not count as applied")
	}
	if s.Stats().Updates != 0 {
		t.Error("nil snapshot must not bump the update counter")
	}
}

func TestSession_ExportRequiresSnapshot(t *testing.T) {
	s := NewSession()

	if _, err := s.Export(); err == nil {
		t.Fatal("expected export error before the first snapshot")
	}

	s.ApplySnapshot(testSnapshot())
	doc, err := s.Export()
	if err != nil {
		t.Fatalf("export after snapshot: %v", err)
	}
	if len(doc.Walls) != 2 {
		t.Errorf("exported %d walls, want 2", len(doc.Walls))
	}
}

func TestSession_PanPersistsAcrossFrames(t *testing.T) {
	s := NewSession()
	s.ApplySnapshot(testSnapshot())

	_, base := s.Frame(800, 600)
	s.Pan(30, -10)
	s.Pan(5, 5)

	_, vp := s.Frame(800, 600)
	if vp.PanX != 35 || vp.PanY != -5 {
		t.Errorf("pan = (%v,%v), want accumulated (35,-5)", vp.PanX, vp.PanY)
	}
	if vp.Scale != base.Scale {
		t.Errorf("pan changed the fitted scale: %v vs %v", vp.Scale, base.Scale)
	}

	// A new snapshot re-fits the viewport but keeps the pan delta.
	s.ApplySnapshot(testSnapshot())
	_, vp = s.Frame(800, 600)
	if vp.PanX != 35 || vp.PanY != -5 {
		t.Errorf("pan after re-fit = (%v,%v), want (35,-5)", vp.PanX, vp.PanY)
	}

	s.ResetPan()
	_, vp = s.Frame(800, 600)
	if vp.PanX != 0 || vp.PanY != 0 {
		t.Errorf("pan after reset = (%v,%v), want (0,0)", vp.PanX, vp.PanY)
	}
}

func TestSession_HeadingValidation(t *testing.T) {
	s := NewSession()

	if err := s.SetHeading(359.9); err != nil {
		t.Errorf("valid heading rejected: %v", err)
	}
	if err := s.SetHeading(360); err == nil {
		t.Error("heading 360 accepted, want rejection")
	}
	if err := s.SetHeading(-1); err == nil {
		t.Error("negative heading accepted, want rejection")
	}

	// A rejected heading must not clear the prior one.
	if !s.Stats().HasHeading {
		t.Error("valid heading lost after rejected update")
	}
}

func TestSession_FrameBeforeSnapshot(t *testing.T) {
	s := NewSession()

	prims, vp := s.Frame(800, 600)
	if vp.Scale != DefaultScale {
		t.Errorf("pre-snapshot scale = %v, want default %v", vp.Scale, DefaultScale)
	}
	for i, p := range prims {
		if p.Layer != LayerGrid {
			t.Errorf("pre-snapshot primitive %d is layer %v, want grid only", i, p.Layer)
		}
	}
}

func TestSession_TrailRecordsPose(t *testing.T) {
	s := NewSession()
	s.ApplySnapshot(testSnapshot())

	samples := s.TrailSamples()
	if len(samples) != 1 {
		t.Fatalf("trail has %d samples after first snapshot, want 1", len(samples))
	}

	// The recorded position is the wall centroid estimate.
	want, ok := EstimateDevicePose(testSnapshot())
	if !ok {
		t.Fatal("test snapshot yields no pose")
	}
	if samples[0].Pos != want {
		t.Errorf("trail sample %+v, want centroid %+v", samples[0].Pos, want)
	}
}
