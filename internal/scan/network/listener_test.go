package network

import (
	"fmt"
	"testing"

	"github.com/roomtrace-data/floorplan.report/internal/scan"
)

// fakeSink records what the listener applies.
type fakeSink struct {
	snapshots []*scan.Snapshot
	headings  []float64
	headErr   error
}

func (f *fakeSink) ApplySnapshot(s *scan.Snapshot) { f.snapshots = append(f.snapshots, s) }

func (f *fakeSink) SetHeading(deg float64) error {
	if f.headErr != nil {
		return f.headErr
	}
	f.headings = append(f.headings, deg)
	return nil
}

func newTestListener(sink SessionSink) *SnapshotListener {
	return NewSnapshotListener(SnapshotListenerConfig{
		Address: "127.0.0.1:0",
		Sink:    sink,
	})
}

func TestHandleMessage_Snapshot(t *testing.T) {
	sink := &fakeSink{}
	l := newTestListener(sink)

	msg := []byte(`{
		"type": "snapshot",
		"capture": {
			"walls": [{
				"id": "w1",
				"dimensions": {"width": 3, "height": 2.4, "thickness": 0.1},
				"transform": {"position": {"x": 0, "y": 1.2, "z": 0}}
			}]
		}
	}`)

	if err := l.handleMessage(msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if len(sink.snapshots) != 1 {
		t.Fatalf("applied %d snapshots, want 1", len(sink.snapshots))
	}
	if walls := sink.snapshots[0].Walls(); len(walls) != 1 || walls[0].ID != "w1" {
		t.Errorf("snapshot walls not carried through: %+v", walls)
	}
}

func TestHandleMessage_Heading(t *testing.T) {
	sink := &fakeSink{}
	l := newTestListener(sink)

	if err := l.handleMessage([]byte(`{"type": "heading", "degrees": 271.5}`)); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if len(sink.headings) != 1 || sink.headings[0] != 271.5 {
		t.Errorf("headings = %v, want [271.5]", sink.headings)
	}
}

func TestHandleMessage_HeadingRejectionPropagates(t *testing.T) {
	sink := &fakeSink{headErr: fmt.Errorf("out of range")}
	l := newTestListener(sink)

	if err := l.handleMessage([]byte(`{"type": "heading", "degrees": 999}`)); err == nil {
		t.Fatal("expected error when the sink rejects the heading")
	}
}

func TestHandleMessage_Malformed(t *testing.T) {
	sink := &fakeSink{}
	l := newTestListener(sink)

	cases := []struct {
		name string
		msg  string
	}{
		{"not_json", `{{{`},
		{"unknown_type", `{"type": "lidar"}`},
		{"snapshot_without_capture", `{"type": "snapshot"}`},
		{"empty", ``},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := l.handleMessage([]byte(tc.msg)); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
	if len(sink.snapshots) != 0 || len(sink.headings) != 0 {
		t.Error("malformed messages must not reach the sink")
	}
}

func TestHandleMessage_CountsStats(t *testing.T) {
	sink := &fakeSink{}
	stats := NewFeedStats()
	l := NewSnapshotListener(SnapshotListenerConfig{Sink: sink, Stats: stats})

	l.handleMessage([]byte(`{"type": "heading", "degrees": 10}`))
	l.handleMessage([]byte(`garbage`))

	stats.mu.Lock()
	defer stats.mu.Unlock()
	if stats.messages != 2 || stats.headings != 1 {
		t.Errorf("stats = %d messages, %d headings; want 2, 1", stats.messages, stats.headings)
	}
}

func TestNewSnapshotListener_Defaults(t *testing.T) {
	l := NewSnapshotListener(SnapshotListenerConfig{Sink: &fakeSink{}})

	if l.stats == nil {
		t.Error("nil stats must default to a no-op implementation")
	}
	if l.rcvBuf == 0 {
		t.Error("receive buffer must default to a positive size")
	}
	if l.logInterval == 0 {
		t.Error("log interval must default to a positive duration")
	}
}
