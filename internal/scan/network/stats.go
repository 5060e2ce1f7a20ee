package network

import (
	"log"
	"sync"
	"time"
)

// FeedStats tracks scan feed throughput for periodic logging.
type FeedStats struct {
	mu        sync.Mutex
	messages  int64
	bytes     int64
	snapshots int64
	headings  int64
	dropped   int64
	since     time.Time
}

// NewFeedStats creates a stats collector.
func NewFeedStats() *FeedStats {
	return &FeedStats{since: time.Now()}
}

// AddMessage records one received datagram of the given size.
func (s *FeedStats) AddMessage(bytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages++
	s.bytes += int64(bytes)
}

// AddSnapshot records one applied snapshot.
func (s *FeedStats) AddSnapshot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots++
}

// AddHeading records one applied heading update.
func (s *FeedStats) AddHeading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headings++
}

// AddDropped records one malformed or rejected message.
func (s *FeedStats) AddDropped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped++
}

// LogStats logs the counters accumulated since the last report and resets
// them.
func (s *FeedStats) LogStats() {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := time.Since(s.since)
	log.Printf("Scan feed: %d messages (%d bytes) in %v: %d snapshots, %d headings, %d dropped",
		s.messages, s.bytes, elapsed.Round(time.Second), s.snapshots, s.headings, s.dropped)

	s.messages, s.bytes = 0, 0
	s.snapshots, s.headings, s.dropped = 0, 0, 0
	s.since = time.Now()
}
