// Package network receives room-scan updates over UDP. Each datagram is one
// JSON envelope carrying either a full snapshot or a compass heading.
package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/roomtrace-data/floorplan.report/internal/scan"
	"github.com/roomtrace-data/floorplan.report/internal/scan/importer"
)

// Envelope message types.
const (
	MessageSnapshot = "snapshot"
	MessageHeading  = "heading"
)

// envelope is the wire frame around every datagram.
type envelope struct {
	Type    string          `json:"type"`
	Degrees float64         `json:"degrees,omitempty"`
	Capture json.RawMessage `json:"capture,omitempty"`
}

// SessionSink receives decoded updates. *scan.Session satisfies it.
type SessionSink interface {
	ApplySnapshot(*scan.Snapshot)
	SetHeading(deg float64) error
}

// FeedStatsInterface provides feed statistics management.
type FeedStatsInterface interface {
	AddMessage(bytes int)
	AddSnapshot()
	AddHeading()
	AddDropped()
	LogStats()
}

// noopStats is a FeedStatsInterface implementation that does nothing. It is
// the safe default when no stats collector is provided.
type noopStats struct{}

func (n *noopStats) AddMessage(bytes int) {}
func (n *noopStats) AddSnapshot()         {}
func (n *noopStats) AddHeading()          {}
func (n *noopStats) AddDropped()          {}
func (n *noopStats) LogStats()            {}

// SnapshotListener receives scan update datagrams and applies them to a
// session sink.
type SnapshotListener struct {
	address     string
	rcvBuf      int
	logInterval time.Duration
	conn        *net.UDPConn
	sink        SessionSink
	stats       FeedStatsInterface
}

// SnapshotListenerConfig contains configuration options for the listener.
type SnapshotListenerConfig struct {
	Address     string
	RcvBuf      int
	LogInterval time.Duration
	Sink        SessionSink
	Stats       FeedStatsInterface
}

// NewSnapshotListener creates a listener with the provided configuration.
func NewSnapshotListener(config SnapshotListenerConfig) *SnapshotListener {
	var stats FeedStatsInterface
	if config.Stats != nil {
		stats = config.Stats
	} else {
		stats = &noopStats{}
	}

	logInterval := config.LogInterval
	if logInterval == 0 {
		logInterval = time.Minute
	}

	rcvBuf := config.RcvBuf
	if rcvBuf == 0 {
		rcvBuf = 1 << 20
	}

	return &SnapshotListener{
		address:     config.Address,
		rcvBuf:      rcvBuf,
		logInterval: logInterval,
		sink:        config.Sink,
		stats:       stats,
	}
}

// Start begins listening for datagrams and applying them until the context is
// cancelled.
func (l *SnapshotListener) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", l.address)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP address: %w", err)
	}
	l.conn = conn
	defer conn.Close()

	if err := conn.SetReadBuffer(l.rcvBuf); err != nil {
		log.Printf("Warning: failed to set UDP receive buffer size to %d: %v", l.rcvBuf, err)
	}

	log.Printf("Scan feed listener started on %s with receive buffer %d bytes", l.address, l.rcvBuf)

	go l.startStatsLogging(ctx)

	// Snapshot envelopes for a whole room can run large.
	buffer := make([]byte, 256*1024)

	for {
		select {
		case <-ctx.Done():
			log.Print("Scan feed listener stopping due to context cancellation")
			return ctx.Err()
		default:
			conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))

			n, addr, err := conn.ReadFromUDP(buffer)
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("UDP read error: %v", err)
				continue
			}

			if err := l.handleMessage(buffer[:n]); err != nil {
				l.stats.AddDropped()
				log.Printf("Error handling scan message from %v: %v", addr, err)
			}
		}
	}
}

// startStatsLogging periodically logs feed statistics. An initial report goes
// out shortly after startup so a silent feed is noticed quickly.
func (l *SnapshotListener) startStatsLogging(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
		l.stats.LogStats()
	}

	ticker := time.NewTicker(l.logInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.stats.LogStats()
		}
	}
}

// handleMessage decodes one datagram and applies it to the sink. Malformed
// messages are reported but never stop the feed.
func (l *SnapshotListener) handleMessage(data []byte) error {
	l.stats.AddMessage(len(data))

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	switch env.Type {
	case MessageSnapshot:
		if len(env.Capture) == 0 {
			return fmt.Errorf("snapshot envelope has no capture payload")
		}
		snap, err := importer.Parse(bytes.NewReader(env.Capture))
		if err != nil {
			return fmt.Errorf("failed to parse snapshot payload: %w", err)
		}
		l.sink.ApplySnapshot(snap)
		l.stats.AddSnapshot()
		return nil

	case MessageHeading:
		if err := l.sink.SetHeading(env.Degrees); err != nil {
			return fmt.Errorf("heading rejected: %w", err)
		}
		l.stats.AddHeading()
		return nil

	default:
		return fmt.Errorf("unknown message type %q", env.Type)
	}
}

// Close closes the UDP listener and releases resources.
func (l *SnapshotListener) Close() error {
	if l.conn != nil {
		return l.conn.Close()
	}
	return nil
}
