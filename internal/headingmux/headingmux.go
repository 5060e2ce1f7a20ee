// Package headingmux provides an abstraction over the compass module's serial
// port with the ability for multiple clients to subscribe to heading lines
// from a single device.
package headingmux

import (
	"bufio"
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"sync"
)

// HeadingMux is a serial port multiplexer that fans compass lines out to
// subscribers.
type HeadingMux[T CompassPorter] struct {
	port         T
	subscribers  map[string]chan string
	subscriberMu sync.Mutex
	closing      bool
	closingMu    sync.Mutex
}

// HeadingMuxInterface defines the interface for the HeadingMux type.
type HeadingMuxInterface interface {
	// Subscribe creates a new channel for receiving line events from the
	// serial port. The channel ID identifies the channel when unsubscribing.
	Subscribe() (string, chan string)
	// Unsubscribe removes a channel from the list of subscribers.
	Unsubscribe(string)
	// Monitor reads lines from the serial port and sends them to the
	// subscribed channels until the context is cancelled.
	Monitor(context.Context) error
	// Close closes all subscribed channels and closes the serial port.
	Close() error
}

// NewHeadingMux creates a HeadingMux instance backed by the given port.
func NewHeadingMux[T CompassPorter](port T) *HeadingMux[T] {
	return &HeadingMux[T]{
		port:        port,
		subscribers: make(map[string]chan string),
	}
}

// randomID generates a random channel ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

func (m *HeadingMux[T]) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string)
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	m.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber from the mux.
func (m *HeadingMux[T]) Unsubscribe(id string) {
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	if ch, ok := m.subscribers[id]; ok {
		close(ch)
		delete(m.subscribers, id)
	}
}

// Monitor reads lines from the serial port and fans them out to subscribers.
func (m *HeadingMux[T]) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(m.port)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	// Read in a goroutine so the blocking Scan cannot hold up context
	// cancellation in the outer loop.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-scanErrChan:
			return err

		case line, ok := <-lineChan:
			if !ok {
				if err := scan.Err(); err != nil {
					return err
				}
				return nil
			}

			m.closingMu.Lock()
			if m.closing {
				m.closingMu.Unlock()
				return nil
			}
			m.closingMu.Unlock()

			m.subscriberMu.Lock()
			for _, ch := range m.subscribers {
				select {
				case ch <- line:
				default:
					// skip a full subscriber rather than block the fan-out
				}
			}
			m.subscriberMu.Unlock()
		}
	}
}

// Close closes all subscriber channels and the underlying port.
func (m *HeadingMux[T]) Close() error {
	m.closingMu.Lock()
	m.closing = true
	m.closingMu.Unlock()

	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	for id, ch := range m.subscribers {
		close(ch)
		delete(m.subscribers, id)
	}
	return m.port.Close()
}

// HeadingSink receives validated headings. *scan.Session satisfies it.
type HeadingSink interface {
	SetHeading(deg float64) error
}

// Feed subscribes to the mux and forwards parsed headings to the sink until
// the context is cancelled or the subscription channel closes. Non-heading
// lines are ignored; parse failures are returned to the caller's logger via
// the logf callback rather than stopping the feed.
func Feed(ctx context.Context, mux HeadingMuxInterface, sink HeadingSink, logf func(format string, args ...any)) {
	id, ch := mux.Subscribe()
	defer mux.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-ch:
			if !ok {
				return
			}
			deg, found, err := ParseHeadingLine(line)
			if err != nil {
				logf("compass: %v", err)
				continue
			}
			if !found {
				continue
			}
			if err := sink.SetHeading(deg); err != nil {
				logf("compass: heading rejected: %v", err)
			}
		}
	}
}
