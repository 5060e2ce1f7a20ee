package headingmux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"
)

// MockCompassPort implements CompassPorter for testing and mock operation.
type MockCompassPort struct {
	io.Reader
	io.WriteCloser
}

// NewMockHeadingMux creates a HeadingMux backed by a synthetic compass that
// sweeps a full rotation every two minutes.
func NewMockHeadingMux() *HeadingMux[*MockCompassPort] {
	r, w := io.Pipe()

	go func() {
		defer w.Close()
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		start := time.Now()
		for range ticker.C {
			deg := math.Mod(time.Since(start).Seconds()*3, 360)
			if _, err := fmt.Fprintf(w, "HDG,%.1f\n", deg); err != nil {
				return
			}
		}
	}()

	return NewHeadingMux(&MockCompassPort{
		Reader:      r,
		WriteCloser: nopWriteCloser{},
	})
}

type nopWriteCloser struct{}

func (nopWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (nopWriteCloser) Close() error                { return nil }

// disabledMux satisfies HeadingMuxInterface without a device. Subscribers get
// a channel that never receives; Monitor blocks until cancellation.
type disabledMux struct {
	subscribers map[string]chan string
	mu          sync.Mutex
}

// NewDisabledHeadingMux creates a mux for deployments without a compass.
func NewDisabledHeadingMux() HeadingMuxInterface {
	return &disabledMux{subscribers: make(map[string]chan string)}
}

func (d *disabledMux) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[id] = ch
	return id, ch
}

func (d *disabledMux) Unsubscribe(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ch, ok := d.subscribers[id]; ok {
		close(ch)
		delete(d.subscribers, id)
	}
}

func (d *disabledMux) Monitor(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (d *disabledMux) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, ch := range d.subscribers {
		close(ch)
		delete(d.subscribers, id)
	}
	return nil
}

// TestableCompassPort implements CompassPorter with scripted reads for unit
// tests.
type TestableCompassPort struct {
	mu         sync.Mutex
	readBuffer *bytes.Buffer
	closed     bool
	blockReads bool
	readCond   *sync.Cond
}

// NewTestableCompassPort creates a port whose reads block until data is
// added.
func NewTestableCompassPort() *TestableCompassPort {
	p := &TestableCompassPort{
		readBuffer: bytes.NewBuffer(nil),
		blockReads: true,
	}
	p.readCond = sync.NewCond(&p.mu)
	return p
}

func (p *TestableCompassPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.blockReads {
		for !p.closed && p.readBuffer.Len() == 0 {
			p.readCond.Wait()
		}
	}
	if p.closed {
		return 0, errors.New("compass port closed")
	}
	return p.readBuffer.Read(buf)
}

func (p *TestableCompassPort) Write(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("compass port closed")
	}
	return len(buf), nil
}

func (p *TestableCompassPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.readCond.Broadcast()
	return nil
}

// AddReadData appends data to be returned by subsequent Read calls.
func (p *TestableCompassPort) AddReadData(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readBuffer.Write(data)
	p.readCond.Signal()
}
