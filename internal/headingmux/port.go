package headingmux

import (
	"io"
	"time"
)

// CompassPorter defines the minimal interface needed for a compass serial
// port. This abstraction enables unit testing without real hardware.
type CompassPorter interface {
	io.ReadWriter
	io.Closer
}

// PortMode defines serial port configuration parameters.
type PortMode struct {
	BaudRate int
	DataBits int
}

// DefaultPortMode returns the default mode for compass modules.
func DefaultPortMode() *PortMode {
	return &PortMode{
		BaudRate: 9600,
		DataBits: 8,
	}
}

// TimeoutCompassPorter extends CompassPorter with timeout capabilities.
// This is an optional interface that serial ports may implement.
type TimeoutCompassPorter interface {
	CompassPorter
	SetReadTimeout(timeout time.Duration) error
}
