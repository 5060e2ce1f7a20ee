package headingmux

import (
	"fmt"

	"go.bug.st/serial"
)

// NewRealHeadingMux creates a HeadingMux backed by a real serial port at the
// given path.
func NewRealHeadingMux(path string, mode *PortMode) (*HeadingMux[serial.Port], error) {
	if mode == nil {
		mode = DefaultPortMode()
	}

	port, err := serial.Open(path, &serial.Mode{
		BaudRate: mode.BaudRate,
		DataBits: mode.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open compass port %s: %w", path, err)
	}

	return NewHeadingMux[serial.Port](port), nil
}

// New creates a heading mux for the given source spec:
//
//	"" or "off" a disabled mux that emits nothing
//	"mock"      a mux fed by a synthetic rotating heading
//	anything    treated as a serial device path
func New(source string) (HeadingMuxInterface, error) {
	switch source {
	case "", "off":
		return NewDisabledHeadingMux(), nil
	case "mock":
		return NewMockHeadingMux(), nil
	default:
		return NewRealHeadingMux(source, nil)
	}
}
