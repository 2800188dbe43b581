// Package device runs the loops that mirror DAW state onto monome hardware.
package device

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/tychedelia/bitwig-monome/bitwig"
)

// TickInterval is the period of the device loops. It bounds both the
// animation speed and the latency from a press to its command.
const TickInterval = 10 * time.Millisecond

// Discovery errors.
var (
	// ErrNoDevice means no controller is connected yet. Callers retry.
	ErrNoDevice = errors.New("no devices detected")

	// ErrUnsupported means a controller was found but it is neither a
	// grid nor an arc.
	ErrUnsupported = errors.New("unsupported device")
)

// Type is the kind of a connected controller.
type Type int

// Device types.
const (
	Unknown Type = iota
	Grid
	Arc
)

func (t Type) String() string {
	switch t {
	case Grid:
		return "grid"
	case Arc:
		return "arc"
	default:
		return "unknown"
	}
}

// Press is a key press on a grid, zero-indexed from the top left.
type Press struct {
	X, Y int
}

// Device is a connected monome controller.
type Device interface {
	// Type reports what kind of controller this is.
	Type() Type

	// SetAllIntensity sets every LED of a 16x8 grid in one update.
	// frame holds one intensity (0-255) per key, row by row.
	SetAllIntensity(frame []byte) error

	// PollEvent returns the next pending key press without blocking.
	PollEvent() (Press, bool)

	// RingSet displays value out of max on an arc ring.
	RingSet(ring, value, max int) error

	// Serve reads input from the controller until ctx is done or the
	// link fails.
	Serve(ctx context.Context) error

	Close() error
}

// Inbox is a non-blocking queue of messages from the DAW.
type Inbox interface {
	PopAll() ([]bitwig.Message, error)
}

// Outbox is a queue of commands to the DAW.
type Outbox interface {
	Push(bitwig.ControlMessage) error
}
