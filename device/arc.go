package device

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tychedelia/bitwig-monome/bitwig"
)

// Rings is the number of encoders on an arc.
const Rings = 4

// RingMax is the largest value displayed on a ring.
const RingMax = 255

// ArcLoop mirrors the first four parameters of the DAW's primary device
// onto an arc's rings.
type ArcLoop struct {
	dev   Device
	inbox Inbox
	log   logrus.FieldLogger
	tick  time.Duration

	values [Rings]int
}

// NewArcLoop creates a loop with every ring at zero.
func NewArcLoop(dev Device, inbox Inbox, log logrus.FieldLogger) *ArcLoop {
	return &ArcLoop{
		dev:   dev,
		inbox: inbox,
		log:   log,
		tick:  TickInterval,
	}
}

// Run ticks until ctx is done or a tick fails.
func (a *ArcLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	for {
		if err := a.Tick(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Tick applies pending parameter updates and redraws every ring.
func (a *ArcLoop) Tick() error {
	msgs, err := a.inbox.PopAll()
	if err != nil {
		return errors.Wrap(err, "draining inbound messages")
	}
	for _, msg := range msgs {
		if m, ok := msg.(bitwig.DeviceMessage); ok {
			a.set(m.Param, m.Value)
		}
	}
	for ring, v := range a.values {
		if err := a.dev.RingSet(ring, v, RingMax); err != nil {
			return errors.Wrapf(err, "setting ring %d", ring)
		}
	}
	return nil
}

// Values returns the current value of each ring.
func (a *ArcLoop) Values() [Rings]int {
	return a.values
}

func (a *ArcLoop) set(param int, value int32) {
	if param < 0 || param >= Rings {
		a.log.WithField("param", param).Debug("ignoring parameter")
		return
	}
	v := int(value)
	if v < 0 {
		v = 0
	} else if v > RingMax {
		v = RingMax
	}
	a.values[param] = v
}
