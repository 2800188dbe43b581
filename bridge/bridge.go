// Package bridge wires the DAW's OSC ports to a monome device.
package bridge

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tychedelia/bitwig-monome/bitwig"
	"github.com/tychedelia/bitwig-monome/device"
	"github.com/tychedelia/bitwig-monome/queue"
	"golang.org/x/sync/errgroup"
)

// RetryInterval is how long discovery waits after finding no device.
const RetryInterval = time.Second

// Opener connects to a device. It returns an error whose cause is
// device.ErrNoDevice when nothing is plugged in.
type Opener func(ctx context.Context) (device.Device, error)

// Config configures a bridge.
type Config struct {
	// Listen is the address to receive the DAW's OSC messages on.
	Listen string

	// Send is the address of the DAW's OSC controller.
	Send string

	Open  Opener
	Retry time.Duration
}

// Bridge mirrors clip state between a DAW and a monome device.
type Bridge struct {
	Config

	log logrus.FieldLogger
}

// New creates a bridge.
func New(config Config, log logrus.FieldLogger) (*Bridge, error) {
	if config.Open == nil {
		return nil, errors.New("no device opener")
	}
	if config.Retry == 0 {
		config.Retry = RetryInterval
	}
	return &Bridge{Config: config, log: log}, nil
}

// Run runs the bridge until ctx is done or one of its loops fails.
// The receiver, the sender and the device loop share one context, so
// the failure of any of them stops the others.
func (b *Bridge) Run(ctx context.Context) error {
	var (
		inbox  = queue.New[bitwig.Message]()
		outbox = queue.New[bitwig.ControlMessage]()
	)
	recv, err := bitwig.Listen(b.Listen, inbox, b.log)
	if err != nil {
		return errors.Wrap(err, "creating OSC receiver")
	}
	conn, err := bitwig.Dial(ctx, b.Send)
	if err != nil {
		recv.Close()
		return errors.Wrap(err, "creating OSC sender")
	}
	b.log.WithFields(logrus.Fields{
		"listen": recv.Addr().String(),
		"send":   b.Send,
	}).Info("bridge started")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer inbox.Close()
		return errors.Wrap(recv.Serve(ctx), "receiving from DAW")
	})
	g.Go(func() error {
		defer conn.Close()
		return errors.Wrap(bitwig.NewSender(conn, outbox, b.log).Serve(ctx), "sending to DAW")
	})
	g.Go(func() error {
		return b.runDevice(ctx, g, inbox, outbox)
	})
	return g.Wait()
}

// runDevice waits for a device, asks the DAW for its full state and then
// runs the loop for the device's type.
func (b *Bridge) runDevice(ctx context.Context, g *errgroup.Group, inbox device.Inbox, outbox device.Outbox) error {
	dev, err := b.discover(ctx)
	if err != nil || dev == nil {
		return err
	}
	log := b.log.WithField("type", dev.Type())
	log.Info("device connected")

	g.Go(func() error {
		return errors.Wrap(dev.Serve(ctx), "reading device input")
	})
	g.Go(func() error {
		<-ctx.Done()
		if err := dev.Close(); err != nil {
			log.WithError(err).Warn("closing device")
		}
		return nil
	})

	if err := outbox.Push(bitwig.Refresh()); err != nil {
		return errors.Wrap(err, "requesting refresh")
	}
	switch dev.Type() {
	case device.Grid:
		return device.NewGridLoop(dev, inbox, outbox, log).Run(ctx)
	case device.Arc:
		return device.NewArcLoop(dev, inbox, log).Run(ctx)
	default:
		return errors.Wrap(device.ErrUnsupported, dev.Type().String())
	}
}

// discover opens a device, retrying while none is connected. It returns
// a nil device if ctx is done first.
func (b *Bridge) discover(ctx context.Context) (device.Device, error) {
	for {
		dev, err := b.Open(ctx)
		if err == nil {
			return dev, nil
		}
		if ctx.Err() != nil {
			return nil, nil
		}
		if errors.Cause(err) != device.ErrNoDevice {
			return nil, errors.Wrap(err, "opening device")
		}
		b.log.WithField("retry", b.Retry).Info("no device detected")

		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(b.Retry):
		}
	}
}
