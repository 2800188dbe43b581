package device

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tychedelia/bitwig-monome/bitwig"
	"github.com/tychedelia/bitwig-monome/clip"
)

// GridLoop mirrors the clip launcher onto a grid and turns presses into
// launch and stop commands. It is the only owner of the clip matrix.
type GridLoop struct {
	dev    Device
	inbox  Inbox
	outbox Outbox
	log    logrus.FieldLogger
	tick   time.Duration

	clips clip.Matrix
	frame [clip.Size]byte
}

// NewGridLoop creates a loop with every clip empty.
func NewGridLoop(dev Device, inbox Inbox, outbox Outbox, log logrus.FieldLogger) *GridLoop {
	return &GridLoop{
		dev:    dev,
		inbox:  inbox,
		outbox: outbox,
		log:    log,
		tick:   TickInterval,
	}
}

// Run ticks until ctx is done or a tick fails.
func (g *GridLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()

	for {
		if err := g.Tick(); err != nil {
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

// Tick runs one iteration of the loop. Inbound messages are applied
// before presses are judged, so a press always sees the state the DAW
// most recently reported.
func (g *GridLoop) Tick() error {
	if err := g.applyInbound(); err != nil {
		return err
	}
	if err := g.handlePresses(); err != nil {
		return err
	}
	g.clips.UpdateIntensities()
	g.clips.Intensities(g.frame[:])
	return errors.Wrap(g.dev.SetAllIntensity(g.frame[:]), "publishing frame")
}

// Clip returns a copy of the clip at (track, scene).
func (g *GridLoop) Clip(track, scene int) (clip.Clip, error) {
	c, err := g.clips.At(track, scene)
	if err != nil {
		return clip.Clip{}, err
	}
	return *c, nil
}

func (g *GridLoop) applyInbound() error {
	msgs, err := g.inbox.PopAll()
	if err != nil {
		return errors.Wrap(err, "draining inbound messages")
	}
	for _, msg := range msgs {
		switch m := msg.(type) {
		case bitwig.ClipMessage:
			c, err := g.clips.At(m.Track, m.Scene)
			if err != nil {
				g.log.WithError(err).Debug("dropping clip message")
				continue
			}
			c.Apply(m.Event, m.Active)
		case bitwig.TrackMessage:
			// Track selection has no effect on the grid.
		}
	}
	return nil
}

func (g *GridLoop) handlePresses() error {
	for {
		p, ok := g.dev.PollEvent()
		if !ok {
			return nil
		}
		track, scene := p.X+1, p.Y+1
		c, err := g.clips.At(track, scene)
		if err != nil {
			continue
		}

		var cm bitwig.ControlMessage
		switch c.State {
		case clip.Filled:
			cm = bitwig.Launch(track, scene)
		case clip.Playing:
			cm = bitwig.Stop(track, scene)
		default:
			continue
		}
		g.log.WithFields(logrus.Fields{
			"track":   track,
			"scene":   scene,
			"state":   c.State,
			"command": cm,
		}).Debug("queueing control message")

		if err := g.outbox.Push(cm); err != nil {
			return errors.Wrap(err, "queueing control message")
		}
	}
}
