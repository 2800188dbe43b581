package serialosc

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
	"github.com/tychedelia/bitwig-monome/clip"
	"github.com/tychedelia/bitwig-monome/device"
	"github.com/tychedelia/bitwig-monome/oscio"
	"github.com/tychedelia/bitwig-monome/queue"
)

// quad is the side of the 8x8 blocks that level maps address.
const quad = 8

// ringLEDs is the number of LEDs around an arc encoder.
const ringLEDs = 64

// Device is a grid or arc reached through serialosc.
type Device struct {
	info   Info
	prefix string
	local  *net.UDPConn
	out    conn

	// transposed is set at rotation 90 and 270, where serialosc
	// presents a 16x8 grid as 8 columns by 16 rows.
	transposed bool

	presses *queue.Queue[device.Press]
	pending []device.Press
}

func newDevice(info Info, prefix string, local *net.UDPConn, out conn) *Device {
	return &Device{
		info:    info,
		prefix:  prefix,
		local:   local,
		out:     out,
		presses: queue.New[device.Press](),
	}
}

// Info describes the device.
func (d *Device) Info() Info {
	return d.info
}

// Type reports whether this is a grid or an arc.
func (d *Device) Type() device.Type {
	return d.info.DeviceType()
}

// SetAllIntensity sends the frame as two level maps, one per half of the
// grid. serialosc levels are 4 bits, so the low nibble of each intensity
// is dropped. A transposed grid shows tracks as rows.
func (d *Device) SetAllIntensity(frame []byte) error {
	if expected, got := clip.Size, len(frame); expected != got {
		return errors.Errorf("expected %d intensities, got %d", expected, got)
	}
	for off := 0; off < clip.Tracks; off += quad {
		xOff, yOff := off, 0
		if d.transposed {
			xOff, yOff = 0, off
		}
		args := make(osc.Arguments, 0, 2+quad*quad)
		args = append(args, osc.Int(xOff), osc.Int(yOff))
		for y := 0; y < quad; y++ {
			for x := 0; x < quad; x++ {
				i := y*clip.Tracks + off + x
				if d.transposed {
					i = x*clip.Tracks + off + y
				}
				args = append(args, osc.Int(frame[i]>>4))
			}
		}
		if err := d.send(AddressGridLevelMap, args); err != nil {
			return err
		}
	}
	return nil
}

// PollEvent returns the next key press received since the last call.
func (d *Device) PollEvent() (device.Press, bool) {
	if len(d.pending) == 0 {
		d.pending, _ = d.presses.PopAll()
		if len(d.pending) == 0 {
			return device.Press{}, false
		}
	}
	p := d.pending[0]
	d.pending = d.pending[1:]
	return p, true
}

// RingSet lights the first value/max of the ring's LEDs.
func (d *Device) RingSet(ring, value, max int) error {
	lit := 0
	if max > 0 {
		lit = value * ringLEDs / max
	}
	args := make(osc.Arguments, 0, 1+ringLEDs)
	args = append(args, osc.Int(ring))
	for i := 0; i < ringLEDs; i++ {
		level := 0
		if i < lit {
			level = 15
		}
		args = append(args, osc.Int(level))
	}
	return d.send(AddressRingMap, args)
}

// Serve receives key events until ctx is done.
func (d *Device) Serve(ctx context.Context) error {
	defer d.presses.Close()

	return oscio.Serve(ctx, d.local, func(p osc.Packet, err error) error {
		if err != nil {
			return nil
		}
		m, ok := p.(osc.Message)
		if !ok || m.Address != d.prefix+AddressGridKey {
			return nil
		}
		press, down, err := parseKey(m)
		if err != nil || !down {
			return nil
		}
		if d.transposed {
			press.X, press.Y = press.Y, press.X
		}
		return d.presses.Push(press)
	})
}

// Close darkens the device and releases its sockets.
func (d *Device) Close() error {
	var err error
	switch d.Type() {
	case device.Grid:
		err = d.send(AddressGridLevelAll, osc.Arguments{osc.Int(0)})
	case device.Arc:
		for ring := 0; ring < device.Rings && err == nil; ring++ {
			err = d.send(AddressRingAll, osc.Arguments{osc.Int(ring), osc.Int(0)})
		}
	}
	if cerr := d.out.Close(); err == nil {
		err = cerr
	}
	d.local.Close()
	return err
}

func (d *Device) send(addr string, args osc.Arguments) error {
	if err := d.out.Send(osc.Message{Address: d.prefix + addr, Arguments: args}); err != nil {
		return errors.Wrapf(err, "sending %s%s", d.prefix, addr)
	}
	return nil
}

// parseKey reads the x, y and state arguments of a key message.
func parseKey(m osc.Message) (device.Press, bool, error) {
	if expected, got := 3, len(m.Arguments); expected != got {
		return device.Press{}, false, errors.Errorf("expected %d arguments, got %d", expected, got)
	}
	var vals [3]int32
	for i := range vals {
		v, err := m.Arguments[i].ReadInt32()
		if err != nil {
			return device.Press{}, false, errors.Wrap(err, "reading key argument")
		}
		vals[i] = v
	}
	return device.Press{X: int(vals[0]), Y: int(vals[1])}, vals[2] == 1, nil
}
