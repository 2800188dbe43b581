package mext

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tychedelia/bitwig-monome/clip"
	"github.com/tychedelia/bitwig-monome/device"
	"github.com/tychedelia/bitwig-monome/queue"
	"go.bug.st/serial"
)

// BaudRate is the rate every monome serial device runs at.
const BaudRate = 115200

// ReadTimeout bounds each read so Serve can notice cancellation.
const ReadTimeout = 100 * time.Millisecond

const (
	quad     = 8
	ringLEDs = 64
)

// portPatterns match the names monome devices enumerate under.
var portPatterns = []string{"usbserial-m", "ttyUSB", "ttyACM"}

// Port is the subset of serial.Port the device needs.
type Port interface {
	io.ReadWriteCloser
}

// Options configure how a device is opened.
type Options struct {
	// Port is the serial device name. Empty picks the first port that
	// looks like a monome.
	Port string

	// Rotation is 0 or 180 degrees.
	Rotation int
}

// Open finds and identifies a device.
// It returns device.ErrNoDevice when no candidate port exists.
func (o Options) Open(ctx context.Context) (device.Device, error) {
	if o.Rotation != 0 && o.Rotation != 180 {
		return nil, errors.Errorf("serial devices support rotation 0 or 180, got %d", o.Rotation)
	}
	name := o.Port
	if name == "" {
		ports, err := Ports()
		if err != nil {
			return nil, err
		}
		if len(ports) == 0 {
			return nil, device.ErrNoDevice
		}
		name = ports[0]
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: BaudRate})
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	if err := port.SetReadTimeout(ReadTimeout); err != nil {
		port.Close()
		return nil, errors.Wrapf(err, "configuring %s", name)
	}
	d, err := newDevice(port, o.Rotation)
	if err != nil {
		port.Close()
		return nil, errors.Wrapf(err, "identifying %s", name)
	}
	if d.Type() == device.Unknown {
		port.Close()
		return nil, errors.Wrap(device.ErrUnsupported, name)
	}
	return d, nil
}

// Ports lists serial ports that look like monome devices.
func Ports() ([]string, error) {
	all, err := serial.GetPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "listing serial ports")
	}
	var ports []string
	for _, name := range all {
		for _, pattern := range portPatterns {
			if strings.Contains(name, pattern) {
				ports = append(ports, name)
				break
			}
		}
	}
	return ports, nil
}

// Device is a grid or arc on a serial link.
type Device struct {
	port     Port
	typ      device.Type
	rotation int

	presses *queue.Queue[device.Press]
	pending []device.Press
}

// newDevice queries the device for its subsystems. port must time out
// reads rather than block forever.
func newDevice(port Port, rotation int) (*Device, error) {
	if _, err := port.Write([]byte{opQuery}); err != nil {
		return nil, errors.Wrap(err, "sending query")
	}
	sections := map[byte]byte{}
	for {
		f, ok, err := readFrame(port)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if f.op == opQuery {
			sections[f.payload[0]] += f.payload[1]
		}
	}
	return &Device{
		port:     port,
		typ:      typeOf(sections),
		rotation: rotation,
		presses:  queue.New[device.Press](),
	}, nil
}

// Type reports whether this is a grid or an arc.
func (d *Device) Type() device.Type {
	return d.typ
}

// SetAllIntensity writes the frame as two level maps.
func (d *Device) SetAllIntensity(intensities []byte) error {
	if expected, got := clip.Size, len(intensities); expected != got {
		return errors.Errorf("expected %d intensities, got %d", expected, got)
	}
	levels := make([]byte, quad*quad)
	for xOff := 0; xOff < clip.Tracks; xOff += quad {
		for y := 0; y < quad; y++ {
			for x := 0; x < quad; x++ {
				i := y*clip.Tracks + xOff + x
				if d.rotation == 180 {
					i = clip.Size - 1 - i
				}
				levels[y*quad+x] = intensities[i] >> 4
			}
		}
		if _, err := d.port.Write(levelMap(xOff, 0, levels)); err != nil {
			return errors.Wrap(err, "writing level map")
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
	levels := make([]byte, ringLEDs)
	for i := 0; i < lit && i < ringLEDs; i++ {
		levels[i] = 15
	}
	if _, err := d.port.Write(ringMap(ring, levels)); err != nil {
		return errors.Wrapf(err, "writing ring %d", ring)
	}
	return nil
}

// Serve reads key events until ctx is done or the link fails.
func (d *Device) Serve(ctx context.Context) error {
	defer d.presses.Close()

	for ctx.Err() == nil {
		f, ok, err := readFrame(d.port)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "reading from device")
		}
		if !ok || f.op != opKeyDown {
			continue
		}
		p := device.Press{X: int(f.payload[0]), Y: int(f.payload[1])}
		if d.rotation == 180 {
			p = device.Press{X: clip.Tracks - 1 - p.X, Y: clip.Scenes - 1 - p.Y}
		}
		if err := d.presses.Push(p); err != nil {
			return err
		}
	}
	return nil
}

// Close darkens the device and closes the port.
func (d *Device) Close() error {
	var err error
	switch d.typ {
	case device.Grid:
		_, err = d.port.Write([]byte{opLevelAll, 0})
	case device.Arc:
		for ring := 0; ring < device.Rings && err == nil; ring++ {
			_, err = d.port.Write([]byte{opRingAll, byte(ring), 0})
		}
	}
	if cerr := d.port.Close(); err == nil {
		err = cerr
	}
	return err
}
