package serialosc

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
	"github.com/tychedelia/bitwig-monome/device"
	"github.com/tychedelia/bitwig-monome/oscio"
)

// ListTimeout is how long List waits for devices to announce themselves.
const ListTimeout = 250 * time.Millisecond

type conn interface {
	Send(osc.Packet) error
	Close() error
}

func dial(ctx context.Context, addr string) (conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", addr)
	}
	c, err := osc.DialUDPContext(ctx, "udp", nil, raddr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}
	return c, nil
}

// localPort returns the port of a bound UDP socket.
func localPort(c *net.UDPConn) int {
	return c.LocalAddr().(*net.UDPAddr).Port
}

// List asks the serialosc daemon at addr for every connected device.
// serialosc answers with one message per device and no terminator, so
// List collects replies for timeout.
func List(ctx context.Context, addr string, timeout time.Duration) ([]Info, error) {
	local, err := oscio.Listen("127.0.0.1:0")
	if err != nil {
		return nil, errors.Wrap(err, "listening for device list")
	}
	daemon, err := dial(ctx, addr)
	if err != nil {
		local.Close()
		return nil, err
	}
	defer daemon.Close()

	if err := daemon.Send(osc.Message{
		Address: AddressList,
		Arguments: osc.Arguments{
			osc.String("127.0.0.1"),
			osc.Int(localPort(local)),
		},
	}); err != nil {
		local.Close()
		return nil, errors.Wrap(err, "sending list request")
	}

	var (
		devices      []Info
		ctx2, cancel = context.WithTimeout(ctx, timeout)
	)
	defer cancel()

	err = oscio.Serve(ctx2, local, func(p osc.Packet, err error) error {
		if err != nil {
			return nil
		}
		m, ok := p.(osc.Message)
		if !ok || m.Address != AddressDevice {
			return nil
		}
		info, err := parseDevice(m)
		if err != nil {
			return err
		}
		devices = append(devices, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return devices, nil
}

func parseDevice(m osc.Message) (Info, error) {
	if expected, got := 3, len(m.Arguments); expected != got {
		return Info{}, errors.Errorf("%s: expected %d arguments, got %d", m.Address, expected, got)
	}
	id, err := m.Arguments[0].ReadString()
	if err != nil {
		return Info{}, errors.Wrap(err, "reading device id")
	}
	typ, err := m.Arguments[1].ReadString()
	if err != nil {
		return Info{}, errors.Wrap(err, "reading device type")
	}
	port, err := m.Arguments[2].ReadInt32()
	if err != nil {
		return Info{}, errors.Wrap(err, "reading device port")
	}
	return Info{ID: id, Type: typ, Port: int(port)}, nil
}

// Options configure how a device is opened.
type Options struct {
	// Addr is the serialosc daemon address.
	Addr string

	// Prefix is prepended to every device address, e.g. /bitwig-monome.
	Prefix string

	// Rotation is the grid rotation in degrees: 0, 90, 180 or 270.
	Rotation int
}

// Open finds the first connected device and claims it.
// It returns device.ErrNoDevice when serialosc reports no devices and
// device.ErrUnsupported when the first device is neither grid nor arc.
func (o Options) Open(ctx context.Context) (device.Device, error) {
	devices, err := List(ctx, o.Addr, ListTimeout)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, device.ErrNoDevice
	}
	info := devices[0]
	if info.DeviceType() == device.Unknown {
		return nil, errors.Wrapf(device.ErrUnsupported, "%s (%s)", info.ID, info.Type)
	}
	return Connect(ctx, info, o)
}

// Connect claims the device described by info, pointing its output at a
// freshly bound local socket.
func Connect(ctx context.Context, info Info, o Options) (*Device, error) {
	local, err := oscio.Listen("127.0.0.1:0")
	if err != nil {
		return nil, errors.Wrap(err, "listening for device input")
	}
	out, err := dial(ctx, net.JoinHostPort("127.0.0.1", strconv.Itoa(info.Port)))
	if err != nil {
		local.Close()
		return nil, err
	}
	d := newDevice(info, o.Prefix, local, out)
	d.transposed = o.Rotation == 90 || o.Rotation == 270

	for _, m := range []osc.Message{
		{Address: AddressSysPort, Arguments: osc.Arguments{osc.Int(localPort(local))}},
		{Address: AddressSysHost, Arguments: osc.Arguments{osc.String("127.0.0.1")}},
		{Address: AddressSysPrefix, Arguments: osc.Arguments{osc.String(o.Prefix)}},
		{Address: AddressSysRotation, Arguments: osc.Arguments{osc.Int(o.Rotation)}},
	} {
		if err := out.Send(m); err != nil {
			d.Close()
			return nil, errors.Wrapf(err, "sending %s", m.Address)
		}
	}
	return d, nil
}
