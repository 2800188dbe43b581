package bridge

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tychedelia/bitwig-monome/bitwig"
	"github.com/tychedelia/bitwig-monome/device"
	"github.com/tychedelia/bitwig-monome/queue"
	"golang.org/x/sync/errgroup"
)

type fakeDevice struct {
	typ device.Type

	mu      sync.Mutex
	presses []device.Press
	frames  [][]byte
	rings   int
	err     error
	closed  bool
	onFrame func()
}

func (d *fakeDevice) Type() device.Type { return d.typ }

func (d *fakeDevice) SetAllIntensity(frame []byte) error {
	d.mu.Lock()
	if d.err != nil {
		d.mu.Unlock()
		return d.err
	}
	d.frames = append(d.frames, append([]byte(nil), frame...))
	first, onFrame := len(d.frames) == 1, d.onFrame
	d.mu.Unlock()

	if first && onFrame != nil {
		onFrame()
	}
	return nil
}

func (d *fakeDevice) PollEvent() (device.Press, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.presses) == 0 {
		return device.Press{}, false
	}
	p := d.presses[0]
	d.presses = d.presses[1:]
	return p, true
}

func (d *fakeDevice) RingSet(ring, value, max int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rings++
	return d.err
}

func (d *fakeDevice) Serve(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDevice) press(p device.Press) {
	d.mu.Lock()
	d.presses = append(d.presses, p)
	d.mu.Unlock()
}

func (d *fakeDevice) lastFrame() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return nil
	}
	return d.frames[len(d.frames)-1]
}

func (d *fakeDevice) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func openDevice(dev device.Device) Opener {
	return func(context.Context) (device.Device, error) {
		return dev, nil
	}
}

// fakeDAW collects the addresses of the OSC messages sent to it.
type fakeDAW struct {
	conn      *net.UDPConn
	addresses chan string
}

func startFakeDAW(t *testing.T) *fakeDAW {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	d := &fakeDAW{conn: conn, addresses: make(chan string, 64)}
	go func() {
		buf := make([]byte, 1024)
		for {
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			m, err := osc.ParseMessage(buf[:n], nil)
			if err != nil {
				continue
			}
			d.addresses <- m.Address
		}
	}()
	t.Cleanup(func() { conn.Close() })
	return d
}

func (d *fakeDAW) addr() string {
	return d.conn.LocalAddr().String()
}

func (d *fakeDAW) next(t *testing.T) string {
	t.Helper()
	select {
	case addr := <-d.addresses:
		return addr
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for OSC message")
		return ""
	}
}

// freeAddr returns a loopback UDP address nothing is listening on.
func freeAddr(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	addr := conn.LocalAddr().String()
	require.NoError(t, conn.Close())
	return addr
}

func newBridge(t *testing.T, listen, send string, open Opener) *Bridge {
	t.Helper()
	log, _ := test.NewNullLogger()
	b, err := New(Config{Listen: listen, Send: send, Open: open, Retry: time.Millisecond}, log)
	require.NoError(t, err)
	return b
}

func TestNewRequiresOpener(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := New(Config{}, log)
	assert.Error(t, err)

	b, err := New(Config{Open: openDevice(&fakeDevice{})}, log)
	require.NoError(t, err)
	assert.Equal(t, RetryInterval, b.Retry)
}

func TestRefreshBeforeFirstFrame(t *testing.T) {
	var (
		inbox  = queue.New[bitwig.Message]()
		outbox = queue.New[bitwig.ControlMessage]()
		seen   = make(chan []bitwig.ControlMessage, 1)
		dev    = &fakeDevice{typ: device.Grid}
	)
	dev.onFrame = func() {
		items, _ := outbox.PopAll()
		seen <- items
	}
	b := newBridge(t, "", "", openDevice(dev))

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.runDevice(gctx, g, inbox, outbox) })

	select {
	case items := <-seen:
		assert.Equal(t, []bitwig.ControlMessage{bitwig.Refresh()}, items)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for first frame")
	}
	cancel()
	require.NoError(t, g.Wait())
	assert.True(t, dev.isClosed())
	assert.Equal(t, 0, outbox.Len())
}

func TestDiscoverRetries(t *testing.T) {
	var (
		calls int
		dev   = &fakeDevice{typ: device.Grid}
	)
	b := newBridge(t, "", "", func(context.Context) (device.Device, error) {
		if calls++; calls < 3 {
			return nil, errors.Wrap(device.ErrNoDevice, "serialosc")
		}
		return dev, nil
	})
	got, err := b.discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dev, got)
	assert.Equal(t, 3, calls)
}

func TestDiscoverStopsOnCancel(t *testing.T) {
	b := newBridge(t, "", "", func(context.Context) (device.Device, error) {
		return nil, device.ErrNoDevice
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	dev, err := b.discover(ctx)
	assert.NoError(t, err)
	assert.Nil(t, dev)
}

func TestRunUnsupportedDevice(t *testing.T) {
	daw := startFakeDAW(t)
	b := newBridge(t, "127.0.0.1:0", daw.addr(), func(context.Context) (device.Device, error) {
		return nil, errors.Wrap(device.ErrUnsupported, "monome tilt")
	})
	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, device.ErrUnsupported, errors.Cause(err))
}

func TestRunUnknownDeviceType(t *testing.T) {
	daw := startFakeDAW(t)
	dev := &fakeDevice{typ: device.Unknown}
	err := newBridge(t, "127.0.0.1:0", daw.addr(), openDevice(dev)).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, device.ErrUnsupported, errors.Cause(err))
	assert.Eventually(t, dev.isClosed, time.Second, time.Millisecond)
}

func TestRunGrid(t *testing.T) {
	var (
		daw    = startFakeDAW(t)
		listen = freeAddr(t)
		dev    = &fakeDevice{typ: device.Grid}
		b      = newBridge(t, listen, daw.addr(), openDevice(dev))
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	assert.Equal(t, bitwig.AddressRefresh, daw.next(t))

	client, err := net.Dial("udp", listen)
	require.NoError(t, err)
	defer client.Close()

	content := osc.Message{
		Address:   "/track/1/clip/1/hasContent",
		Arguments: osc.Arguments{osc.Int(1)},
	}
	_, err = client.Write(content.Bytes())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		frame := dev.lastFrame()
		return frame != nil && frame[0] == 100
	}, time.Second, time.Millisecond)

	dev.press(device.Press{X: 0, Y: 0})
	assert.Equal(t, "/track/1/clip/1/launch", daw.next(t))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bridge did not stop")
	}
	assert.True(t, dev.isClosed())
}

func TestRunArc(t *testing.T) {
	var (
		daw = startFakeDAW(t)
		dev = &fakeDevice{typ: device.Arc}
		b   = newBridge(t, "127.0.0.1:0", daw.addr(), openDevice(dev))
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	assert.Equal(t, bitwig.AddressRefresh, daw.next(t))
	require.Eventually(t, func() bool {
		dev.mu.Lock()
		defer dev.mu.Unlock()
		return dev.rings >= device.Rings
	}, time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestRunStopsWhenDeviceFails(t *testing.T) {
	var (
		daw  = startFakeDAW(t)
		fail = errors.New("unplugged")
		dev  = &fakeDevice{typ: device.Grid, err: fail}
	)
	err := newBridge(t, "127.0.0.1:0", daw.addr(), openDevice(dev)).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, fail, errors.Cause(err))
}

func TestRunBindFailure(t *testing.T) {
	daw := startFakeDAW(t)
	err := newBridge(t, daw.addr(), daw.addr(), openDevice(&fakeDevice{})).Run(context.Background())
	assert.Error(t, err)
}
