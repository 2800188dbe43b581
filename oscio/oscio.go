// Package oscio reads OSC packets from UDP sockets.
package oscio

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
)

// MaxPacketSize is the largest datagram that will be read.
const MaxPacketSize = 8192

// ErrParse is returned for datagrams that are neither a message nor a bundle.
var ErrParse = errors.New("datagram is not an OSC packet")

// Parse decodes a single datagram. The osc parsers index into the
// datagram without bounds checks, so a panic while parsing is reported
// as ErrParse.
func Parse(data []byte, sender net.Addr) (p osc.Packet, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, errors.Wrapf(ErrParse, "%v", r)
		}
	}()
	if len(data) == 0 {
		return nil, ErrParse
	}
	switch data[0] {
	case '#':
		bundle, err := osc.ParseBundle(data, sender)
		if err != nil {
			return nil, errors.Wrap(err, "parsing bundle")
		}
		return bundle, nil
	case '/':
		msg, err := osc.ParseMessage(data, sender)
		if err != nil {
			return nil, errors.Wrap(err, "parsing message")
		}
		return msg, nil
	default:
		return nil, ErrParse
	}
}

// Handler is invoked once per datagram with the parsed packet, or with the
// parse error if the datagram could not be decoded. Returning an error
// stops Serve.
type Handler func(osc.Packet, error) error

// Serve reads datagrams from conn until ctx is done, a read fails, or the
// handler returns an error. The connection is closed when Serve returns.
func Serve(ctx context.Context, conn *net.UDPConn, handle Handler) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = conn.Close()
	}()

	buf := make([]byte, MaxPacketSize)
	for {
		n, sender, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "reading datagram")
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		if err := handle(Parse(data, sender)); err != nil {
			return err
		}
	}
}

// Listen binds a UDP socket on addr.
func Listen(addr string) (*net.UDPConn, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving listen address %s", addr)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}
	return conn, nil
}
