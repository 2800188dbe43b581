package bitwig

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
	"github.com/sirupsen/logrus"
)

// Conn sends OSC packets to a fixed destination.
type Conn interface {
	Send(osc.Packet) error
	Close() error
}

// Source is a blocking queue of commands.
type Source interface {
	Pop(ctx context.Context) (ControlMessage, error)
}

// Dial prepares to send to the DAW's OSC port at addr. Packets go out
// of an unconnected socket, so a DAW that is not listening yet or that
// restarts does not turn later sends into errors.
func Dial(ctx context.Context, addr string) (Conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving send address %s", addr)
	}
	laddr := &net.UDPAddr{IP: net.IPv4zero}
	if raddr.IP.IsLoopback() {
		laddr.IP = raddr.IP
	}
	conn, err := osc.ListenUDPContext(ctx, "udp", laddr)
	if err != nil {
		return nil, errors.Wrap(err, "binding send socket")
	}
	return &udpConn{conn: conn, raddr: raddr}, nil
}

// udpConn sends every packet to one destination with SendTo.
type udpConn struct {
	conn  *osc.UDPConn
	raddr *net.UDPAddr
}

func (c *udpConn) Send(p osc.Packet) error {
	return c.conn.SendTo(c.raddr, p)
}

func (c *udpConn) Close() error {
	return c.conn.Close()
}

// Sender encodes queued commands and sends each one as a datagram.
type Sender struct {
	conn Conn
	src  Source
	log  logrus.FieldLogger
}

// NewSender creates a sender that drains src into conn.
func NewSender(conn Conn, src Source, log logrus.FieldLogger) *Sender {
	return &Sender{conn: conn, src: src, log: log}
}

// Serve sends commands until ctx is done. Any send failure is returned.
func (s *Sender) Serve(ctx context.Context) error {
	for {
		cm, err := s.src.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "receiving control message")
		}
		if err := s.Send(cm); err != nil {
			return err
		}
	}
}

// Send encodes and sends a single command.
func (s *Sender) Send(cm ControlMessage) error {
	msg, err := Encode(cm)
	if err != nil {
		return err
	}
	if err := s.conn.Send(msg); err != nil {
		return errors.Wrapf(err, "sending %s", msg.Address)
	}
	s.log.WithField("address", msg.Address).Debug("sent control message")
	return nil
}
