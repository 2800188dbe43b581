package bitwig

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
	"github.com/sirupsen/logrus"
	"github.com/tychedelia/bitwig-monome/oscio"
)

// Sink is a non-blocking queue of inbound messages.
type Sink interface {
	Push(Message) error
}

// Receiver listens for the DAW's OSC datagrams and queues the messages
// they translate to.
type Receiver struct {
	conn *net.UDPConn
	sink Sink
	log  logrus.FieldLogger
}

// Listen binds the receiver's socket on addr.
func Listen(addr string, sink Sink, log logrus.FieldLogger) (*Receiver, error) {
	conn, err := oscio.Listen(addr)
	if err != nil {
		return nil, err
	}
	return &Receiver{conn: conn, sink: sink, log: log}, nil
}

// Addr returns the address the receiver is bound to.
func (r *Receiver) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// Close releases the socket. Serve closes it on its own when its
// context is done.
func (r *Receiver) Close() error {
	return r.conn.Close()
}

// Serve receives datagrams until ctx is done or the socket fails.
// Datagrams that cannot be decoded or translated are logged and dropped
// without queueing any of their messages.
func (r *Receiver) Serve(ctx context.Context) error {
	return oscio.Serve(ctx, r.conn, r.handle)
}

func (r *Receiver) handle(p osc.Packet, err error) error {
	if err != nil {
		r.log.WithError(err).Warn("dropping undecodable datagram")
		return nil
	}
	msgs, err := Translate(p)
	if err != nil {
		r.log.WithError(err).Warn("dropping datagram")
		return nil
	}
	for _, msg := range msgs {
		if err := r.sink.Push(msg); err != nil {
			return errors.Wrap(err, "queueing inbound message")
		}
	}
	return nil
}
