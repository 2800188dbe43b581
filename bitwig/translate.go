package bitwig

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
	"github.com/tychedelia/bitwig-monome/clip"
)

// Translation errors. A packet that produces one of these is discarded
// as a whole.
var (
	ErrAddress  = errors.New("malformed address")
	ErrArgument = errors.New("unexpected argument")
)

var ignored = map[string]struct{}{
	AddressUpdate:  {},
	AddressBeatStr: {},
	AddressTimeStr: {},
	AddressPlay:    {},
}

var clipEvents = map[string]clip.Event{
	SuffixPlaying:    clip.EventPlaying,
	SuffixQueued:     clip.EventQueued,
	SuffixStopQueued: clip.EventStopping,
	SuffixContent:    clip.EventContent,
	SuffixSelected:   clip.EventSelected,
}

// Translate converts a packet into the messages it carries, in order.
// Bundles are flattened recursively. Addresses the bridge has no use for
// produce no messages.
func Translate(p osc.Packet) ([]Message, error) {
	var msgs []Message
	if err := translate(p, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func translate(p osc.Packet, msgs *[]Message) error {
	switch v := p.(type) {
	case osc.Bundle:
		return translateBundle(v, msgs)
	case *osc.Bundle:
		return translateBundle(*v, msgs)
	case osc.Message:
		return translateMessage(v, msgs)
	case *osc.Message:
		return translateMessage(*v, msgs)
	}
	return nil
}

func translateBundle(b osc.Bundle, msgs *[]Message) error {
	for _, p := range b.Packets {
		if err := translate(p, msgs); err != nil {
			return err
		}
	}
	return nil
}

func translateMessage(m osc.Message, msgs *[]Message) error {
	var (
		msg Message
		err error
	)
	addr := m.Address
	if _, ok := ignored[addr]; ok {
		return nil
	}
	switch {
	case addr == AddressSelected || strings.HasPrefix(addr, AddressSelected+"/"):
		return nil
	case strings.HasPrefix(addr, "/track/"):
		msg, err = trackMessage(m)
	case strings.HasPrefix(addr, "/primary/"):
		msg, err = primaryMessage(m)
	}
	if err != nil {
		return err
	}
	if msg != nil {
		*msgs = append(*msgs, msg)
	}
	return nil
}

// trackMessage handles /track/<n>/clip/<m>/<suffix> and /track/<n>/selected.
func trackMessage(m osc.Message) (Message, error) {
	segs := strings.Split(m.Address[1:], "/")

	switch {
	case len(segs) == 5 && segs[2] == "clip":
		event, ok := clipEvents[segs[4]]
		if !ok {
			return nil, nil
		}
		track, err := parseIndex(m.Address, segs[1])
		if err != nil {
			return nil, err
		}
		scene, err := parseIndex(m.Address, segs[3])
		if err != nil {
			return nil, err
		}
		active, err := boolArg(m)
		if err != nil {
			return nil, err
		}
		return ClipMessage{Track: track, Scene: scene, Active: active, Event: event}, nil

	case len(segs) == 3 && segs[2] == "selected":
		track, err := parseIndex(m.Address, segs[1])
		if err != nil {
			return nil, err
		}
		active, err := boolArg(m)
		if err != nil {
			return nil, err
		}
		return TrackMessage{Track: track, Active: active}, nil
	}
	return nil, nil
}

// primaryMessage handles /primary/<kind>/<n>/value.
func primaryMessage(m osc.Message) (Message, error) {
	if !strings.HasSuffix(m.Address, "/value") {
		return nil, nil
	}
	segs := strings.Split(m.Address[1:], "/")
	if len(segs) < 4 {
		return nil, errors.Wrapf(ErrAddress, "%s: missing parameter index", m.Address)
	}
	param, err := parseIndex(m.Address, segs[2])
	if err != nil {
		return nil, err
	}
	value, err := intArg(m)
	if err != nil {
		return nil, err
	}
	return DeviceMessage{Param: param, Value: value}, nil
}

func parseIndex(addr, seg string) (int, error) {
	n, err := strconv.ParseUint(seg, 10, 8)
	if err != nil {
		return 0, errors.Wrapf(ErrAddress, "%s: segment %q is not an index", addr, seg)
	}
	return int(n), nil
}

func boolArg(m osc.Message) (bool, error) {
	if len(m.Arguments) < 1 {
		return false, errors.Wrapf(ErrArgument, "%s: expected at least 1 argument", m.Address)
	}
	switch arg := m.Arguments[0].(type) {
	case osc.Int:
		switch arg {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return false, errors.Wrapf(ErrArgument, "%s: boolean int %d", m.Address, int32(arg))
	case osc.Bool:
		return bool(arg), nil
	}
	return false, errors.Wrapf(ErrArgument, "%s: expected int or bool, got %v", m.Address, m.Arguments[0])
}

func intArg(m osc.Message) (int32, error) {
	if len(m.Arguments) < 1 {
		return 0, errors.Wrapf(ErrArgument, "%s: expected at least 1 argument", m.Address)
	}
	arg, ok := m.Arguments[0].(osc.Int)
	if !ok {
		return 0, errors.Wrapf(ErrArgument, "%s: expected int, got %v", m.Address, m.Arguments[0])
	}
	return int32(arg), nil
}
