// Package mext speaks the monome serial protocol directly, for setups
// without serialosc.
package mext

import (
	"io"

	"github.com/pkg/errors"
	"github.com/tychedelia/bitwig-monome/device"
)

// Opcodes. The high nibble selects the subsystem.
const (
	opQuery    byte = 0x00
	opID       byte = 0x01
	opOffset   byte = 0x02
	opSize     byte = 0x03
	opAddr     byte = 0x04
	opFirmware byte = 0x0F
	opLevelAll byte = 0x19
	opLevelMap byte = 0x1A
	opKeyUp    byte = 0x20
	opKeyDown  byte = 0x21
	opEncDelta byte = 0x50
	opEncKeyUp byte = 0x51
	opEncKeyDn byte = 0x52
	opRingAll  byte = 0x91
	opRingMap  byte = 0x92
)

// Subsystems reported in query responses.
const (
	sectionLEDGrid = 1
	sectionKeyGrid = 2
	sectionEncoder = 5
)

// payloadLen is the number of bytes that follow each opcode sent by a device.
var payloadLen = map[byte]int{
	opQuery:    2,
	opID:       32,
	opOffset:   2,
	opSize:     2,
	opAddr:     2,
	opFirmware: 8,
	opKeyUp:    2,
	opKeyDown:  2,
	opEncDelta: 2,
	opEncKeyUp: 1,
	opEncKeyDn: 1,
}

// ErrUnknownOpcode means the byte stream can no longer be framed.
var ErrUnknownOpcode = errors.New("unknown opcode")

type frame struct {
	op      byte
	payload []byte
}

// readFrame reads one message. A zero-length read before the opcode is
// a read timeout and yields ok == false.
func readFrame(r io.Reader) (f frame, ok bool, err error) {
	var op [1]byte
	n, err := r.Read(op[:])
	if err != nil {
		return frame{}, false, err
	}
	if n == 0 {
		return frame{}, false, nil
	}
	size, known := payloadLen[op[0]]
	if !known {
		return frame{}, false, errors.Wrapf(ErrUnknownOpcode, "0x%02x", op[0])
	}
	f = frame{op: op[0], payload: make([]byte, size)}
	if _, err := io.ReadFull(r, f.payload); err != nil {
		return frame{}, false, errors.Wrapf(err, "reading payload of 0x%02x", op[0])
	}
	return f, true, nil
}

// typeOf classifies a device from its query responses.
func typeOf(sections map[byte]byte) device.Type {
	switch {
	case sections[sectionEncoder] > 0:
		return device.Arc
	case sections[sectionLEDGrid] > 0 || sections[sectionKeyGrid] > 0:
		return device.Grid
	default:
		return device.Unknown
	}
}

// packLevels packs 64 4-bit levels two to a byte, first level in the
// high nibble.
func packLevels(levels []byte) []byte {
	out := make([]byte, len(levels)/2)
	for i := range out {
		out[i] = (levels[2*i]&0x0F)<<4 | levels[2*i+1]&0x0F
	}
	return out
}

func levelMap(x, y int, levels []byte) []byte {
	return append([]byte{opLevelMap, byte(x), byte(y)}, packLevels(levels)...)
}

func ringMap(ring int, levels []byte) []byte {
	return append([]byte{opRingMap, byte(ring)}, packLevels(levels)...)
}
