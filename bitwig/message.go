package bitwig

import (
	"fmt"

	"github.com/tychedelia/bitwig-monome/clip"
)

// Message is a notification received from the DAW.
// It is one of ClipMessage, TrackMessage or DeviceMessage.
type Message interface {
	bitwigMessage()
}

// ClipMessage reports a change to one clip slot.
type ClipMessage struct {
	Track  int
	Scene  int
	Active bool
	Event  clip.Event
}

// TrackMessage reports that a track was selected or deselected.
type TrackMessage struct {
	Track  int
	Active bool
}

// DeviceMessage reports the value of a parameter of the primary device.
type DeviceMessage struct {
	Param int
	Value int32
}

func (ClipMessage) bitwigMessage()   {}
func (TrackMessage) bitwigMessage()  {}
func (DeviceMessage) bitwigMessage() {}

// ControlKind identifies a command sent to the DAW.
type ControlKind int

// Control kinds.
const (
	KindRefresh ControlKind = iota
	KindLaunch
	KindStop
)

// ControlMessage is a command sent to the DAW.
// Track and Scene are ignored for KindRefresh.
type ControlMessage struct {
	Kind  ControlKind
	Track int
	Scene int
}

// Refresh asks the DAW to resend its complete state.
func Refresh() ControlMessage {
	return ControlMessage{Kind: KindRefresh}
}

// Launch asks the DAW to launch the clip at (track, scene).
func Launch(track, scene int) ControlMessage {
	return ControlMessage{Kind: KindLaunch, Track: track, Scene: scene}
}

// Stop asks the DAW to stop the clip at (track, scene).
func Stop(track, scene int) ControlMessage {
	return ControlMessage{Kind: KindStop, Track: track, Scene: scene}
}

func (cm ControlMessage) String() string {
	switch cm.Kind {
	case KindRefresh:
		return "refresh"
	case KindLaunch:
		return fmt.Sprintf("launch(%d,%d)", cm.Track, cm.Scene)
	case KindStop:
		return fmt.Sprintf("stop(%d,%d)", cm.Track, cm.Scene)
	default:
		return fmt.Sprintf("unknown(%d)", cm.Kind)
	}
}
