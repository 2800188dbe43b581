// Package bitwig translates between Bitwig's OSC control surface and the
// bridge's domain messages.
package bitwig

// Addresses sent by the DAW that carry no clip state.
const (
	AddressUpdate   = "/update"
	AddressBeatStr  = "/beat/str"
	AddressTimeStr  = "/time/str"
	AddressPlay     = "/play"
	AddressSelected = "/track/selected"
)

// Addresses sent to the DAW.
const (
	AddressRefresh = "/refresh"
	addressLaunch  = "/track/%d/clip/%d/launch"
	addressStop    = "/track/%d/clip/stop"
)

// Clip address suffixes, as in /track/<n>/clip/<m>/<suffix>.
const (
	SuffixPlaying    = "isPlaying"
	SuffixQueued     = "isPlayingQueued"
	SuffixStopQueued = "isStopQueued"
	SuffixContent    = "hasContent"
	SuffixSelected   = "isSelected"
)
