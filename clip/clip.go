// Package clip models the clip-launcher slots mirrored on the grid.
package clip

// State is the state of one clip slot.
type State int

// Clip states.
const (
	Empty State = iota
	Filled
	Playing
	Queued
	Stopping
)

var stateNames = [...]string{
	Empty:    "empty",
	Filled:   "filled",
	Playing:  "playing",
	Queued:   "queued",
	Stopping: "stopping",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Event is a state-change notification about a clip.
type Event int

// Clip events.
const (
	EventPlaying Event = iota
	EventQueued
	EventStopping
	EventContent
	EventSelected
)

var eventNames = [...]string{
	EventPlaying:  "playing",
	EventQueued:   "queued",
	EventStopping: "stopping",
	EventContent:  "content",
	EventSelected: "selected",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[e]
}

// Next returns the state that follows s after event e.
// Combinations with no transition leave the state unchanged.
func Next(s State, e Event, active bool) State {
	switch e {
	case EventPlaying:
		if active {
			return Playing
		}
		if s == Playing {
			return Filled
		}
	case EventStopping:
		if active {
			return Stopping
		}
		if s == Playing || s == Stopping {
			return Filled
		}
	case EventContent:
		if active {
			return Filled
		}
		return Empty
	case EventQueued:
		if active {
			return Queued
		}
		if s == Playing || s == Queued {
			return Filled
		}
	}
	return s
}

// Intensity returns the LED intensity for s, given the intensity shown on
// the previous tick. Pending states animate by stepping the previous value.
func (s State) Intensity(prev uint8) uint8 {
	switch s {
	case Filled:
		return 100
	case Playing:
		return 255
	case Queued:
		return prev + 1
	case Stopping:
		return prev - 1
	default:
		return 0
	}
}

// Clip is a single slot on the grid.
type Clip struct {
	State     State
	Intensity uint8
}

// Apply moves the clip to its next state.
func (c *Clip) Apply(e Event, active bool) {
	c.State = Next(c.State, e, active)
}

// UpdateIntensity recomputes the clip's display intensity.
func (c *Clip) UpdateIntensity() {
	c.Intensity = c.State.Intensity(c.Intensity)
}
