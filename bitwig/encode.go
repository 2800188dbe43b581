package bitwig

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
)

// Encode converts a command into the OSC message the DAW expects.
// None of the commands carry arguments.
func Encode(cm ControlMessage) (osc.Message, error) {
	switch cm.Kind {
	case KindRefresh:
		return osc.Message{Address: AddressRefresh}, nil
	case KindLaunch:
		return osc.Message{Address: fmt.Sprintf(addressLaunch, cm.Track, cm.Scene)}, nil
	case KindStop:
		// The DAW stops whatever is playing on the track, so the scene is not sent.
		return osc.Message{Address: fmt.Sprintf(addressStop, cm.Track)}, nil
	}
	return osc.Message{}, errors.Errorf("unknown control message kind %d", cm.Kind)
}
