// Package serialosc talks to monome controllers through the serialosc
// daemon. See https://monome.org/docs/serialosc/osc/
package serialosc

import (
	"strings"

	"github.com/tychedelia/bitwig-monome/device"
)

// DefaultAddr is where serialosc listens for discovery requests.
const DefaultAddr = "127.0.0.1:12002"

// Discovery addresses, sent to and received from the daemon.
const (
	AddressList   = "/serialosc/list"
	AddressDevice = "/serialosc/device"
)

// System addresses, sent to a device's own port.
const (
	AddressSysPort     = "/sys/port"
	AddressSysHost     = "/sys/host"
	AddressSysPrefix   = "/sys/prefix"
	AddressSysRotation = "/sys/rotation"
)

// Device addresses, relative to the configured prefix.
const (
	AddressGridKey      = "/grid/key"
	AddressGridLevelMap = "/grid/led/level/map"
	AddressGridLevelAll = "/grid/led/level/all"
	AddressRingMap      = "/ring/map"
	AddressRingAll      = "/ring/all"
)

// Info describes a device announced by serialosc.
type Info struct {
	ID   string
	Type string
	Port int
}

// DeviceType classifies the model string reported by serialosc,
// e.g. "monome 128" or "monome arc 4".
func (i Info) DeviceType() device.Type {
	switch t := strings.ToLower(i.Type); {
	case strings.Contains(t, "arc"):
		return device.Arc
	case strings.HasPrefix(t, "monome"):
		return device.Grid
	default:
		return device.Unknown
	}
}
