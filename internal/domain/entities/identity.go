package entities

import (
	"fmt"
	"regexp"
)

// IdentityKind tells how a device name identifies its hardware
type IdentityKind int

const (
	IdentityByName IdentityKind = iota
	IdentityByMac
	IdentityByBus
)

var (
	// eth-id-00:11:22:33:44:55
	identityByMacPattern = regexp.MustCompile(`^([A-Za-z]+)-id-((?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2})$`)
	// eth-bus-pci-0000:00:19.0
	identityByBusPattern = regexp.MustCompile(`^([A-Za-z]+)-bus-([A-Za-z0-9]+)-(.+)$`)
)

// DeviceIdentity is the parsed form of a device name that may encode the
// hardware it belongs to
type DeviceIdentity struct {
	Kind  IdentityKind
	Raw   string
	Type  DeviceType
	MAC   string
	Bus   string
	BusID string
}

// ParseDeviceIdentity parses a device name once so matching code never
// re-inspects the raw string
func ParseDeviceIdentity(name string) DeviceIdentity {
	if m := identityByMacPattern.FindStringSubmatch(name); m != nil {
		return DeviceIdentity{
			Kind: IdentityByMac,
			Raw:  name,
			Type: DeviceTypeFromName(m[1]),
			MAC:  NormalizeMAC(m[2]),
		}
	}
	if m := identityByBusPattern.FindStringSubmatch(name); m != nil {
		return DeviceIdentity{
			Kind:  IdentityByBus,
			Raw:   name,
			Type:  DeviceTypeFromName(m[1]),
			Bus:   m[2],
			BusID: m[3],
		}
	}
	return DeviceIdentity{
		Kind: IdentityByName,
		Raw:  name,
		Type: DeviceTypeFromName(name),
	}
}

// Matches reports whether the identity designates the given hardware
func (d DeviceIdentity) Matches(hw *HardwareDescriptor) bool {
	if hw == nil {
		return false
	}
	switch d.Kind {
	case IdentityByMac:
		return hw.MatchesMAC(d.MAC)
	case IdentityByBus:
		return hw.Bus == d.Bus && hw.BusID == d.BusID
	default:
		return d.Raw != "" && hw.DevName == d.Raw
	}
}

// String returns the original device name
func (d DeviceIdentity) String() string {
	return d.Raw
}

func (k IdentityKind) String() string {
	switch k {
	case IdentityByMac:
		return "mac"
	case IdentityByBus:
		return "bus"
	case IdentityByName:
		return "name"
	}
	return fmt.Sprintf("IdentityKind(%d)", int(k))
}
