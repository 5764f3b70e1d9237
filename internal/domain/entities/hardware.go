package entities

import (
	"regexp"
	"strings"
)

// HotplugClass describes how a device is attached to the system
type HotplugClass string

const (
	HotplugNone   HotplugClass = ""
	HotplugUSB    HotplugClass = "usb"
	HotplugPCMCIA HotplugClass = "pcmcia"
)

// DeviceType is the interface class of a device (eth, wlan, bond, ...)
type DeviceType string

const (
	TypeEthernet   DeviceType = "eth"
	TypeWireless   DeviceType = "wlan"
	TypeBond       DeviceType = "bond"
	TypeVlan       DeviceType = "vlan"
	TypeBridge     DeviceType = "br"
	TypeTun        DeviceType = "tun"
	TypeTap        DeviceType = "tap"
	TypeCTC        DeviceType = "ctc"
	TypeLCS        DeviceType = "lcs"
	TypeIUCV       DeviceType = "iucv"
	TypeQeth       DeviceType = "qeth"
	TypeInfiniband DeviceType = "ib"
	TypeUnknown    DeviceType = ""
)

// ZeroMAC is the placeholder address reported by devices without a real one
const ZeroMAC = "00:00:00:00:00:00"

var macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)

// HardwareDescriptor is one physically or virtually detected network device.
// Descriptors are produced by a detection pass and are not modified afterwards.
type HardwareDescriptor struct {
	DevName      string
	MAC          string
	Bus          string
	BusID        string
	Driver       string
	Modalias     string
	LinkUp       bool
	Active       bool
	HotplugClass HotplugClass
	Type         DeviceType

	// DetectionIndex is the position of the device in the detection pass.
	// Every ordered scan over hardware sorts by it.
	DetectionIndex int
}

// HasMAC reports whether the descriptor carries a usable hardware address
func (h *HardwareDescriptor) HasMAC() bool {
	return h.MAC != "" && h.MAC != ZeroMAC && isValidMacAddress(h.MAC)
}

// MatchesMAC compares the descriptor's address case-insensitively
func (h *HardwareDescriptor) MatchesMAC(mac string) bool {
	return h.HasMAC() && NormalizeMAC(h.MAC) == NormalizeMAC(mac)
}

// NormalizeMAC lower-cases an address and converts dashes to colons
func NormalizeMAC(mac string) string {
	return strings.ToLower(strings.ReplaceAll(mac, "-", ":"))
}

// DeviceTypeFromName derives the device class from an interface name:
// eth0 -> eth, br1 -> br, eth-id-00:11:.. -> eth, enp0s3 -> eth.
func DeviceTypeFromName(name string) DeviceType {
	if name == "" {
		return TypeUnknown
	}
	if i := strings.Index(name, "-"); i > 0 {
		name = name[:i]
	}
	prefix := strings.TrimRightFunc(name, func(r rune) bool {
		return r >= '0' && r <= '9'
	})
	if i := strings.Index(prefix, "."); i > 0 {
		// eth0.100
		return TypeVlan
	}

	switch {
	case prefix == "eth", strings.HasPrefix(prefix, "en"):
		return TypeEthernet
	case prefix == "wlan", strings.HasPrefix(prefix, "wl"):
		return TypeWireless
	case prefix == "bridge":
		return TypeBridge
	}
	return DeviceType(prefix)
}

// IsKnown reports whether t is one of the device classes above, as opposed
// to a bare name prefix such as "em" or "p1p"
func (t DeviceType) IsKnown() bool {
	switch t {
	case TypeEthernet, TypeWireless, TypeBond, TypeVlan, TypeBridge, TypeTun, TypeTap,
		TypeCTC, TypeLCS, TypeIUCV, TypeQeth, TypeInfiniband:
		return true
	}
	return false
}

func isValidMacAddress(mac string) bool {
	return macPattern.MatchString(mac)
}
