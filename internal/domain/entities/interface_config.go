package entities

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Sysconfig keys understood by the typed configuration record
const (
	KeyBootProto    = "BOOTPROTO"
	KeyStartMode    = "STARTMODE"
	KeyIPAddr       = "IPADDR"
	KeyNetmask      = "NETMASK"
	KeyPrefixLen    = "PREFIXLEN"
	KeyMTU          = "MTU"
	KeyLLAddr       = "LLADDR"
	KeyDescription  = "NAME"
	KeyBondMaster   = "BONDING_MASTER"
	KeyBondOptions  = "BONDING_MODULE_OPTS"
	KeyBondSlave    = "BONDING_SLAVE"
	KeyBridge       = "BRIDGE"
	KeyBridgePorts  = "BRIDGE_PORTS"
	KeyBridgeSTP    = "BRIDGE_STP"
	KeyEtherDevice  = "ETHERDEVICE"
	KeyVlanID       = "VLAN_ID"
	KeyTunnel       = "TUNNEL"
	KeyTunnelOwner  = "TUNNEL_SET_OWNER"
	KeyTunnelGroup  = "TUNNEL_SET_GROUP"
	KeyWirelessMode = "WIRELESS_MODE"
	KeyWirelessSSID = "WIRELESS_ESSID"
	KeyWirelessAuth = "WIRELESS_AUTH_MODE"
	KeyQethLayer2   = "QETH_LAYER2"
)

// Well known values
const (
	BootProtoNone    = "none"
	BootProtoStatic  = "static"
	BootProtoDHCP    = "dhcp"
	StartModeAuto    = "auto"
	StartModeNFSRoot = "nfsroot"
)

var bondSlaveKeyPattern = regexp.MustCompile(`^BONDING_SLAVE_?(\d+)$`)

// InterfaceConfig is one persisted interface configuration. Common fields are
// shared by every device class; at most one class specific variant is set.
// Keys the record does not model are kept in Extra so files round-trip.
type InterfaceConfig struct {
	Name        string `validate:"required"`
	BootProto   string `validate:"omitempty,oneof=none static dhcp dhcp4 dhcp6 dhcp+autoip autoip ibft"`
	StartMode   string `validate:"omitempty,oneof=auto hotplug ifplugd manual off nfsroot onboot"`
	IPAddr      string `validate:"omitempty,cidr|ip"`
	Netmask     string `validate:"omitempty,ipv4"`
	PrefixLen   string `validate:"omitempty,numeric"`
	MTU         string `validate:"omitempty,numeric"`
	LLAddr      string `validate:"omitempty,mac"`
	Description string

	Bond     *BondConfig
	Bridge   *BridgeConfig
	Vlan     *VlanConfig
	Tunnel   *TunnelConfig
	Wireless *WirelessConfig
	S390     *S390Config

	Extra map[string]string
}

// BondConfig holds bonding master settings. Slaves is keyed by slot number;
// slots may be sparse.
type BondConfig struct {
	Options string
	Slaves  map[int]string
	// SlaveKeys keeps the key spelling read for a slot (BONDING_SLAVE_0)
	SlaveKeys map[int]string
}

// BridgeConfig holds bridge settings
type BridgeConfig struct {
	Ports []string
	STP   string `validate:"omitempty,oneof=on off"`
}

// VlanConfig holds 802.1Q settings
type VlanConfig struct {
	EtherDevice string `validate:"required"`
	ID          string `validate:"required,numeric"`
}

// TunnelConfig holds tun/tap settings
type TunnelConfig struct {
	Mode  string `validate:"required,oneof=tun tap sit gre ipip"`
	Owner string
	Group string
}

// WirelessConfig holds the wireless settings checked for consistency
type WirelessConfig struct {
	Mode     string `validate:"omitempty,oneof=Ad-hoc Managed Master"`
	ESSID    string
	AuthMode string `validate:"omitempty,oneof=open sharedkey psk eap no-encryption"`
}

// S390Config holds s390 channel device settings
type S390Config struct {
	Layer2 bool
}

// NewInterfaceConfig returns an empty configuration for the named device
func NewInterfaceConfig(name string) *InterfaceConfig {
	return &InterfaceConfig{Name: name, Extra: map[string]string{}}
}

// ParseInterfaceConfig builds the typed record from sysconfig key/value pairs
func ParseInterfaceConfig(name string, fields map[string]string) *InterfaceConfig {
	cfg := NewInterfaceConfig(name)
	consumed := map[string]bool{}
	take := func(key string) string {
		consumed[key] = true
		return fields[key]
	}

	cfg.BootProto = take(KeyBootProto)
	cfg.StartMode = take(KeyStartMode)
	cfg.IPAddr = take(KeyIPAddr)
	cfg.Netmask = take(KeyNetmask)
	cfg.PrefixLen = take(KeyPrefixLen)
	cfg.MTU = take(KeyMTU)
	cfg.LLAddr = take(KeyLLAddr)
	cfg.Description = take(KeyDescription)

	if strings.EqualFold(fields[KeyBondMaster], "yes") {
		consumed[KeyBondMaster] = true
		cfg.Bond = &BondConfig{
			Options:   take(KeyBondOptions),
			Slaves:    map[int]string{},
			SlaveKeys: map[int]string{},
		}
		for key, value := range fields {
			m := bondSlaveKeyPattern.FindStringSubmatch(key)
			if m == nil {
				continue
			}
			// 슬롯 번호가 int 범위를 넘으면 Extra로 남김
			slot, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			consumed[key] = true
			if value == "" {
				continue
			}
			cfg.Bond.Slaves[slot] = value
			cfg.Bond.SlaveKeys[slot] = key
		}
	}

	if strings.EqualFold(fields[KeyBridge], "yes") {
		consumed[KeyBridge] = true
		cfg.Bridge = &BridgeConfig{
			Ports: strings.Fields(take(KeyBridgePorts)),
			STP:   take(KeyBridgeSTP),
		}
	}

	if ether, ok := fields[KeyEtherDevice]; ok && ether != "" {
		cfg.Vlan = &VlanConfig{EtherDevice: take(KeyEtherDevice), ID: take(KeyVlanID)}
	}

	if mode, ok := fields[KeyTunnel]; ok && mode != "" {
		cfg.Tunnel = &TunnelConfig{
			Mode:  take(KeyTunnel),
			Owner: take(KeyTunnelOwner),
			Group: take(KeyTunnelGroup),
		}
	}

	if fields[KeyWirelessMode] != "" || fields[KeyWirelessSSID] != "" || DeviceTypeFromName(name) == TypeWireless {
		cfg.Wireless = &WirelessConfig{
			Mode:     take(KeyWirelessMode),
			ESSID:    take(KeyWirelessSSID),
			AuthMode: take(KeyWirelessAuth),
		}
	}

	if layer2, ok := fields[KeyQethLayer2]; ok {
		consumed[KeyQethLayer2] = true
		cfg.S390 = &S390Config{Layer2: strings.EqualFold(layer2, "yes")}
	}

	for key, value := range fields {
		if !consumed[key] {
			cfg.Extra[key] = value
		}
	}
	return cfg
}

// ToFields renders the record back into sysconfig key/value pairs. Empty
// common values are omitted.
func (c *InterfaceConfig) ToFields() map[string]string {
	fields := make(map[string]string, len(c.Extra)+8)
	for k, v := range c.Extra {
		fields[k] = v
	}
	put := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}

	put(KeyBootProto, c.BootProto)
	put(KeyStartMode, c.StartMode)
	put(KeyIPAddr, c.IPAddr)
	put(KeyNetmask, c.Netmask)
	put(KeyPrefixLen, c.PrefixLen)
	put(KeyMTU, c.MTU)
	put(KeyLLAddr, c.LLAddr)
	put(KeyDescription, c.Description)

	if c.Bond != nil {
		fields[KeyBondMaster] = "yes"
		put(KeyBondOptions, c.Bond.Options)
		for slot, slave := range c.Bond.Slaves {
			key, ok := c.Bond.SlaveKeys[slot]
			if !ok {
				key = fmt.Sprintf("%s%d", KeyBondSlave, slot)
			}
			put(key, slave)
		}
	}
	if c.Bridge != nil {
		fields[KeyBridge] = "yes"
		fields[KeyBridgePorts] = strings.Join(c.Bridge.Ports, " ")
		put(KeyBridgeSTP, c.Bridge.STP)
	}
	if c.Vlan != nil {
		put(KeyEtherDevice, c.Vlan.EtherDevice)
		put(KeyVlanID, c.Vlan.ID)
	}
	if c.Tunnel != nil {
		put(KeyTunnel, c.Tunnel.Mode)
		put(KeyTunnelOwner, c.Tunnel.Owner)
		put(KeyTunnelGroup, c.Tunnel.Group)
	}
	if c.Wireless != nil {
		put(KeyWirelessMode, c.Wireless.Mode)
		put(KeyWirelessSSID, c.Wireless.ESSID)
		put(KeyWirelessAuth, c.Wireless.AuthMode)
	}
	if c.S390 != nil {
		if c.S390.Layer2 {
			fields[KeyQethLayer2] = "yes"
		} else {
			fields[KeyQethLayer2] = "no"
		}
	}
	return fields
}

// DeviceType returns the class the configuration describes. Variant fields
// win over the name prefix.
func (c *InterfaceConfig) DeviceType() DeviceType {
	switch {
	case c.Bond != nil:
		return TypeBond
	case c.Bridge != nil:
		return TypeBridge
	case c.Vlan != nil:
		return TypeVlan
	case c.Tunnel != nil:
		if c.Tunnel.Mode == string(TypeTap) {
			return TypeTap
		}
		return TypeTun
	case c.Wireless != nil:
		return TypeWireless
	}
	return ParseDeviceIdentity(c.Name).Type
}

// BondSlaves returns the bond slaves ordered by slot; empty slots are skipped
func (c *InterfaceConfig) BondSlaves() []string {
	if c.Bond == nil {
		return nil
	}
	slots := make([]int, 0, len(c.Bond.Slaves))
	for slot, slave := range c.Bond.Slaves {
		if slave != "" {
			slots = append(slots, slot)
		}
	}
	sort.Ints(slots)

	slaves := make([]string, 0, len(slots))
	for _, slot := range slots {
		slaves = append(slaves, c.Bond.Slaves[slot])
	}
	return slaves
}

// Clone returns a deep copy that can be staged and edited independently
func (c *InterfaceConfig) Clone() *InterfaceConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Extra = make(map[string]string, len(c.Extra))
	for k, v := range c.Extra {
		out.Extra[k] = v
	}
	if c.Bond != nil {
		bond := *c.Bond
		bond.Slaves = make(map[int]string, len(c.Bond.Slaves))
		for k, v := range c.Bond.Slaves {
			bond.Slaves[k] = v
		}
		if c.Bond.SlaveKeys != nil {
			bond.SlaveKeys = make(map[int]string, len(c.Bond.SlaveKeys))
			for k, v := range c.Bond.SlaveKeys {
				bond.SlaveKeys[k] = v
			}
		}
		out.Bond = &bond
	}
	if c.Bridge != nil {
		bridge := *c.Bridge
		bridge.Ports = append([]string(nil), c.Bridge.Ports...)
		out.Bridge = &bridge
	}
	if c.Vlan != nil {
		vlan := *c.Vlan
		out.Vlan = &vlan
	}
	if c.Tunnel != nil {
		tunnel := *c.Tunnel
		out.Tunnel = &tunnel
	}
	if c.Wireless != nil {
		wireless := *c.Wireless
		out.Wireless = &wireless
	}
	if c.S390 != nil {
		s390 := *c.S390
		out.S390 = &s390
	}
	return &out
}
