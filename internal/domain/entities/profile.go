package entities

// ProfileInterface is one abstract interface description of an autoinstall
// profile, matched against real hardware at install time
type ProfileInterface struct {
	Device    string            `yaml:"device" validate:"required"`
	BootProto string            `yaml:"bootproto" validate:"omitempty,oneof=none static dhcp dhcp4 dhcp6 dhcp+autoip autoip ibft"`
	StartMode string            `yaml:"startmode"`
	IPAddr    string            `yaml:"ipaddr"`
	Netmask   string            `yaml:"netmask"`
	PrefixLen string            `yaml:"prefixlen"`
	MTU       string            `yaml:"mtu"`
	Fields    map[string]string `yaml:"fields"`
}

// Identity parses the profile device name
func (p ProfileInterface) Identity() DeviceIdentity {
	return ParseDeviceIdentity(p.Device)
}

// ProfileModule associates a kernel module with a profile device
type ProfileModule struct {
	Device  string `yaml:"device" validate:"required"`
	Module  string `yaml:"module" validate:"required"`
	Options string `yaml:"options"`
}

// Profile is the networking section of an autoinstall profile
type Profile struct {
	Interfaces []ProfileInterface `yaml:"interfaces" validate:"dive"`
	Modules    []ProfileModule    `yaml:"net-udev-modules" validate:"dive"`
}

// ModuleFor returns the kernel module declared for a device, if any
func (p *Profile) ModuleFor(device string) string {
	for _, m := range p.Modules {
		if m.Device == device {
			return m.Module
		}
	}
	return ""
}

// ToConfig builds the configuration the profile asks for under the given
// device name
func (p ProfileInterface) ToConfig(name string) *InterfaceConfig {
	fields := make(map[string]string, len(p.Fields)+6)
	for k, v := range p.Fields {
		fields[k] = v
	}
	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	set(KeyBootProto, p.BootProto)
	set(KeyStartMode, p.StartMode)
	set(KeyIPAddr, p.IPAddr)
	set(KeyNetmask, p.Netmask)
	set(KeyPrefixLen, p.PrefixLen)
	set(KeyMTU, p.MTU)
	return ParseInterfaceConfig(name, fields)
}
