package entities

import "errors"

// ErrEmptyItem is returned when an item carries neither hardware nor configuration
var ErrEmptyItem = errors.New("item has neither hardware nor configuration")

// Item is the reconciled unit joining detected hardware with its persisted
// configuration and udev rule. ID is only meaningful within one table build.
type Item struct {
	ID       int
	Hardware *HardwareDescriptor
	Config   *InterfaceConfig
	Udev     *UdevRule

	// Committed is false for items created in this session that were never
	// written to the configuration store
	Committed bool
	// Pending is set while an operation on the item is outstanding
	Pending bool
}

// Validate checks the item invariant
func (i *Item) Validate() error {
	if i.Hardware == nil && i.Config == nil {
		return ErrEmptyItem
	}
	return nil
}

// Name returns the device name of the item. The configuration name wins,
// since it is what persistent naming pins the hardware to.
func (i *Item) Name() string {
	if i.Config != nil && i.Config.Name != "" {
		return i.Config.Name
	}
	if i.Hardware != nil {
		return i.Hardware.DevName
	}
	return ""
}

// Type returns the device class, preferring what the hardware reports
func (i *Item) Type() DeviceType {
	if i.Hardware != nil && i.Hardware.Type != TypeUnknown {
		return i.Hardware.Type
	}
	if i.Config != nil {
		return i.Config.DeviceType()
	}
	if i.Hardware != nil {
		return DeviceTypeFromName(i.Hardware.DevName)
	}
	return TypeUnknown
}

// IsVirtual reports a configuration without hardware (bond, bridge, vlan, ...)
func (i *Item) IsVirtual() bool {
	return i.Hardware == nil && i.Config != nil
}

// IsUnconfigured reports hardware without configuration
func (i *Item) IsUnconfigured() bool {
	return i.Hardware != nil && i.Config == nil
}

// StartMode returns the configured start mode or empty
func (i *Item) StartMode() string {
	if i.Config == nil {
		return ""
	}
	return i.Config.StartMode
}
