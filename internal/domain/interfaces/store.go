package interfaces

import (
	"context"

	"github.com/yast/yast-network-sub000/internal/domain/entities"
)

// HardwareInventory produces a snapshot of the detected network devices
type HardwareInventory interface {
	// Detect runs one detection pass
	Detect(ctx context.Context) ([]entities.HardwareDescriptor, error)
}

// ConfigStore persists interface configurations by device name
type ConfigStore interface {
	// List returns configuration names. An empty kind lists everything,
	// otherwise only configurations of that device class.
	List(ctx context.Context, kind entities.DeviceType) ([]string, error)

	// Read returns the named configuration
	Read(ctx context.Context, name string) (*entities.InterfaceConfig, error)

	// Write creates or replaces the named configuration
	Write(ctx context.Context, name string, cfg *entities.InterfaceConfig) error

	// Delete removes the named configuration. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error
}

// UdevRuleStore persists persistent-net udev rules keyed by the assigned NAME
type UdevRuleStore interface {
	// ReadAll returns every rule as its clause list
	ReadAll(ctx context.Context) (map[string][]string, error)

	// WriteAll replaces the whole rule set
	WriteAll(ctx context.Context, rules map[string][]string) error
}
