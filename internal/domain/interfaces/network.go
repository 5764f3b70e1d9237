package interfaces

import "context"

// UdevController asks the udev daemon to pick up rule changes
type UdevController interface {
	// Reload makes udevd re-read its rules
	Reload(ctx context.Context) error

	// Trigger replays uevents of a subsystem
	Trigger(ctx context.Context, subsystem, action string) error
}

// LinkController changes kernel link state
type LinkController interface {
	// SetLinkDown brings the named link down
	SetLinkDown(ctx context.Context, name string) error
}
