package device

import (
	"context"

	"github.com/urmzd/lfdctl/pkg/session"
)

// Controller defines the interface for driving displays. Hosts (the HTTP
// API, the MCP server, message bridges) depend on it rather than on the
// session manager directly.
type Controller interface {
	// ListDevices returns all configured displays
	ListDevices(ctx context.Context) ([]Device, error)

	// GetDevice returns a single display by ID or name
	GetDevice(ctx context.Context, id string) (*Device, error)

	// AddDevice configures a new display and starts its session
	AddDevice(ctx context.Context, spec Spec) (*Device, error)

	// RenameDevice changes a display's friendly name
	RenameDevice(ctx context.Context, id, newName string) error

	// RemoveDevice tears down a display's session and forgets it
	RemoveDevice(ctx context.Context, id string) error

	// Configure replaces a display's session configuration and reconnects
	Configure(ctx context.Context, id string, cfg session.Config) error

	// Teardown closes a display's session without forgetting it
	Teardown(ctx context.Context, id string) error

	// GetDeviceState returns the display's last known snapshot
	GetDeviceState(ctx context.Context, id string) (DeviceState, error)

	// SetDeviceState submits one set command per key
	SetDeviceState(ctx context.Context, id string, state map[string]any) (DeviceState, error)

	// SendCommand submits semantic command text such as "power on"
	SendCommand(ctx context.Context, id, command string) error

	// IsConnected returns true if at least one display session is connected
	IsConnected() bool

	// Close tears down every session
	Close()
}

// EventSubscriber defines the interface for subscribing to display events
type EventSubscriber interface {
	// Subscribe returns a channel that receives display events
	Subscribe() chan Event

	// Unsubscribe removes a subscription
	Unsubscribe(ch chan Event)
}
