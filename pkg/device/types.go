package device

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/urmzd/lfdctl/pkg/session"
)

// Device represents one configured display
type Device struct {
	ID           string          `json:"id"`           // Unique identifier chosen at configuration time
	Name         string          `json:"name"`         // User-friendly name
	Type         string          `json:"type"`         // Device type (display)
	Protocol     string          `json:"protocol"`     // Control protocol (mdc)
	Manufacturer string          `json:"manufacturer"` // Device manufacturer
	Model        string          `json:"model"`        // Model name reported by the display
	Config       session.Config  `json:"config"`       // Session configuration
	Status       session.Status  `json:"status"`       // Connection status
	Capabilities []string        `json:"capabilities"` // Lifecycle operations the display supports
	StateSchema  json.RawMessage `json:"state_schema"` // JSON Schema for settable state
}

// DeviceState represents the current state of a display as a dynamic map.
type DeviceState map[string]any

// Spec is everything needed to create a display session. It is what the
// database persists.
type Spec struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Config       session.Config `json:"config"`
	Reconnect    string         `json:"reconnect,omitempty"`     // immediate, none, backoff
	MaxAttempts  int            `json:"max_attempts,omitempty"`  // backoff only
	BaseDelayMs  int            `json:"base_delay_ms,omitempty"` // backoff only
	Submit       string         `json:"submit,omitempty"`        // drop, queue
	PollInterval time.Duration  `json:"poll_interval,omitempty"`
}

// ReconnectPolicy resolves the display's reconnect fields.
func (s Spec) ReconnectPolicy() (session.ReconnectPolicy, error) {
	mode, err := session.ParseReconnectMode(s.Reconnect)
	if err != nil {
		return session.ReconnectPolicy{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	switch mode {
	case session.ReconnectNone:
		return session.ReconnectPolicy{Mode: session.ReconnectNone}, nil
	case session.ReconnectBackoff:
		attempts := s.MaxAttempts
		if attempts <= 0 {
			attempts = 5
		}
		base := time.Duration(s.BaseDelayMs) * time.Millisecond
		if base <= 0 {
			base = time.Second
		}
		return session.BackoffPolicy(attempts, base), nil
	}
	return session.DefaultReconnectPolicy(), nil
}

// SubmitPolicy resolves the display's submit field.
func (s Spec) SubmitPolicy() (session.SubmitPolicy, error) {
	p, err := session.ParseSubmitPolicy(s.Submit)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return p, nil
}

// Event represents a display event delivered to subscribers
type Event struct {
	Type      string          `json:"type"`               // Event type (status, state, feedback, device_added, device_removed)
	Device    string          `json:"device"`             // Display ID
	Status    *session.Status `json:"status,omitempty"`   // Connection status for status events
	Changed   []string        `json:"changed,omitempty"`  // Facets touched by a state event
	State     DeviceState     `json:"state,omitempty"`    // Snapshot after a state event
	Feedback  string          `json:"feedback,omitempty"` // Feedback ID for feedback events
	Active    bool            `json:"active,omitempty"`   // Feedback style
	Text      string          `json:"text,omitempty"`     // Feedback style
	Timestamp time.Time       `json:"timestamp"`          // When the event occurred
}

// Event types
const (
	EventStatus        = "status"
	EventState         = "state"
	EventFeedback      = "feedback"
	EventDeviceAdded   = "device_added"
	EventDeviceRemoved = "device_removed"
)

// Protocol and type constants
const (
	ProtocolMDC       = "mdc"
	DeviceTypeDisplay = "display"
)

// Capabilities
const (
	CapabilityConfigure = "configure"
	CapabilityTeardown  = "teardown"
)
