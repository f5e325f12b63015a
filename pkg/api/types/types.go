package types

import (
	"encoding/json"
	"time"

	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/session"
	"github.com/urmzd/lfdctl/pkg/transport"
)

// DefaultDeviceID is used when a request leaves device_id out.
const DefaultDeviceID = 1

// --- Request DTOs ---

// ConnectionRequest is the connection part of POST /displays and the body
// of PUT /displays/:id/config
type ConnectionRequest struct {
	Host      string `json:"host" binding:"required"`
	Port      int    `json:"port,omitempty"`      // TCP port (default 1515) or baud rate (default 9600)
	DeviceID  *int   `json:"device_id,omitempty"` // 0-254, 254 broadcasts; default 1
	Transport string `json:"transport,omitempty"` // tcp (default) or serial
}

// Config converts the request to a session configuration.
func (r ConnectionRequest) Config() session.Config {
	cfg := session.Config{
		Host:      r.Host,
		Port:      r.Port,
		DeviceID:  DefaultDeviceID,
		Transport: r.Transport,
	}
	if r.DeviceID != nil {
		cfg.DeviceID = *r.DeviceID
	}
	if cfg.Port == 0 {
		cfg.Port = transport.DefaultTCPPort
		if cfg.TransportKind() == session.TransportSerial {
			cfg.Port = transport.DefaultBaudRate
		}
	}
	return cfg
}

// AddDisplayRequest is the request body for POST /displays
type AddDisplayRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name,omitempty"`
	ConnectionRequest
	Reconnect   string `json:"reconnect,omitempty"`     // immediate (default), none, backoff
	MaxAttempts int    `json:"max_attempts,omitempty"`  // backoff only
	BaseDelayMs int    `json:"base_delay_ms,omitempty"` // backoff only
	Submit      string `json:"submit,omitempty"`        // drop (default), queue
	PollSeconds int    `json:"poll_seconds,omitempty"`  // 0 disables status polling
}

// Spec converts the request to a display spec.
func (r AddDisplayRequest) Spec() device.Spec {
	return device.Spec{
		ID:           r.ID,
		Name:         r.Name,
		Config:       r.Config(),
		Reconnect:    r.Reconnect,
		MaxAttempts:  r.MaxAttempts,
		BaseDelayMs:  r.BaseDelayMs,
		Submit:       r.Submit,
		PollInterval: time.Duration(r.PollSeconds) * time.Second,
	}
}

// RenameDisplayRequest is the request body for PATCH /displays/:id
type RenameDisplayRequest struct {
	Name string `json:"name" binding:"required"`
}

// CommandRequest is the request body for POST /displays/:id/commands
type CommandRequest struct {
	Command string `json:"command" binding:"required" example:"power on"`
}

// ActionRequest is the request body for POST /displays/:id/actions/:action
type ActionRequest struct {
	Values map[string]any `json:"values,omitempty"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Displays  int       `json:"displays"`
	Connected int       `json:"connected"`
	Timestamp time.Time `json:"timestamp"`
}

// SerialPortsResponse is returned from GET /serial-ports
type SerialPortsResponse struct {
	Ports           []string `json:"ports"`
	DefaultBaudRate int      `json:"default_baud_rate"`
	DefaultTCPPort  int      `json:"default_tcp_port"`
}

// ListDisplaysResponse is returned from GET /displays
type ListDisplaysResponse struct {
	Displays []DisplayWithState `json:"displays"`
	Count    int                `json:"count"`
}

// DisplayWithState combines display info with its snapshot
type DisplayWithState struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Model        string          `json:"model,omitempty"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	Type         string          `json:"type"`
	Protocol     string          `json:"protocol"`
	Config       session.Config  `json:"config"`
	Status       session.Status  `json:"status"`
	Capabilities []string        `json:"capabilities"`
	StateSchema  json.RawMessage `json:"state_schema,omitempty"`
	State        map[string]any  `json:"state,omitempty"`
}

// NewDisplayWithState builds the response form of a display.
func NewDisplayWithState(d device.Device, state device.DeviceState) DisplayWithState {
	return DisplayWithState{
		ID:           d.ID,
		Name:         d.Name,
		Model:        d.Model,
		Manufacturer: d.Manufacturer,
		Type:         d.Type,
		Protocol:     d.Protocol,
		Config:       d.Config,
		Status:       d.Status,
		Capabilities: d.Capabilities,
		StateSchema:  d.StateSchema,
		State:        state,
	}
}

// DisplayResponse is returned from GET /displays/:id
type DisplayResponse struct {
	Display DisplayWithState `json:"display"`
}

// StateResponse is returned from GET/POST /displays/:id/state
type StateResponse struct {
	Display   string         `json:"display"`
	State     map[string]any `json:"state"`
	Timestamp time.Time      `json:"timestamp"`
}

// CommandResponse is returned when a command is accepted for submission
type CommandResponse struct {
	Display string `json:"display"`
	Command string `json:"command"`
	Status  string `json:"status"`
}

// VariablesResponse is returned from GET /displays/:id/variables
type VariablesResponse struct {
	Display   string            `json:"display"`
	Variables map[string]string `json:"variables"`
}

// FeedbackStyle is the visual state of one feedback
type FeedbackStyle struct {
	Active bool   `json:"active"`
	Text   string `json:"text,omitempty"`
}

// FeedbacksResponse is returned from GET /displays/:id/feedbacks
type FeedbacksResponse struct {
	Display   string                   `json:"display"`
	Feedbacks map[string]FeedbackStyle `json:"feedbacks"`
}

// FailureResponse is returned from GET /displays/:id/failure
type FailureResponse struct {
	Display    string `json:"display"`
	RequestKey string `json:"request_key,omitempty"`
	Status     string `json:"status,omitempty"`
	Message    string `json:"message,omitempty"`
}
