package mcp

import (
	"encoding/json"

	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/session"
)

// --- Health Tool ---

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status    string `json:"status" jsonschema:"description=healthy when every display is connected, degraded otherwise"`
	Displays  int    `json:"displays" jsonschema:"description=Number of configured displays"`
	Connected int    `json:"connected" jsonschema:"description=Number of connected displays"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// --- List Displays Tool ---

// ListDisplaysOutput is the output for the list_displays tool
type ListDisplaysOutput struct {
	Displays []DisplayInfo `json:"displays" jsonschema:"description=Configured displays"`
	Count    int           `json:"count" jsonschema:"description=Total number of displays"`
}

// DisplayInfo represents a display in tool outputs
type DisplayInfo struct {
	ID          string          `json:"id" jsonschema:"description=Unique display identifier"`
	Name        string          `json:"name" jsonschema:"description=User-friendly display name"`
	Model       string          `json:"model,omitempty" jsonschema:"description=Model name reported by the display"`
	Config      session.Config  `json:"config" jsonschema:"description=Connection configuration"`
	Status      session.Status  `json:"status" jsonschema:"description=Connection status"`
	StateSchema json.RawMessage `json:"state_schema,omitempty" jsonschema:"description=JSON Schema for settable state"`
	State       map[string]any  `json:"state,omitempty" jsonschema:"description=Last known display state"`
}

// --- Get Display Tool ---

// GetDisplayOutput is the output for the get_display tool
type GetDisplayOutput struct {
	Display DisplayInfo `json:"display" jsonschema:"description=Display information"`
}

// --- Lifecycle Tools ---

// ResultOutput is the output of tools that only report success
type ResultOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the operation succeeded"`
	Message string `json:"message" jsonschema:"description=Status message"`
}

// --- State Tools ---

// StateOutput is the output for the get_display_state and set_display_state tools
type StateOutput struct {
	DisplayID string         `json:"display_id" jsonschema:"description=Display identifier"`
	State     map[string]any `json:"state" jsonschema:"description=Display state at the time of the call"`
}

// --- Command Tools ---

// CommandOutput is the output of tools that submit a command
type CommandOutput struct {
	DisplayID string `json:"display_id" jsonschema:"description=Display identifier"`
	Command   string `json:"command" jsonschema:"description=Command text that was submitted"`
	Message   string `json:"message" jsonschema:"description=Status message"`
}

// VariablesOutput is the output for the get_variables tool
type VariablesOutput struct {
	DisplayID string            `json:"display_id" jsonschema:"description=Display identifier"`
	Variables map[string]string `json:"variables" jsonschema:"description=Variable values; empty when unknown"`
}

// --- Helper conversions ---

// DisplayToInfo converts a device.Device to DisplayInfo
func DisplayToInfo(d *device.Device) DisplayInfo {
	return DisplayInfo{
		ID:          d.ID,
		Name:        d.Name,
		Model:       d.Model,
		Config:      d.Config,
		Status:      d.Status,
		StateSchema: d.StateSchema,
	}
}
