package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/session"
	"github.com/urmzd/lfdctl/pkg/transport"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.displays.ListDevices(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list displays: %s", err)), nil
	}

	connected := 0
	for _, d := range list {
		if d.Status.State == session.StateConnected {
			connected++
		}
	}
	status := "healthy"
	if connected < len(list) {
		status = "degraded"
	}

	out := GetHealthOutput{
		Status:    status,
		Displays:  len(list),
		Connected: connected,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListDisplays(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.displays.ListDevices(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list displays: %s", err)), nil
	}

	infos := make([]DisplayInfo, 0, len(list))
	for i := range list {
		info := DisplayToInfo(&list[i])
		if state, err := s.displays.GetDeviceState(ctx, list[i].ID); err == nil {
			info.State = state
		}
		infos = append(infos, info)
	}

	out := ListDisplaysOutput{
		Displays: infos,
		Count:    len(infos),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetDisplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := s.displays.GetDevice(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("display not found: %s", err)), nil
	}

	info := DisplayToInfo(d)
	if state, err := s.displays.GetDeviceState(ctx, d.ID); err == nil {
		info.State = state
	}
	return mcp.NewToolResultText(formatJSON(GetDisplayOutput{Display: info})), nil
}

func (s *Server) handleAddDisplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	host, err := requiredString(request, "host")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	cfg := session.Config{
		Host:      host,
		Port:      intArg(args, "port", 0),
		DeviceID:  intArg(args, "device_id", 1),
		Transport: stringArg(args, "transport"),
	}
	if cfg.Port == 0 {
		cfg.Port = transport.DefaultTCPPort
		if cfg.TransportKind() == session.TransportSerial {
			cfg.Port = transport.DefaultBaudRate
		}
	}

	d, err := s.displays.AddDevice(ctx, device.Spec{ID: id, Name: stringArg(args, "name"), Config: cfg})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add display: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(GetDisplayOutput{Display: DisplayToInfo(d)})), nil
}

func (s *Server) handleRenameDisplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newName, err := requiredString(request, "new_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.displays.RenameDevice(ctx, id, newName); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to rename display: %s", err)), nil
	}

	out := ResultOutput{
		Success: true,
		Message: fmt.Sprintf("Display %q renamed to %q", id, newName),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleRemoveDisplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.displays.RemoveDevice(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove display: %s", err)), nil
	}

	out := ResultOutput{
		Success: true,
		Message: fmt.Sprintf("Display %q removed", id),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleTeardownDisplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.displays.Teardown(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to tear down display: %s", err)), nil
	}

	out := ResultOutput{
		Success: true,
		Message: fmt.Sprintf("Display %q disconnected", id),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetDisplayState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.displays.GetDeviceState(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get display state: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(StateOutput{DisplayID: id, State: state})), nil
}

func (s *Server) handleSetDisplayState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	// State arrives as a nested "state" object or as flat arguments.
	stateMap := map[string]any{}
	if stateRaw, ok := args["state"]; ok {
		if sm, ok := stateRaw.(map[string]any); ok {
			stateMap = sm
		}
	} else {
		for k, v := range args {
			if k != "id" {
				stateMap[k] = v
			}
		}
	}

	if s.validator != nil {
		d, err := s.displays.GetDevice(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("display not found: %s", err)), nil
		}
		if err := s.validator.Validate(d.StateSchema, stateMap); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("validation error: %s", err)), nil
		}
	}

	state, err := s.displays.SetDeviceState(ctx, id, stateMap)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set display state: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(StateOutput{DisplayID: id, State: state})), nil
}

func (s *Server) handleSubmitCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	command, err := requiredString(request, "command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.displays.SendCommand(ctx, id, command); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to submit command: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(submitted(id, command))), nil
}

func (s *Server) handleGetVariables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	vars, err := s.displays.Variables(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get variables: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(VariablesOutput{DisplayID: id, Variables: vars})), nil
}

// actionHandler runs a host action. values maps tool arguments to action
// option values; nil means the action takes none.
func (s *Server) actionHandler(action string, values func(map[string]any) (map[string]any, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requiredString(request, "id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var opts map[string]any
		if values != nil {
			if opts, err = values(request.GetArguments()); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}

		text, err := s.displays.RunAction(ctx, id, action, opts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to run %s: %s", action, err)), nil
		}
		return mcp.NewToolResultText(formatJSON(submitted(id, text))), nil
	}
}

// valueArg passes tool argument key as the action's value option.
func valueArg(key string) func(map[string]any) (map[string]any, error) {
	return func(args map[string]any) (map[string]any, error) {
		v, ok := args[key]
		if !ok || v == nil {
			return nil, fmt.Errorf("required parameter %q is missing", key)
		}
		if f, ok := v.(float64); ok && f == float64(int(f)) {
			v = int(f)
		}
		return map[string]any{"value": v}, nil
	}
}

func submitted(id, command string) CommandOutput {
	return CommandOutput{
		DisplayID: id,
		Command:   command,
		Message:   "Command submitted; the display's state updates when it acknowledges",
	}
}

// --- helpers ---

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads a JSON number argument.
func intArg(args map[string]any, key string, def int) int {
	switch n := args[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return def
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
