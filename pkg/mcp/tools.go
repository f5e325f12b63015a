package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/urmzd/lfdctl/pkg/lfd"
)

const idDescription = "Display ID or friendly name"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Report how many configured displays are connected"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_displays",
			mcp.WithDescription("List all configured displays with connection status and last known state"),
		),
		s.handleListDisplays,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_display",
			mcp.WithDescription("Get detailed information about a display by ID or friendly name"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
		),
		s.handleGetDisplay,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_display",
			mcp.WithDescription("Add a Samsung display controlled over MDC and connect to it"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Unique display identifier")),
			mcp.WithString("name", mcp.Description("Friendly name (defaults to the id)")),
			mcp.WithString("host", mcp.Required(), mcp.Description("IP address or hostname; serial device path for serial transport")),
			mcp.WithNumber("port", mcp.Description("TCP port (default 1515) or baud rate for serial (default 9600)")),
			mcp.WithNumber("device_id", mcp.Description("MDC display ID 0-254, 254 broadcasts (default 1)"), mcp.Min(0), mcp.Max(254)),
			mcp.WithString("transport", mcp.Description("Transport (default tcp)"), mcp.Enum("tcp", "serial")),
		),
		s.handleAddDisplay,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("rename_display",
			mcp.WithDescription("Change a display's friendly name"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
			mcp.WithString("new_name", mcp.Required(), mcp.Description("New friendly name")),
		),
		s.handleRenameDisplay,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("remove_display",
			mcp.WithDescription("Disconnect a display and delete its configuration"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
		),
		s.handleRemoveDisplay,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("teardown_display",
			mcp.WithDescription("Close a display's connection without deleting it"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
		),
		s.handleTeardownDisplay,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_display_state",
			mcp.WithDescription("Get the last known state of a display (power, volume, input, model, ...)"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
		),
		s.handleGetDisplayState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_display_state",
			mcp.WithDescription("Set several display properties at once. Properties are validated against the display's state schema."),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
			mcp.WithObject("state",
				mcp.Required(),
				mcp.Description("Properties to set (e.g. {\"power\": \"on\", \"volume\": 20, \"input\": \"hdmi1\"})"),
			),
		),
		s.handleSetDisplayState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("submit_command",
			mcp.WithDescription("Submit semantic command text such as \"power on\", \"volume 30\" or the query \"model?\""),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
			mcp.WithString("command", mcp.Required(), mcp.Description("Command text")),
		),
		s.handleSubmitCommand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_variables",
			mcp.WithDescription("Get the display's host variables as strings"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
		),
		s.handleGetVariables,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("power_on",
			mcp.WithDescription("Turn a display on"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
		),
		s.actionHandler("powerOn", nil),
	)

	s.mcpServer.AddTool(
		mcp.NewTool("power_off",
			mcp.WithDescription("Turn a display off"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
		),
		s.actionHandler("powerOff", nil),
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_volume",
			mcp.WithDescription("Set a display's volume"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
			mcp.WithNumber("volume", mcp.Required(), mcp.Description("Volume 0-100"), mcp.Min(0), mcp.Max(100)),
		),
		s.actionHandler("volume", valueArg("volume")),
	)

	inputs := make([]string, 0, len(lfd.Inputs))
	for _, c := range lfd.Inputs {
		inputs = append(inputs, c.ID)
	}
	s.mcpServer.AddTool(
		mcp.NewTool("set_input",
			mcp.WithDescription("Select a display's input source"),
			mcp.WithString("id", mcp.Required(), mcp.Description(idDescription)),
			mcp.WithString("input", mcp.Required(), mcp.Description("Input source"), mcp.Enum(inputs...)),
		),
		s.actionHandler("input", valueArg("input")),
	)
}
