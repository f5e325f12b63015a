package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/urmzd/lfdctl/pkg/device"
	"github.com/urmzd/lfdctl/pkg/device/schema"
)

// Displays is the controller surface the tools drive.
type Displays interface {
	device.Controller
	RunAction(ctx context.Context, id, action string, values map[string]any) (string, error)
	Variables(ctx context.Context, id string) (map[string]string, error)
}

// Server wraps the MCP server with display control tools
type Server struct {
	mcpServer *server.MCPServer
	displays  Displays
	validator *schema.Validator
}

// NewServer creates a new MCP server for display control
func NewServer(displays Displays, validator *schema.Validator, version string) *Server {
	s := &Server{
		displays:  displays,
		validator: validator,
	}

	s.mcpServer = server.NewMCPServer(
		"lfdctl",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
