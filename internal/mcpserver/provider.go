// Package mcpserver registers the seven shell tools onto an MCP server and
// exposes it over stdio, SSE, or streamable HTTP. The transport is selected
// once at startup by the caller (see internal/cli) and is opaque to
// the tool handlers themselves.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/kandev/shellmcp/internal/common/logger"
	"github.com/kandev/shellmcp/internal/config"
	"github.com/kandev/shellmcp/internal/supervisor"
)

const serverName = "shellmcp"
const serverVersion = "1.0.0"

// Build constructs the single *server.MCPServer instance shared by every
// transport binding and registers the seven shell_* tools onto it.
func Build(cfg config.Config, sup *supervisor.Supervisor, log *logger.Logger) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	registerTools(mcpServer, cfg, sup, log)
	return mcpServer
}
