package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/kandev/shellmcp/internal/common/logger"
	"github.com/kandev/shellmcp/internal/config"
	"github.com/kandev/shellmcp/internal/supervisor"
)

// ServeStdio runs the shared MCP server over stdio. It blocks until the
// client closes the stream or the process receives a shutdown signal.
func ServeStdio(cfg config.Config, sup *supervisor.Supervisor, log *logger.Logger) error {
	mcpServer := Build(cfg, sup, log)
	return server.ServeStdio(mcpServer)
}
