package cli

import (
	"github.com/spf13/cobra"

	"github.com/kandev/shellmcp/internal/config"
	"github.com/kandev/shellmcp/internal/mcpserver"
)

func stdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve the MCP tools over stdio (the default transport)",
		RunE:  runStdio,
	}
}

func runStdio(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := newLoggerOrExit()
	defer func() { _ = log.Sync() }()
	defer shutdownTracing(log)

	sup := buildSupervisor(cfg, log)
	defer sup.Close()

	return mcpserver.ServeStdio(cfg, sup, log)
}
