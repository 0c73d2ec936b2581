// Package cli assembles the shellmcp-server command tree: stdio (the
// default with no subcommand), sse, and http. sse and http can each be
// paired with the admin web API (read queries plus stop and clean).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "shellmcp-server",
	Short: "A secure command-execution server exposed over MCP",
	Long: "shellmcp-server runs an allow-listed command executor behind the Model Context " +
		"Protocol: a synchronous shell_execute tool and a background process lifecycle " +
		"(shell_bg_start/list/stop/logs/clean/detail). Commands are always run directly " +
		"(no shell interpolation).",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStdio(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(stdioCmd())
	rootCmd.AddCommand(sseCmd())
	rootCmd.AddCommand(httpCmd())
	rootCmd.AddCommand(versionCmd())
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("shellmcp-server " + Version)
		},
	}
}

// Execute runs the root cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
