package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kandev/shellmcp/internal/config"
	"github.com/kandev/shellmcp/internal/mcpserver"
)

func sseCmd() *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "sse",
		Short: "Serve the MCP tools over SSE and streamable HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHTTPTransport(host, port, addWebFlagsFromCmd(cmd))
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "bind host")
	cmd.Flags().IntVar(&port, "port", 9090, "bind port")
	addWebFlags(cmd)
	return cmd
}

func httpCmd() *cobra.Command {
	var host string
	var port int
	var path string
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the MCP tools over streamable HTTP (and SSE on the same port)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHTTPTransportWithPath(host, port, path, addWebFlagsFromCmd(cmd))
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "bind host")
	cmd.Flags().IntVar(&port, "port", 9090, "bind port")
	cmd.Flags().StringVar(&path, "path", "/mcp", "streamable HTTP endpoint path")
	addWebFlags(cmd)
	return cmd
}

// addWebFlagsFromCmd re-parses the flags added by addWebFlags off the
// concrete *cobra.Command so both sse and http can share one runner.
func addWebFlagsFromCmd(cmd *cobra.Command) *webFlags {
	enabled, _ := cmd.Flags().GetBool("web")
	host, _ := cmd.Flags().GetString("web-host")
	port, _ := cmd.Flags().GetInt("web-port")
	return &webFlags{enabled: enabled, host: host, port: port}
}

func runHTTPTransport(host string, port int, web *webFlags) error {
	return runHTTPTransportWithPath(host, port, "/mcp", web)
}

func runHTTPTransportWithPath(host string, port int, path string, web *webFlags) error {
	cfg := config.Load()
	log := newLoggerOrExit()
	defer func() { _ = log.Sync() }()
	defer shutdownTracing(log)

	sup := buildSupervisor(cfg, log)
	defer sup.Close()

	stopWeb := startWebAdmin(web, sup, log)

	srv := mcpserver.New(mcpserver.HTTPConfig{Host: host, Port: port, StreamPath: path}, cfg, sup, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("mcp server shutdown error", zap.Error(err))
	}
	if err := stopWeb(shutdownCtx); err != nil {
		log.Warn("admin web API shutdown error", zap.Error(err))
	}
	return nil
}
