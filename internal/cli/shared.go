package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kandev/shellmcp/internal/common/logger"
	"github.com/kandev/shellmcp/internal/config"
	"github.com/kandev/shellmcp/internal/supervisor"
	"github.com/kandev/shellmcp/internal/tracing"
	"github.com/kandev/shellmcp/internal/webadmin"
)

// webFlags are shared by sse and http: an optional admin web API bound to
// its own address alongside the MCP transport.
type webFlags struct {
	enabled bool
	host    string
	port    int
}

func addWebFlags(cmd *cobra.Command) *webFlags {
	f := &webFlags{}
	cmd.Flags().BoolVar(&f.enabled, "web", false, "also serve the read-only admin HTTP API")
	cmd.Flags().StringVar(&f.host, "web-host", "127.0.0.1", "admin API bind host")
	cmd.Flags().IntVar(&f.port, "web-port", 9091, "admin API bind port")
	return f
}

func newLoggerOrExit() *logger.Logger {
	log, err := logger.NewLogger(logger.LoggingConfig{
		Level:      "info",
		Format:     "console",
		OutputPath: "stdout",
	})
	if err != nil {
		log = logger.Default()
	}
	return log
}

// startWebAdmin launches the admin API in the background if requested, and
// returns a shutdown func (always safe to call).
func startWebAdmin(f *webFlags, sup *supervisor.Supervisor, log *logger.Logger) func(context.Context) error {
	if !f.enabled {
		return func(context.Context) error { return nil }
	}

	srv := webadmin.New(sup, log)
	addr := fmt.Sprintf("%s:%d", f.host, f.port)
	httpServer := &http.Server{Addr: addr, Handler: srv.Router()}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("failed to start admin web API", zap.Error(err))
		return func(context.Context) error { return nil }
	}

	go func() {
		log.Info("admin web API listening", zap.String("addr", addr))
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("admin web API error", zap.Error(err))
		}
	}()

	return httpServer.Shutdown
}

func buildSupervisor(cfg config.Config, log *logger.Logger) *supervisor.Supervisor {
	sup := supervisor.New(cfg.ProcessRetentionSeconds)
	sup.SetLogger(log)
	return sup
}

func shutdownTracing(log *logger.Logger) {
	if err := tracing.Shutdown(context.Background()); err != nil {
		log.Warn("tracing shutdown error", zap.Error(err))
	}
}
