package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kandev/shellmcp/internal/common/logger"
	"github.com/kandev/shellmcp/internal/config"
	"github.com/kandev/shellmcp/internal/supervisor"
)

// HTTPConfig configures the SSE and streamable-HTTP transport bindings.
type HTTPConfig struct {
	Host       string
	Port       int
	StreamPath string // streamable HTTP endpoint, default "/mcp"
}

// Server wraps the SSE and streamable HTTP transports over one shared
// *server.MCPServer, with lifecycle management (Start/Stop).
type Server struct {
	httpCfg              HTTPConfig
	sseServer            *server.SSEServer
	streamableHTTPServer *server.StreamableHTTPServer
	httpServer           *http.Server
	mu                   sync.Mutex
	running              bool
	logger               *logger.Logger
	addr                 net.Addr
}

// New wires a Server over the shared MCP server built from cfg/sup/log.
func New(httpCfg HTTPConfig, cfg config.Config, sup *supervisor.Supervisor, log *logger.Logger) *Server {
	if httpCfg.StreamPath == "" {
		httpCfg.StreamPath = "/mcp"
	}
	mcpServer := Build(cfg, sup, log)

	s := &Server{
		httpCfg: httpCfg,
		logger:  log.WithFields(zap.String("component", "mcp-server")),
	}
	s.sseServer = server.NewSSEServer(mcpServer)
	s.streamableHTTPServer = server.NewStreamableHTTPServer(mcpServer,
		server.WithEndpointPath(httpCfg.StreamPath),
	)
	return s
}

// Start listens on httpCfg.Host:Port and serves SSE (/sse, /message) and
// streamable HTTP (StreamPath) on the same port.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.Handle("/sse", s.sseServer.SSEHandler())
	mux.Handle("/message", s.sseServer.MessageHandler())
	mux.Handle(s.httpCfg.StreamPath, s.streamableHTTPServer)

	addr := fmt.Sprintf("%s:%d", s.httpCfg.Host, s.httpCfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.addr = listener.Addr()
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.httpCfg.Port = tcpAddr.Port
	}

	s.httpServer = &http.Server{Handler: mux}

	ready := make(chan struct{})
	go func() {
		s.mu.Lock()
		s.running = true
		s.mu.Unlock()
		close(ready)

		s.logger.Info("MCP server listening",
			zap.String("addr", addr),
			zap.String("sse_endpoint", "/sse"),
			zap.String("streamable_http_endpoint", s.httpCfg.StreamPath))

		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("MCP server error", zap.Error(err))
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop gracefully shuts down both transports.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}
	if s.sseServer != nil {
		if err := s.sseServer.Shutdown(ctx); err != nil {
			s.logger.Warn("failed to shutdown SSE server", zap.Error(err))
		}
	}
	if s.streamableHTTPServer != nil {
		if err := s.streamableHTTPServer.Shutdown(ctx); err != nil {
			s.logger.Warn("failed to shutdown streamable HTTP server", zap.Error(err))
		}
	}
	return nil
}

// Addr returns the bound listener address once Start has returned.
func (s *Server) Addr() net.Addr {
	return s.addr
}
