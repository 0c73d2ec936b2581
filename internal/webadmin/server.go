// Package webadmin exposes a read-mostly HTTP view over the supervisor's
// process registry: listing, detail, output, stop and clean, all backed by
// the same *supervisor.Supervisor the MCP tools use.
package webadmin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kandev/shellmcp/internal/common/httpmw"
	"github.com/kandev/shellmcp/internal/common/logger"
	"github.com/kandev/shellmcp/internal/supervisor"
)

// Server is the admin HTTP API.
type Server struct {
	sup    *supervisor.Supervisor
	logger *logger.Logger
	router *gin.Engine
}

// New builds the admin router over sup. gin runs in release mode; this
// server is not meant to carry development-only middleware.
func New(sup *supervisor.Supervisor, log *logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		sup:    sup,
		logger: log.WithFields(zap.String("component", "webadmin")),
		router: gin.New(),
	}
	s.setupRoutes()
	return s
}

// Router returns the HTTP handler to mount or listen on directly.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(httpmw.RequestLogger(s.logger, "webadmin"))
	s.router.Use(httpmw.OtelTracing("webadmin"))

	s.router.GET("/api/processes", s.handleList)
	s.router.GET("/api/process/:pid", s.handleDetail)
	s.router.GET("/api/process/:pid/output", s.handleOutput)
	s.router.POST("/api/process/:pid/stop", s.handleStop)
	s.router.POST("/api/process/:pid/clean", s.handleClean)
}
