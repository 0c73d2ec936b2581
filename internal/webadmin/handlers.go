package webadmin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kandev/shellmcp/internal/supervisor"
)

func pidParam(c *gin.Context) (int64, bool) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pid must be an integer"})
		return 0, false
	}
	return pid, true
}

// GET /api/processes?status=
func (s *Server) handleList(c *gin.Context) {
	filter := supervisor.ListFilter{
		Status: supervisor.Status(c.Query("status")),
	}
	records := s.sup.List(filter)
	c.JSON(http.StatusOK, gin.H{"processes": records})
}

// GET /api/process/:pid
func (s *Server) handleDetail(c *gin.Context) {
	pid, ok := pidParam(c)
	if !ok {
		return
	}
	snap, err := s.sup.Detail(pid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GET /api/process/:pid/output?tail=&stderr=
func (s *Server) handleOutput(c *gin.Context) {
	pid, ok := pidParam(c)
	if !ok {
		return
	}
	tail, _ := strconv.Atoi(c.DefaultQuery("tail", "0"))
	withStderr := c.DefaultQuery("stderr", "false") == "true"

	res, err := s.sup.Logs(pid, supervisor.LogsFilter{
		Tail:          tail,
		WithStdout:    !withStderr,
		WithStderr:    withStderr,
		AddTimePrefix: true,
		FollowSeconds: 0,
		LimitLines:    500,
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if withStderr {
		c.JSON(http.StatusOK, gin.H{"lines": res.Stderr})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": res.Stdout})
}

type stopRequest struct {
	Force bool `json:"force"`
}

// POST /api/process/:pid/stop
func (s *Server) handleStop(c *gin.Context) {
	pid, ok := pidParam(c)
	if !ok {
		return
	}
	var req stopRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.sup.Stop(pid, req.Force); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/process/:pid/clean
func (s *Server) handleClean(c *gin.Context) {
	pid, ok := pidParam(c)
	if !ok {
		return
	}
	results := s.sup.Clean([]int64{pid})
	c.JSON(http.StatusOK, gin.H{"result": results[0].Result})
}
