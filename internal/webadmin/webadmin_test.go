package webadmin

import (
	"context"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandev/shellmcp/internal/common/logger"
	"github.com/kandev/shellmcp/internal/supervisor"
)

func newTestServer(t *testing.T) (*Server, *supervisor.Supervisor) {
	t.Helper()
	sup := supervisor.New(3600)
	t.Cleanup(sup.Close)
	return New(sup, logger.Default()), sup
}

func TestHandleListEmpty(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/api/processes", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "processes")
}

func TestHandleDetailNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/api/process/999", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, 404, rec.Code)
}

func TestHandleDetailFound(t *testing.T) {
	srv, sup := newTestServer(t)
	pid, err := sup.Start(context.Background(), supervisor.StartSpec{
		Command:   []string{"/bin/echo", "hi"},
		Directory: "/tmp",
	})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	req := httptest.NewRequest("GET", "/api/process/"+strconv.FormatInt(pid, 10), nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code)
}
