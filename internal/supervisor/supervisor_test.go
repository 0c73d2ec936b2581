package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func awaitStatus(t *testing.T, s *Supervisor, pid int64, want Status) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		snap, err := s.Detail(pid)
		require.NoError(t, err)
		if snap.Status == want {
			return snap
		}
		select {
		case <-deadline:
			t.Fatalf("pid %d never reached status %s (last %s)", pid, want, snap.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStartAndCompleteSuccess(t *testing.T) {
	s := New(3600)
	defer s.Close()

	pid, err := s.Start(context.Background(), StartSpec{
		Command:   []string{"/bin/echo", "hello"},
		Directory: "/tmp",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pid)

	snap := awaitStatus(t, s, pid, StatusCompleted)
	assert.Equal(t, 0, snap.ExitCode)
}

func TestStartNonZeroExitIsFailed(t *testing.T) {
	s := New(3600)
	defer s.Close()

	pid, err := s.Start(context.Background(), StartSpec{
		Command:   []string{"/bin/sh", "-c", "exit 7"},
		Directory: "/tmp",
	})
	require.NoError(t, err)
	snap := awaitStatus(t, s, pid, StatusFailed)
	assert.Equal(t, 7, snap.ExitCode)
}

func TestPIDsIncreaseAcrossStarts(t *testing.T) {
	s := New(3600)
	defer s.Close()

	first, err := s.Start(context.Background(), StartSpec{Command: []string{"/bin/echo", "a"}, Directory: "/tmp"})
	require.NoError(t, err)
	second, err := s.Start(context.Background(), StartSpec{Command: []string{"/bin/echo", "b"}, Directory: "/tmp"})
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestStopGraceful(t *testing.T) {
	s := New(3600)
	defer s.Close()

	pid, err := s.Start(context.Background(), StartSpec{
		Command:   []string{"/bin/sleep", "30"},
		Directory: "/tmp",
	})
	require.NoError(t, err)

	require.NoError(t, s.Stop(pid, false))
	snap := awaitStatus(t, s, pid, StatusTerminated)
	assert.Equal(t, StatusTerminated, snap.Status)
}

func TestStopOnMissingPIDErrors(t *testing.T) {
	s := New(3600)
	defer s.Close()
	err := s.Stop(999, false)
	assert.EqualError(t, err, "Process not found")
}

func TestStopOnTerminalPIDErrors(t *testing.T) {
	s := New(3600)
	defer s.Close()

	pid, err := s.Start(context.Background(), StartSpec{Command: []string{"/bin/echo", "x"}, Directory: "/tmp"})
	require.NoError(t, err)
	awaitStatus(t, s, pid, StatusCompleted)

	err = s.Stop(pid, false)
	assert.EqualError(t, err, "Process is not running")
}

func TestListFiltersByStatusAndLabels(t *testing.T) {
	s := New(3600)
	defer s.Close()

	pid, err := s.Start(context.Background(), StartSpec{
		Command:   []string{"/bin/sleep", "30"},
		Directory: "/tmp",
		Labels:    []string{"web", "canary"},
	})
	require.NoError(t, err)

	all := s.List(ListFilter{})
	require.Len(t, all, 1)

	byStatus := s.List(ListFilter{Status: StatusRunning})
	assert.Len(t, byStatus, 1)

	byLabel := s.List(ListFilter{Labels: []string{"web"}})
	assert.Len(t, byLabel, 1)

	byMissingLabel := s.List(ListFilter{Labels: []string{"nope"}})
	assert.Empty(t, byMissingLabel)

	require.NoError(t, s.Stop(pid, true))
}

func TestCleanClassifiesEachPID(t *testing.T) {
	s := New(3600)
	defer s.Close()

	done, err := s.Start(context.Background(), StartSpec{Command: []string{"/bin/echo", "x"}, Directory: "/tmp"})
	require.NoError(t, err)
	awaitStatus(t, s, done, StatusCompleted)

	running, err := s.Start(context.Background(), StartSpec{Command: []string{"/bin/sleep", "30"}, Directory: "/tmp"})
	require.NoError(t, err)

	results := s.Clean([]int64{done, running, 999})
	byPID := map[int64]string{}
	for _, r := range results {
		byPID[r.PID] = r.Result
	}
	assert.Equal(t, "cleaned", byPID[done])
	assert.Equal(t, "still_running", byPID[running])
	assert.Equal(t, "not_found", byPID[999])

	require.NoError(t, s.Stop(running, true))
}

func TestLogsCapturesStdout(t *testing.T) {
	s := New(3600)
	defer s.Close()

	pid, err := s.Start(context.Background(), StartSpec{
		Command:   []string{"/bin/echo", "line one"},
		Directory: "/tmp",
	})
	require.NoError(t, err)
	awaitStatus(t, s, pid, StatusCompleted)

	res, err := s.Logs(pid, LogsFilter{WithStdout: true, LimitLines: 500})
	require.NoError(t, err)
	require.Len(t, res.Stdout, 1)
	assert.Contains(t, res.Stdout[0], "line one")
}
