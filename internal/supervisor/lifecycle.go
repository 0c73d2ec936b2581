package supervisor

import (
	"os"
	"os/exec"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kandev/shellmcp/internal/tracing"
)

// completionTask waits for both reader goroutines and the child itself, then
// assigns the terminal status: error if a reader failed, terminated if a
// stop was requested, otherwise completed or failed by exit code.
func (s *Supervisor) completionTask(rec *ProcessRecord, readers *sync.WaitGroup, readerErr <-chan error, span trace.Span) {
	readers.Wait()
	err := rec.cmd.Wait()
	close(rec.doneCh)

	readerFailed := false
	for i := 0; i < 2; i++ {
		if e := <-readerErr; e != nil {
			readerFailed = true
		}
	}

	rec.mu.Lock()
	rec.endTime = time.Now()
	switch {
	case readerFailed:
		rec.status = StatusError
		rec.errorMessage = "reader crashed"
	case rec.stopRequested:
		rec.status = StatusTerminated
	case err == nil:
		rec.status = StatusCompleted
		rec.exitCode = 0
	default:
		if exitErr, ok := err.(*exec.ExitError); ok {
			rec.exitCode = exitErr.ExitCode()
		} else {
			rec.exitCode = -1
		}
		rec.status = StatusFailed
	}
	status := rec.status
	exitCode := rec.exitCode
	rec.mu.Unlock()

	tracing.EndProcess(span, string(status), exitCode)
	s.log.WithPID(rec.PID).Info("background process finished",
		zap.String("status", string(status)), zap.Int("exit_code", exitCode))
}

// stopRecord issues a terminate signal (graceful unless force) and, for the
// graceful path, escalates to a forceful kill if the completion task hasn't
// observed exit within the grace window.
func (s *Supervisor) stopRecord(rec *ProcessRecord, force bool) error {
	rec.mu.Lock()
	if rec.status.terminal() {
		rec.mu.Unlock()
		return &validationLikeError{"Process is not running"}
	}
	rec.stopRequested = true
	rec.mu.Unlock()

	if rec.cmd == nil || rec.cmd.Process == nil {
		return nil
	}

	if force {
		tracing.AnnotateStop(rec.span, true, false)
		return rec.cmd.Process.Kill()
	}

	tracing.AnnotateStop(rec.span, false, false)
	if err := rec.cmd.Process.Signal(os.Interrupt); err != nil {
		return rec.cmd.Process.Kill()
	}

	go func() {
		timer := time.NewTimer(defaultGrace)
		defer timer.Stop()
		select {
		case <-rec.doneCh:
		case <-timer.C:
			rec.mu.Lock()
			rec.errorMessage = "escalated to force kill"
			rec.mu.Unlock()
			tracing.AnnotateStop(rec.span, true, true)
			s.log.WithPID(rec.PID).Warn("stop did not exit within grace period, force killing")
			_ = rec.cmd.Process.Kill()
		}
	}()
	return nil
}

// validationLikeError mirrors validator.ValidationError's shape for supervisor
// domain errors so handlers can format both the same way.
type validationLikeError struct{ Reason string }

func (e *validationLikeError) Error() string { return e.Reason }
