// Package supervisor owns the registry of background processes started by
// shell_bg_start and the lifecycle operations (list, stop, logs, clean,
// detail) the other shell_bg_* tools expose.
package supervisor

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kandev/shellmcp/internal/common/logger"
	"github.com/kandev/shellmcp/internal/textio"
	"github.com/kandev/shellmcp/internal/tracing"
	"github.com/kandev/shellmcp/internal/validator"
)

// StartSpec is the shell_bg_start argument record, with its command and
// directory already validated by the caller.
type StartSpec struct {
	Command     []string
	Directory   string
	Description string
	Labels      []string
	Stdin       string
	HasStdin    bool
	Envs        map[string]string
	Encoding    string
	Timeout     time.Duration // 0 disables the watchdog
}

const defaultGrace = 5 * time.Second

// Supervisor owns the process registry. All exported methods except
// SetLogger are safe for concurrent use.
type Supervisor struct {
	retentionSeconds int
	log              *logger.Logger

	mu      sync.Mutex
	records map[int64]*ProcessRecord
	nextPID atomic.Int64

	stopSweep chan struct{}
}

// New constructs a Supervisor and starts its retention sweep. Logging uses
// logger.Default() until SetLogger is called.
func New(retentionSeconds int) *Supervisor {
	s := &Supervisor{
		retentionSeconds: retentionSeconds,
		log:              logger.Default(),
		records:          make(map[int64]*ProcessRecord),
		stopSweep:        make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// SetLogger replaces the Supervisor's logger. Not safe to call concurrently
// with Start; intended for one-time wiring at startup.
func (s *Supervisor) SetLogger(log *logger.Logger) {
	s.log = log
}

// Close stops the background retention sweep. It does not touch running
// processes.
func (s *Supervisor) Close() {
	close(s.stopSweep)
}

// Start validates the encoding, spawns the child directly (no shell), and
// returns its pid immediately; the caller never waits for completion.
func (s *Supervisor) Start(ctx context.Context, spec StartSpec) (int64, error) {
	if err := validator.ValidateDirectory(spec.Directory); err != nil {
		return 0, err
	}
	enc, err := textio.ResolveEncoding(spec.Encoding)
	if err != nil {
		return 0, err
	}

	pid := s.nextPID.Add(1)

	labels := make(map[string]struct{}, len(spec.Labels))
	for _, l := range spec.Labels {
		labels[l] = struct{}{}
	}

	rec := &ProcessRecord{
		PID:         pid,
		Command:     append([]string(nil), spec.Command...),
		Directory:   spec.Directory,
		Description: spec.Description,
		Labels:      labels,
		StdoutLog:   NewLogBuffer(),
		StderrLog:   NewLogBuffer(),
		status:      StatusRunning,
		startTime:   time.Now(),
		doneCh:      make(chan struct{}),
	}

	cmd := exec.Command(spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Directory
	cmd.Env = overlayEnv(os.Environ(), spec.Envs)

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return 0, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return 0, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return 0, err
	}

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	rec.cmd = cmd

	go func() {
		defer stdinPipe.Close()
		if spec.HasStdin {
			_, _ = stdinPipe.Write([]byte(spec.Stdin))
		}
	}()

	_, span := tracing.StartProcess(ctx, pid, spec.Command[0])
	rec.span = span

	var readers sync.WaitGroup
	readerErr := make(chan error, 2)
	readers.Add(2)
	go readStream(&readers, stdoutPipe, rec.StdoutLog, enc, readerErr)
	go readStream(&readers, stderrPipe, rec.StderrLog, enc, readerErr)

	s.mu.Lock()
	s.records[pid] = rec
	s.mu.Unlock()

	if spec.Timeout > 0 {
		go s.watchdog(rec, spec.Timeout)
	}

	s.log.WithPID(pid).Info("background process started",
		zap.String("description", spec.Description), zap.Strings("command", spec.Command))

	go s.completionTask(rec, &readers, readerErr, span)

	return pid, nil
}

func (s *Supervisor) watchdog(rec *ProcessRecord, timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-timer.C:
		if rec.getStatus() == StatusRunning {
			_ = s.stopRecord(rec, false)
		}
	case <-rec.doneCh:
	}
}

// overlayEnv starts from base and replaces any key already present with the
// value from overlay, appending keys that are not.
func overlayEnv(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return base
	}
	seen := make(map[string]bool, len(overlay))
	out := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		key, _, found := strings.Cut(kv, "=")
		if found {
			if v, ok := overlay[key]; ok {
				out = append(out, key+"="+v)
				seen[key] = true
				continue
			}
		}
		out = append(out, kv)
	}
	for k, v := range overlay {
		if !seen[k] {
			out = append(out, k+"="+v)
		}
	}
	return out
}
