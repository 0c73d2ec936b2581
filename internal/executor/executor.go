package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kandev/shellmcp/internal/textio"
	"github.com/kandev/shellmcp/internal/tracing"
)

const (
	defaultTimeoutSeconds = 15
	killGrace             = time.Second
)

// Run spawns req.Command directly (argv exactly as given, never through a
// shell) and blocks until it exits or the timeout elapses. Validation of the
// command and directory is the caller's responsibility; Run assumes both
// were already checked against the configured allow-list.
func Run(ctx context.Context, req Request) Result {
	timeout := resolveTimeout(req)

	_, span := tracing.StartExecution(ctx, req.Command[0], int(timeout/time.Second))

	cmd := exec.Command(req.Command[0], req.Command[1:]...)
	cmd.Dir = req.Directory
	cmd.Env = overlayEnv(os.Environ(), req.Envs)

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		tracing.EndExecution(span, string(StatusError), -1, err)
		return Result{ExitCode: -1, Status: StatusError, SpawnError: err}
	}
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	start := time.Now()
	if err := cmd.Start(); err != nil {
		tracing.EndExecution(span, string(StatusError), -1, err)
		return Result{ExitCode: -1, Status: StatusError, SpawnError: err}
	}

	var g errgroup.Group
	g.Go(func() error {
		defer stdinPipe.Close()
		if req.HasStdin {
			_, err := stdinPipe.Write([]byte(req.Stdin))
			return err
		}
		return nil
	})

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	timedOut := false
	var exitErr error
	if timeout <= 0 {
		// An explicit zero timeout means immediate timeout: signal the child
		// without ever racing its normal completion.
		timedOut = true
		if cmd.Process != nil {
			_ = cmd.Process.Signal(os.Interrupt)
		}
		select {
		case exitErr = <-waitErr:
		case <-time.After(killGrace):
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			exitErr = <-waitErr
		}
	} else {
		select {
		case exitErr = <-waitErr:
		case <-time.After(timeout):
			timedOut = true
			if cmd.Process != nil {
				_ = cmd.Process.Signal(os.Interrupt)
			}
			select {
			case exitErr = <-waitErr:
			case <-time.After(killGrace):
				if cmd.Process != nil {
					_ = cmd.Process.Kill()
				}
				exitErr = <-waitErr
			}
		}
	}
	_ = g.Wait()

	result := buildResult(req, timeout, &stdoutBuf, &stderrBuf, start, exitErr, timedOut)
	tracing.EndExecution(span, string(result.Status), result.ExitCode, result.SpawnError)
	return result
}

// resolveTimeout applies the default only when the caller never supplied a
// timeout at all; an explicit zero (or negative) timeout is preserved so it
// produces an immediate timeout instead of silently falling back to the
// default.
func resolveTimeout(req Request) time.Duration {
	if !req.HasTimeout {
		return defaultTimeoutSeconds * time.Second
	}
	if req.Timeout < 0 {
		return 0
	}
	return req.Timeout
}

func buildResult(req Request, timeout time.Duration, stdoutBuf, stderrBuf *bytes.Buffer, start time.Time, waitErr error, timedOut bool) Result {
	elapsed := time.Since(start)

	enc, encErr := textio.ResolveEncoding(req.Encoding)
	var stdout, stderr string
	if encErr == nil {
		stdout = textio.Decode(enc, stdoutBuf.Bytes())
		stderr = textio.Decode(enc, stderrBuf.Bytes())
	} else {
		stdout = stdoutBuf.String()
		stderr = stderrBuf.String()
	}

	exitCode := 0
	status := StatusSuccess
	var spawnErr error

	switch {
	case timedOut:
		exitCode = -1
		status = StatusTimeout
		stderr += fmt.Sprintf("Command timed out after %ds", int(timeout/time.Second))
	case waitErr != nil:
		if exitError, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitError.ExitCode()
			status = StatusFailure
		} else {
			exitCode = -1
			status = StatusError
			spawnErr = waitErr
		}
	}

	return Result{
		ExitCode:      exitCode,
		Stdout:        stdout,
		Stderr:        stderr,
		ExecutionTime: elapsed,
		Status:        status,
		SpawnError:    spawnErr,
	}
}

// overlayEnv starts from base (typically os.Environ()) and replaces any key
// already present with the value from overlay, appending keys that are not.
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
