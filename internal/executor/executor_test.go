package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	res := Run(context.Background(), Request{
		Command:   []string{"/bin/echo", "hi"},
		Directory: "/tmp",
	})
	require.NoError(t, res.SpawnError)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hi\n", res.Stdout)
}

func TestRunNonZeroExitIsFailure(t *testing.T) {
	res := Run(context.Background(), Request{
		Command:   []string{"/bin/sh", "-c", "exit 3"},
		Directory: "/tmp",
	})
	assert.Equal(t, StatusFailure, res.Status)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunWritesStdin(t *testing.T) {
	res := Run(context.Background(), Request{
		Command:   []string{"/bin/cat"},
		Directory: "/tmp",
		Stdin:     "hello",
		HasStdin:  true,
	})
	assert.Equal(t, "hello", res.Stdout)
}

func TestRunTimeoutKillsChild(t *testing.T) {
	res := Run(context.Background(), Request{
		Command:    []string{"/bin/sleep", "5"},
		Directory:  "/tmp",
		Timeout:    50 * time.Millisecond,
		HasTimeout: true,
	})
	assert.Equal(t, StatusTimeout, res.Status)
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, res.Stderr, "Command timed out after")
}

func TestRunOverlaysEnv(t *testing.T) {
	res := Run(context.Background(), Request{
		Command:   []string{"/bin/sh", "-c", "echo $FOO"},
		Directory: "/tmp",
		Envs:      map[string]string{"FOO": "bar"},
	})
	assert.Equal(t, "bar\n", res.Stdout)
}

func TestRunSpawnErrorOnMissingExecutable(t *testing.T) {
	res := Run(context.Background(), Request{
		Command:   []string{"/no/such/executable"},
		Directory: "/tmp",
	})
	assert.Error(t, res.SpawnError)
	assert.Equal(t, StatusError, res.Status)
}

func TestFormatBlocksOmitsEmptyStreams(t *testing.T) {
	blocks := FormatBlocks(Result{ExitCode: 0}, 500)
	assert.Equal(t, []string{"**exit with 0**"}, blocks)
}

func TestFormatBlocksIncludesNonEmptyStreams(t *testing.T) {
	blocks := FormatBlocks(Result{ExitCode: 1, Stdout: "out\n", Stderr: "err\n"}, 500)
	require.Len(t, blocks, 3)
	assert.Equal(t, "**exit with 1**", blocks[0])
	assert.Equal(t, "---\nstdout:\n---\nout", blocks[1])
	assert.Equal(t, "---\nstderr:\n---\nerr", blocks[2])
}

func TestFormatBlocksSpawnErrorIsSingleBlock(t *testing.T) {
	blocks := FormatBlocks(Result{SpawnError: assertErr("boom")}, 500)
	assert.Equal(t, []string{"error: boom"}, blocks)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
