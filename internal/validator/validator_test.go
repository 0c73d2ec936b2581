package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allow(cmds ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(cmds))
	for _, c := range cmds {
		set[c] = struct{}{}
	}
	return set
}

func TestValidateEmptyArgv(t *testing.T) {
	_, err := Validate(nil, allow("echo"))
	require.Error(t, err)
	assert.Equal(t, "No command provided", err.Error())
}

func TestValidateAllowedSingleSegment(t *testing.T) {
	segs, err := Validate([]string{"echo", "hi"}, allow("echo"))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, []string{"echo", "hi"}, segs[0].Argv)
}

func TestValidateDisallowedHead(t *testing.T) {
	_, err := Validate([]string{"rm", "-rf", "/"}, allow("ls"))
	require.Error(t, err)
	assert.Equal(t, "Command not allowed: rm", err.Error())
}

func TestValidatePipelineOneDisallowedHead(t *testing.T) {
	_, err := Validate([]string{"cat", "a", "|", "rm", "b"}, allow("cat"))
	require.Error(t, err)
	assert.Equal(t, "Command not allowed: rm", err.Error())
}

func TestValidateEmptySegmentBetweenOperators(t *testing.T) {
	_, err := Validate([]string{"echo", "hi", ";", "&&", "echo", "bye"}, allow("echo"))
	require.Error(t, err)
	assert.Equal(t, "Empty command between shell operators", err.Error())
}

func TestValidateLeadingOperator(t *testing.T) {
	_, err := Validate([]string{";", "echo", "hi"}, allow("echo"))
	require.Error(t, err)
	assert.Equal(t, "Empty command between shell operators", err.Error())
}

func TestValidateTrailingOperator(t *testing.T) {
	_, err := Validate([]string{"echo", "hi", "||"}, allow("echo"))
	require.Error(t, err)
	assert.Equal(t, "Empty command between shell operators", err.Error())
}

func TestValidateEmptyAllowList(t *testing.T) {
	_, err := Validate([]string{"echo", "hi"}, allow())
	require.Error(t, err)
	assert.Equal(t, "Command not allowed: echo", err.Error())
}

func TestValidateMultiSegmentAllPipelines(t *testing.T) {
	segs, err := Validate([]string{"cat", "a", "&&", "grep", "x", "||", "echo", "y", ";", "wc", "-l"},
		allow("cat", "grep", "echo", "wc"))
	require.NoError(t, err)
	require.Len(t, segs, 4)
	assert.Equal(t, "cat", segs[0].Head())
	assert.Equal(t, "grep", segs[1].Head())
	assert.Equal(t, "echo", segs[2].Head())
	assert.Equal(t, "wc", segs[3].Head())
}

func TestValidateRoundTripIdempotent(t *testing.T) {
	argv := []string{"echo", "hi", "|", "cat"}
	allowed := allow("echo", "cat")

	segs1, err := Validate(argv, allowed)
	require.NoError(t, err)

	segs2, err := Validate(argv, allowed)
	require.NoError(t, err)

	assert.Equal(t, segs1, segs2)
}

func TestValidateDirectoryRequiresAbsolute(t *testing.T) {
	err := ValidateDirectory("relative/path")
	require.Error(t, err)
	assert.Equal(t, "Directory is not absolute", err.Error())
}

func TestValidateDirectoryRequiresExisting(t *testing.T) {
	err := ValidateDirectory("/definitely/does/not/exist/anywhere")
	require.Error(t, err)
	assert.Equal(t, "Directory does not exist", err.Error())
}

func TestValidateDirectoryOK(t *testing.T) {
	err := ValidateDirectory(t.TempDir())
	require.NoError(t, err)
}
