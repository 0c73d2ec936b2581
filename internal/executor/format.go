package executor

import (
	"fmt"

	"github.com/kandev/shellmcp/internal/textio"
)

// FormatBlocks renders a Result as the ordered text blocks shell_execute
// returns: an exit-status header, then stdout and stderr sections (each
// omitted when empty), each clamped to limitLines.
func FormatBlocks(res Result, limitLines int) []string {
	if res.SpawnError != nil {
		return []string{fmt.Sprintf("error: %s", res.SpawnError)}
	}

	blocks := []string{fmt.Sprintf("**exit with %d**", res.ExitCode)}
	if res.Stdout != "" {
		blocks = append(blocks, section("stdout", res.Stdout, limitLines))
	}
	if res.Stderr != "" {
		blocks = append(blocks, section("stderr", res.Stderr, limitLines))
	}
	return blocks
}

func section(name, text string, limitLines int) string {
	lines := textio.ClampLines(textio.SplitLines(text), limitLines)
	clamped := ""
	for i, line := range lines {
		if i > 0 {
			clamped += "\n"
		}
		clamped += line
	}
	return fmt.Sprintf("---\n%s:\n---\n%s", name, clamped)
}
