package mcpserver

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// textBlocks wraps each string as its own TextContent block, in order, for
// tools that return multiple sections (exit header, stdout, stderr, ...).
func textBlocks(blocks []string) *mcp.CallToolResult {
	content := make([]mcp.Content, len(blocks))
	for i, b := range blocks {
		content[i] = mcp.NewTextContent(b)
	}
	return &mcp.CallToolResult{Content: content}
}

// errorBlock renders a single "error: <reason>" TextContent block.
// mcp.NewToolResultError stores its argument verbatim, so the prefix has to
// be added here.
func errorBlock(format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError("error: " + fmt.Sprintf(format, args...))
}
