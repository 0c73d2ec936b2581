// Command shellmcp-server runs a secure command-execution server that
// exposes shell_execute and the shell_bg_* background process lifecycle
// over the Model Context Protocol.
package main

import "github.com/kandev/shellmcp/internal/cli"

func main() {
	cli.Execute()
}
