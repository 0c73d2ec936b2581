package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kandev/shellmcp/internal/common/logger"
	"github.com/kandev/shellmcp/internal/config"
	"github.com/kandev/shellmcp/internal/executor"
	"github.com/kandev/shellmcp/internal/supervisor"
	"github.com/kandev/shellmcp/internal/validator"
)

const defaultLimitLines = 500

func registerTools(s *server.MCPServer, cfg config.Config, sup *supervisor.Supervisor, log *logger.Logger) {
	s.AddTool(
		mcp.NewTool("shell_execute",
			mcp.WithDescription("Run a command synchronously and return its exit status and captured output. The command is executed directly (no shell interpolation, no pipes or redirection performed by a shell)."),
			mcp.WithArray("command", mcp.Required(), mcp.Description("Argument vector: the executable followed by its arguments")),
			mcp.WithString("directory", mcp.Required(), mcp.Description("Absolute working directory the command runs in")),
			mcp.WithString("stdin", mcp.Description("Text written to the command's stdin before it is closed")),
			mcp.WithNumber("timeout", mcp.Description("Seconds to wait before terminating the command (default 15)")),
			mcp.WithString("encoding", mcp.Description("IANA charset name used to decode stdout/stderr (default utf-8)")),
			mcp.WithObject("envs", mcp.Description("Environment variables overlaid onto the parent environment")),
			mcp.WithNumber("limit_lines", mcp.Description("Maximum output lines retained per stream (default 500)")),
		),
		shellExecuteHandler(cfg),
	)

	s.AddTool(
		mcp.NewTool("shell_bg_start",
			mcp.WithDescription("Start a command in the background and return its pid immediately, without waiting for completion."),
			mcp.WithArray("command", mcp.Required(), mcp.Description("Argument vector: the executable followed by its arguments")),
			mcp.WithString("directory", mcp.Required(), mcp.Description("Absolute working directory the command runs in")),
			mcp.WithString("description", mcp.Required(), mcp.Description("Human-readable description of what this process does")),
			mcp.WithArray("labels", mcp.Description("Free-form labels used to filter shell_bg_list results")),
			mcp.WithString("stdin", mcp.Description("Text written to the command's stdin before it is closed")),
			mcp.WithObject("envs", mcp.Description("Environment variables overlaid onto the parent environment")),
			mcp.WithString("encoding", mcp.Description("IANA charset name used to decode stdout/stderr (default utf-8)")),
			mcp.WithNumber("timeout", mcp.Description("Seconds after which the process is terminated by a watchdog; omit for no limit")),
		),
		shellBgStartHandler(cfg, sup),
	)

	s.AddTool(
		mcp.NewTool("shell_bg_list",
			mcp.WithDescription("List background processes, most recently started last."),
			mcp.WithArray("labels", mcp.Description("Only include processes carrying every one of these labels")),
			mcp.WithString("status", mcp.Description("Only include processes in this status: running, completed, failed, terminated, error")),
		),
		shellBgListHandler(sup),
	)

	s.AddTool(
		mcp.NewTool("shell_bg_stop",
			mcp.WithDescription("Request termination of a background process. Returns immediately; the process transitions to terminated once it actually exits."),
			mcp.WithNumber("pid", mcp.Required(), mcp.Description("The pid returned by shell_bg_start")),
			mcp.WithBoolean("force", mcp.Description("Kill immediately instead of signaling gracefully first (default false)")),
		),
		shellBgStopHandler(sup),
	)

	s.AddTool(
		mcp.NewTool("shell_bg_logs",
			mcp.WithDescription("Fetch captured stdout/stderr for a background process, optionally waiting briefly for more output."),
			mcp.WithNumber("pid", mcp.Required(), mcp.Description("The pid returned by shell_bg_start")),
			mcp.WithNumber("tail", mcp.Description("Keep only the last N lines of each requested stream (0 = all)")),
			mcp.WithString("since", mcp.Description("RFC3339 timestamp; drop lines logged before it")),
			mcp.WithString("until", mcp.Description("RFC3339 timestamp; drop lines logged after it")),
			mcp.WithBoolean("with_stdout", mcp.Description("Include the stdout section (default true)")),
			mcp.WithBoolean("with_stderr", mcp.Description("Include the stderr section (default false)")),
			mcp.WithBoolean("add_time_prefix", mcp.Description("Prefix each line with its timestamp (default true)")),
			mcp.WithString("time_prefix_format", mcp.Description("strftime-style format for the time prefix")),
			mcp.WithNumber("follow_seconds", mcp.Description("Wait up to this many seconds for new output if the process is still running (default 1)")),
			mcp.WithNumber("limit_lines", mcp.Description("Maximum output lines retained per stream (default 500)")),
		),
		shellBgLogsHandler(sup),
	)

	s.AddTool(
		mcp.NewTool("shell_bg_clean",
			mcp.WithDescription("Remove terminal background process records from the registry. Running processes are never removed."),
			mcp.WithArray("pids", mcp.Required(), mcp.Description("pids to remove")),
		),
		shellBgCleanHandler(sup),
	)

	s.AddTool(
		mcp.NewTool("shell_bg_detail",
			mcp.WithDescription("Get the full status record for one background process. Does not return log content; use shell_bg_logs for that."),
			mcp.WithNumber("pid", mcp.Required(), mcp.Description("The pid returned by shell_bg_start")),
		),
		shellBgDetailHandler(sup),
	)

	log.Info("registered MCP tools", zap.Int("count", 7))
}

func validateCommandAndDirectory(cfg config.Config, argv []string, directory string) error {
	if _, err := validator.Validate(argv, cfg.AllowedCommands); err != nil {
		return err
	}
	return validator.ValidateDirectory(directory)
}

func shellExecuteHandler(cfg config.Config) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		command, err := stringArray(args, "command")
		if err != nil {
			return errorBlock("%s", err), nil
		}
		directory, err := req.RequireString("directory")
		if err != nil {
			return errorBlock("%s", err), nil
		}

		if err := validateCommandAndDirectory(cfg, command, directory); err != nil {
			return errorBlock("%s", err), nil
		}

		limitLines := int(req.GetFloat("limit_lines", defaultLimitLines))
		stdin := req.GetString("stdin", "")
		_, hasStdin := args["stdin"]
		_, hasTimeout := args["timeout"]
		timeout := time.Duration(req.GetFloat("timeout", 0)) * time.Second

		res := executor.Run(ctx, executor.Request{
			Command:    command,
			Directory:  directory,
			Stdin:      stdin,
			HasStdin:   hasStdin,
			Timeout:    timeout,
			HasTimeout: hasTimeout,
			Encoding:   req.GetString("encoding", cfg.DefaultEncoding),
			Envs:       mergeEnvs(cfg.ShellEnv(), stringMap(args, "envs")),
			LimitLines: limitLines,
		})

		return textBlocks(executor.FormatBlocks(res, limitLines)), nil
	}
}

func shellBgStartHandler(cfg config.Config, sup *supervisor.Supervisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		command, err := stringArray(args, "command")
		if err != nil {
			return errorBlock("%s", err), nil
		}
		directory, err := req.RequireString("directory")
		if err != nil {
			return errorBlock("%s", err), nil
		}
		description, err := req.RequireString("description")
		if err != nil {
			return errorBlock("%s", err), nil
		}

		if err := validateCommandAndDirectory(cfg, command, directory); err != nil {
			return errorBlock("%s", err), nil
		}

		stdin := req.GetString("stdin", "")
		_, hasStdin := args["stdin"]
		var timeout time.Duration
		if _, ok := args["timeout"]; ok {
			timeout = time.Duration(req.GetFloat("timeout", 0)) * time.Second
		}

		pid, err := sup.Start(ctx, supervisor.StartSpec{
			Command:     command,
			Directory:   directory,
			Description: description,
			Labels:      optionalStringArray(args, "labels"),
			Stdin:       stdin,
			HasStdin:    hasStdin,
			Envs:        mergeEnvs(cfg.ShellEnv(), stringMap(args, "envs")),
			Encoding:    req.GetString("encoding", cfg.DefaultEncoding),
			Timeout:     timeout,
		})
		if err != nil {
			return errorBlock("%s", err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("pid=%d", pid)), nil
	}
}

func shellBgListHandler(sup *supervisor.Supervisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		filter := supervisor.ListFilter{
			Labels: optionalStringArray(args, "labels"),
			Status: supervisor.Status(req.GetString("status", "")),
		}
		records := sup.List(filter)
		if len(records) == 0 {
			return mcp.NewToolResultText("no background processes"), nil
		}

		var b strings.Builder
		for _, r := range records {
			fmt.Fprintf(&b, "pid=%d status=%s description=%q labels=%v command=%v\n",
				r.PID, r.Status, r.Description, r.Labels, r.Command)
		}
		return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
	}
}

func shellBgStopHandler(sup *supervisor.Supervisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pid := int64(req.GetFloat("pid", 0))
		force := req.GetBool("force", false)
		if err := sup.Stop(pid, force); err != nil {
			return errorBlock("%s", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("stop requested for pid=%d", pid)), nil
	}
}

func shellBgLogsHandler(sup *supervisor.Supervisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pid := int64(req.GetFloat("pid", 0))

		filter := supervisor.LogsFilter{
			Tail:             int(req.GetFloat("tail", 0)),
			WithStdout:       req.GetBool("with_stdout", true),
			WithStderr:       req.GetBool("with_stderr", false),
			AddTimePrefix:    req.GetBool("add_time_prefix", true),
			TimePrefixFormat: req.GetString("time_prefix_format", ""),
			FollowSeconds:    int(req.GetFloat("follow_seconds", 1)),
			LimitLines:       int(req.GetFloat("limit_lines", defaultLimitLines)),
		}
		if since := req.GetString("since", ""); since != "" {
			if t, err := time.Parse(time.RFC3339, since); err == nil {
				filter.Since = t
			}
		}
		if until := req.GetString("until", ""); until != "" {
			if t, err := time.Parse(time.RFC3339, until); err == nil {
				filter.Until = t
			}
		}

		res, err := sup.Logs(pid, filter)
		if err != nil {
			return errorBlock("%s", err), nil
		}

		blocks := []string{res.Header}
		if filter.WithStdout {
			blocks = append(blocks, "---\nstdout:\n---\n"+strings.Join(res.Stdout, "\n"))
		}
		if filter.WithStderr {
			blocks = append(blocks, "---\nstderr:\n---\n"+strings.Join(res.Stderr, "\n"))
		}
		return textBlocks(blocks), nil
	}
}

func shellBgCleanHandler(sup *supervisor.Supervisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		pids, err := int64Array(args, "pids")
		if err != nil {
			return errorBlock("%s", err), nil
		}

		results := sup.Clean(pids)
		var cleaned, running, missing []string
		for _, r := range results {
			switch r.Result {
			case "cleaned":
				cleaned = append(cleaned, fmt.Sprintf("%d", r.PID))
			case "still_running":
				running = append(running, fmt.Sprintf("%d", r.PID))
			default:
				missing = append(missing, fmt.Sprintf("%d", r.PID))
			}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "cleaned: %s\n", strings.Join(cleaned, ", "))
		fmt.Fprintf(&b, "still running (not removed): %s\n", strings.Join(running, ", "))
		fmt.Fprintf(&b, "not found: %s", strings.Join(missing, ", "))
		return mcp.NewToolResultText(b.String()), nil
	}
}

func shellBgDetailHandler(sup *supervisor.Supervisor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pid := int64(req.GetFloat("pid", 0))
		snap, err := sup.Detail(pid)
		if err != nil {
			return errorBlock("%s", err), nil
		}

		now := time.Now()
		dur := snap.EndTime.Sub(snap.StartTime)
		if snap.Status == supervisor.StatusRunning {
			dur = now.Sub(snap.StartTime)
		}

		text := fmt.Sprintf(
			"pid: %d\nstatus: %s\ncommand: %v\ndescription: %s\nlabels: %v\ndirectory: %s\nstart_time: %s\nend_time: %s\nduration: %s\nexit_code: %d\n(log content is not inlined here; use shell_bg_logs)",
			snap.PID, snap.Status, snap.Command, snap.Description, snap.Labels, snap.Directory,
			snap.StartTime.Format(time.RFC3339), formatEndTime(snap), dur, snap.ExitCode,
		)
		if snap.ErrorMessage != "" {
			text += fmt.Sprintf("\nerror_message: %s", snap.ErrorMessage)
		}
		return mcp.NewToolResultText(text), nil
	}
}

func formatEndTime(snap supervisor.Snapshot) string {
	if snap.EndTime.IsZero() {
		return "-"
	}
	return snap.EndTime.Format(time.RFC3339)
}
