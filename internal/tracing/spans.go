package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func shellTracer() trace.Tracer {
	return Tracer("shellmcp")
}

// StartExecution opens a span for one shell_execute call. commandHead is the
// first token of the validated command. It never carries the full argv or
// any environment value, which may carry secrets.
func StartExecution(ctx context.Context, commandHead string, timeoutSeconds int) (context.Context, trace.Span) {
	ctx, span := shellTracer().Start(ctx, "executor.run", trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.String("command_head", commandHead),
		attribute.Int("timeout_seconds", timeoutSeconds),
	)
	return ctx, span
}

// EndExecution records the terminal status and exit code on the span.
func EndExecution(span trace.Span, status string, exitCode int, err error) {
	span.SetAttributes(
		attribute.String("status", status),
		attribute.Int("exit_code", exitCode),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// StartProcess opens a long-lived span covering a background process's
// entire lifetime, from start() through the completion task.
func StartProcess(ctx context.Context, pid int64, commandHead string) (context.Context, trace.Span) {
	ctx, span := shellTracer().Start(ctx, "supervisor.process", trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.Int64("pid", pid),
		attribute.String("command_head", commandHead),
	)
	return ctx, span
}

// EndProcess finalizes a process span with its terminal status and exit code.
func EndProcess(span trace.Span, status string, exitCode int) {
	span.SetAttributes(
		attribute.String("status", status),
		attribute.Int("exit_code", exitCode),
	)
	span.End()
}

// AnnotateStop records a stop request (graceful or forceful) as a span event.
func AnnotateStop(span trace.Span, force bool, escalated bool) {
	span.AddEvent("stop_requested", trace.WithAttributes(
		attribute.Bool("force", force),
		attribute.Bool("escalated", escalated),
	))
}

// AnnotateSwept records that the retention sweep removed this process.
func AnnotateSwept(span trace.Span) {
	span.AddEvent("retention_swept")
}
