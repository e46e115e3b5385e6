package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs handler in a new goroutine, detached from the cancellation of ctx
// but keeping its values. The logger passed to handler carries the task name.
// Errors and panics are logged. The returned channel is closed when handler returns.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) <-chan struct{} {
	logger := ctxlog.From(ctx).With("task", task)
	bgCtx := ctxlog.With(context.WithoutCancel(ctx), logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic in background task",
					"recover", r,
					"stack", string(debug.Stack()),
				)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logger.Error("Background task failed", "error", err)
		}
	}()
	return done
}
