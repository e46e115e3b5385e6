package apperr

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/suistat/pkg/domain/model"
)

// Level returns the log level an error is reported at. Recoverable
// dashboard conditions are logged below error level.
func Level(err error) slog.Level {
	switch {
	case errors.Is(err, model.ErrLayoutNotReady):
		return slog.LevelDebug
	case errors.Is(err, model.ErrEmptySelection):
		return slog.LevelInfo
	case errors.Is(err, model.ErrUnknownChartKind):
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}
	logger := ctxlog.From(ctx)
	level := Level(err)
	if level == slog.LevelError {
		logger.Error("application error", "error", err)
		return
	}
	logger.Log(ctx, level, "recoverable dashboard condition", "error", err)
}
