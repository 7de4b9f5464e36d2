// Package logging builds the process logger and carries it in contexts.
package logging

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// Options configure the console handler.
type Options struct {
	Level   slog.Level
	NoColor bool
}

// Setup installs a tint console logger wrapped by a context handler, so
// attributes added with With reach every record logged through the returned
// context. The logger also becomes the slog default.
func Setup(ctx context.Context, w io.Writer, opts Options) (*slog.Logger, context.Context) {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor,
	})
	logger := slog.New(slogctx.NewHandler(handler, nil))
	slog.SetDefault(logger)
	return logger, slogctx.NewCtx(ctx, logger)
}

// FromContext returns the logger carried by ctx, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	return slogctx.FromCtx(ctx)
}

// With returns a context whose records carry attrs.
func With(ctx context.Context, attrs ...any) context.Context {
	return slogctx.With(ctx, attrs...)
}

// Discard returns a context carrying a logger that drops every record.
func Discard(ctx context.Context) context.Context {
	return slogctx.NewCtx(ctx, slog.New(slog.DiscardHandler))
}
