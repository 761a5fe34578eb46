// Package logging builds the console logger used across zoomlauncher and
// carries it through the context.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/guilherme-santos/zoomlauncher/internal"
)

const timeFormat = "2006-01-02 15:04:05"

var ErrUnknownLevel = errors.New("unknown log level")

type contextKey struct{}

var defaultLogger atomic.Pointer[slog.Logger]

// ParseLevel accepts debug, info, warn (or warning) and error in any case.
// An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, goerr.Wrap(ErrUnknownLevel, "use debug, info, warn or error", goerr.V("log_level", name))
}

// New creates a logger writing colored console lines to w. At debug level
// the source location is included.
func New(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := clog.New(
		clog.WithWriter(w),
		clog.WithLevel(level),
		clog.WithTimeFmt(timeFormat),
		clog.WithSource(level <= slog.LevelDebug),
		clog.WithAttrHook(clog.GoerrHook),
	)
	return slog.New(handler)
}

// Default is the process logger, info level on stdout until SetDefault.
func Default() *slog.Logger {
	if logger := defaultLogger.Load(); logger != nil {
		return logger
	}
	logger := New(os.Stdout, slog.LevelInfo)
	if defaultLogger.CompareAndSwap(nil, logger) {
		return logger
	}
	return defaultLogger.Load()
}

func SetDefault(logger *slog.Logger) {
	defaultLogger.Store(logger)
}

func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// From returns the logger stored in ctx, or Default.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}

// Event groups the fields identifying ev in a log line.
func Event(ev *internal.Event) slog.Attr {
	return slog.Group("event",
		slog.String("id", ev.ID),
		slog.String("summary", ev.Summary),
		slog.String("start", ev.Start.String()),
	)
}
