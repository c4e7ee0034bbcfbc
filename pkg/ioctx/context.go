// Package ioctx carries output sinks and a logger through context. The
// rendering engine never touches ambient globals: the application layer
// installs the sinks before invoking it, and everything downstream pulls
// them from the context. A missing sink degrades to io.Discard.
package ioctx

import (
	"context"
	"io"
	"log/slog"
)

type stdoutKey struct{}
type stderrKey struct{}
type loggerKey struct{}

// StdoutToContext installs the primary output sink.
func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

// StdoutFromContext returns the primary output sink, or io.Discard.
func StdoutFromContext(ctx context.Context) io.Writer {
	w := ctx.Value(stdoutKey{})
	if w == nil {
		return io.Discard
	}
	return w.(io.Writer)
}

// StderrToContext installs the diagnostic output sink.
func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

// StderrFromContext returns the diagnostic output sink, or io.Discard.
func StderrFromContext(ctx context.Context) io.Writer {
	w := ctx.Value(stderrKey{})
	if w == nil {
		return io.Discard
	}
	return w.(io.Writer)
}

// LoggerToContext installs the structured logger.
func LoggerToContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFromContext returns the structured logger, or a discarding one.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	l := ctx.Value(loggerKey{})
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.(*slog.Logger)
}
