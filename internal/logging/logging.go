// Package logging provides the structured logger every packetgen component
// logs through, grounded on ghettovoice-gosip's log package: a small set of
// preconfigured *slog.Logger constructors plus a process-wide default that
// can be swapped by a host application (a CLI entry point, a test harness).
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/phsym/console-slog"
)

// Console returns a logger that writes human-readable, colorized lines to w
// via console-slog — the logger a CLI binds to stderr by default.
func Console(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(console.NewHandler(w, &console.HandlerOptions{
		Level: level,
	}))
}

// Noop returns a logger that discards everything, for tests and library
// callers that haven't opted into logging.
func Noop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var def atomic.Pointer[slog.Logger]

func init() {
	def.Store(Console(os.Stderr, slog.LevelInfo))
}

// Default returns the process-wide logger. Packages under packetgen log
// through this rather than slog.Default so SetDefault can retarget just
// this module's logging without affecting a host application's own use of
// log/slog.
func Default() *slog.Logger { return def.Load() }

// SetDefault replaces the process-wide logger returned by Default.
func SetDefault(l *slog.Logger) { def.Store(l) }

type ctxKey struct{}

// ContextWithLogger returns a context carrying l, retrievable with
// FromContext. Used to thread a request- or capture-scoped logger (e.g. one
// tagged with an interface name or pcap file path) through a call chain
// without widening every function signature.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by ContextWithLogger, or Default if
// ctx carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return Default()
}
