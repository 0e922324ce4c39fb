package logger

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"

	"vaultledger/internal/config"
)

// New returns the logger for an environment: a colorized text handler for
// local interactive use, JSON at debug for dev, JSON at info for prod.
func New(env string) *slog.Logger {
	switch env {
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(newPrettyHandler(slog.LevelDebug))
	}
}

// prettyHandler is a minimal human-oriented handler for the interactive CLI:
// colored level, message, then key=value attrs.
type prettyHandler struct {
	level slog.Level
	attrs []slog.Attr
	mu    *sync.Mutex
}

func newPrettyHandler(level slog.Level) *prettyHandler {
	return &prettyHandler{level: level, mu: &sync.Mutex{}}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	levelStr := r.Level.String()
	switch {
	case r.Level >= slog.LevelError:
		levelStr = color.RedString(levelStr)
	case r.Level >= slog.LevelWarn:
		levelStr = color.YellowString(levelStr)
	case r.Level >= slog.LevelInfo:
		levelStr = color.GreenString(levelStr)
	}

	line := fmt.Sprintf("%s %s %s", r.Time.Format("15:04:05"), levelStr, r.Message)
	for _, attr := range h.attrs {
		line += fmt.Sprintf(" %s=%v", attr.Key, attr.Value)
	}
	r.Attrs(func(attr slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", attr.Key, attr.Value)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(os.Stderr, line)
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyHandler{
		level: h.level,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
		mu:    h.mu,
	}
}

func (h *prettyHandler) WithGroup(string) slog.Handler {
	return h
}
