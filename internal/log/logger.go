// Package log wraps slog with a per-component logger so every record
// carries the subsystem it came from.
package log

import (
	"log/slog"
	"os"
)

// Logger is a slog.Logger bound to a component name.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration.
type Config struct {
	Level   slog.Level
	Handler slog.Handler
}

// New creates the root logger. A nil Handler gets a text handler on stdout.
func New(cfg Config) *Logger {
	handler := cfg.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level})
	}
	return &Logger{Logger: slog.New(handler), component: "app"}
}

// WithComponent returns a logger whose records carry the given component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With("component", component),
		component: component,
	}
}

// With returns a logger with extra attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs the logger as the process-wide slog default.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

// Component names used across the application.
const (
	ComponentApp        = "app"
	ComponentStorage    = "storage"
	ComponentRecurrence = "recurrence"
	ComponentDashboard  = "dashboard"
)
