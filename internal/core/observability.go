package core

import (
	"context"
	"log/slog"
	"time"
)

// Logger receives structured service events. The zero value of the service
// logs nothing.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// SlogLogger adapts a *slog.Logger to the service Logger interface.
type SlogLogger struct {
	L *slog.Logger
}

// Debug forwards to slog at debug level.
func (s SlogLogger) Debug(msg string, args ...any) {
	if s.L != nil {
		s.L.Debug(msg, args...)
	}
}

// Warn forwards to slog at warn level.
func (s SlogLogger) Warn(msg string, args ...any) {
	if s.L != nil {
		s.L.Warn(msg, args...)
	}
}

// MetricsRecorder observes service operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a single traced operation.
type TraceSpan interface {
	End(err error)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}
