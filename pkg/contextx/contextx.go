package contextx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrNoValue = errors.New("no value in context")

type (
	contextKeyLogger  struct{}
	contextKeyTraceID struct{}
	contextKeyLeague  struct{}
)

// TraceID идентификатор запроса; в ответах API отдаётся как supportId.
type TraceID string

func (t TraceID) String() string {
	return string(t)
}

// League лига, в которой идёт сканирование или запрос к API.
type League string

func (l League) String() string {
	return string(l)
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger{}, logger)
}

func LoggerFromContext(ctx context.Context) (*slog.Logger, error) {
	return value[*slog.Logger](ctx, contextKeyLogger{}, "logger")
}

// LoggerFromContextOrDefault returns the logger stored in ctx or slog.Default.
func LoggerFromContextOrDefault(ctx context.Context) *slog.Logger {
	logger, err := LoggerFromContext(ctx)
	if err != nil {
		return slog.Default()
	}

	return logger
}

func WithTraceID(ctx context.Context, traceID TraceID) context.Context {
	return context.WithValue(ctx, contextKeyTraceID{}, traceID)
}

func TraceIDFromContext(ctx context.Context) (TraceID, error) {
	return value[TraceID](ctx, contextKeyTraceID{}, "trace id")
}

func WithLeague(ctx context.Context, league League) context.Context {
	return context.WithValue(ctx, contextKeyLeague{}, league)
}

func LeagueFromContext(ctx context.Context) (League, error) {
	return value[League](ctx, contextKeyLeague{}, "league")
}

func value[T any](ctx context.Context, key any, name string) (T, error) {
	v, ok := ctx.Value(key).(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: %w", name, ErrNoValue)
	}

	return v, nil
}
