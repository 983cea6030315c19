package contextx_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"currency_flip/pkg/contextx"
)

func TestValues(t *testing.T) {
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testCases := []struct {
		name     string
		with     func(context.Context) context.Context
		from     func(context.Context) (any, error)
		expected any
		errText  string
	}{
		{
			name: "logger",
			with: func(ctx context.Context) context.Context { return contextx.WithLogger(ctx, testLogger) },
			from: func(ctx context.Context) (any, error) {
				return contextx.LoggerFromContext(ctx)
			},
			expected: testLogger,
			errText:  "logger: no value in context",
		},
		{
			name: "trace id",
			with: func(ctx context.Context) context.Context { return contextx.WithTraceID(ctx, "test-trace-id") },
			from: func(ctx context.Context) (any, error) {
				return contextx.TraceIDFromContext(ctx)
			},
			expected: contextx.TraceID("test-trace-id"),
			errText:  "trace id: no value in context",
		},
		{
			name: "league",
			with: func(ctx context.Context) context.Context { return contextx.WithLeague(ctx, "Hardcore Kalandra") },
			from: func(ctx context.Context) (any, error) {
				return contextx.LeagueFromContext(ctx)
			},
			expected: contextx.League("Hardcore Kalandra"),
			errText:  "league: no value in context",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			_, err := tc.from(context.Background())
			rq.ErrorIs(err, contextx.ErrNoValue)
			rq.EqualError(err, tc.errText)

			got, err := tc.from(tc.with(context.Background()))
			rq.NoError(err)
			rq.Equal(tc.expected, got)
		})
	}
}

func TestLoggerFromContextOrDefault(t *testing.T) {
	rq := require.New(t)

	rq.Equal(slog.Default(), contextx.LoggerFromContextOrDefault(context.Background()))

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := contextx.WithLogger(context.Background(), testLogger)

	rq.Equal(testLogger, contextx.LoggerFromContextOrDefault(ctx))
}
