package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/rs/xid"

	"currency_flip/pkg/contextx"
	"currency_flip/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const HeaderTraceID = "X-Trace-Id"

//go:generate moq -rm -out sensitive_data_masker_mock.gen.go . sensitiveDataMasker:SensitiveDataMaskerMock
type sensitiveDataMasker interface {
	Mask([]byte) []byte
}

// LoggingRoundTripper пишет в лог запросы к биржевому бэкенду и ответы на них.
// Ответы со статусом от 400 пишутся с уровнем не ниже Warn.
// Лига и trace id берутся из контекста запроса; trace id уходит в заголовке X-Trace-Id.
type LoggingRoundTripper struct {
	next                http.RoundTripper
	sensitiveDataMasker sensitiveDataMasker
	logFieldMaxLen      int
	level               slog.Level
}

func NewLoggingRoundTripper(next http.RoundTripper, opts ...Option) LoggingRoundTripper {
	rt := LoggingRoundTripper{
		next:                next,
		sensitiveDataMasker: logx.NewNopSensitiveDataMasker(),
		logFieldMaxLen:      0,
		level:               slog.LevelInfo,
	}

	for _, opt := range opts {
		opt(&rt)
	}

	return rt
}

func (rt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	attrs := []any{slog.String(logx.FieldRequestID, xid.New().String())}

	if league, err := contextx.LeagueFromContext(ctx); err == nil {
		attrs = append(attrs, logx.Stringer(logx.FieldLeague, league))
	}

	if traceID, err := contextx.TraceIDFromContext(ctx); err == nil && req.Header.Get(HeaderTraceID) == "" {
		req = req.Clone(ctx)
		req.Header.Set(HeaderTraceID, traceID.String())
	}

	log := logger(ctx).With(attrs...)

	reqBytes, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		log.Error("httputil.DumpRequestOut", logx.Error(err))
	}

	log.Log(ctx, rt.level, logx.FieldHTTPRequest,
		slog.String(logx.FieldRequestBody, rt.field(reqBytes)),
	)

	start := time.Now()

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		log.Warn("next.RoundTrip", logx.Error(err), slog.Int64(logx.FieldDurationMs, time.Since(start).Milliseconds()))
		return nil, fmt.Errorf("next.RoundTrip %w", err)
	}

	respBytes, err := httputil.DumpResponse(resp, true)
	if err != nil {
		log.Error("httputil.DumpResponse", logx.Error(err))
	}

	level := rt.level
	if resp.StatusCode >= http.StatusBadRequest {
		level = max(level, slog.LevelWarn)
	}

	log.Log(ctx, level, logx.FieldHTTPResponse,
		slog.Int(logx.FieldResponseStatus, resp.StatusCode),
		slog.String(logx.FieldResponseBody, rt.field(respBytes)),
		slog.Int64(logx.FieldDurationMs, time.Since(start).Milliseconds()),
	)

	return resp, nil
}

func (rt LoggingRoundTripper) field(dump []byte) string {
	if rt.logFieldMaxLen != 0 && len(dump) > rt.logFieldMaxLen {
		dump = dump[:rt.logFieldMaxLen]
	}

	return string(rt.sensitiveDataMasker.Mask(dump))
}
