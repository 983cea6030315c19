package middlewarex

import (
	"net/http"

	"github.com/rs/xid"

	"currency_flip/pkg/contextx"
	"currency_flip/pkg/httpx"
)

const (
	headerNameRequestID = "X-Request-Id"
	maxTraceIDLen       = 64
)

// TraceID берёт trace id из X-Trace-Id, затем из X-Request-Id; пустой или
// слишком длинный заменяется новым xid.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(httpx.HeaderTraceID)
		if traceID == "" {
			traceID = r.Header.Get(headerNameRequestID)
		}

		if traceID == "" || len(traceID) > maxTraceIDLen {
			traceID = xid.New().String()
		}

		ctx := contextx.WithTraceID(r.Context(), contextx.TraceID(traceID))

		w.Header().Set(httpx.HeaderTraceID, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
