package middlewarex

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"currency_flip/pkg/httpx/reply"
	"currency_flip/pkg/logx"
	"currency_flip/pkg/metrics"
)

// Recovery отвечает 500 в общем формате ошибок API вместо обрыва соединения.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if rec == http.ErrAbortHandler { //nolint:errorlint,goerr113
				panic(rec)
			}

			metrics.PanicsRecoveredTotal.Inc()

			logger(ctx).Error(
				"panic in handler",
				slog.Any(logx.FieldError, rec),
				slog.String(logx.FieldStack, string(debug.Stack())),
			)

			reply.Error(ctx, w, fmt.Errorf("panic: %v", rec)) //nolint:goerr113
		}()

		next.ServeHTTP(w, r)
	})
}
