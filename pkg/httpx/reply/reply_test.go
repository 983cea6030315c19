package reply_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"git.appkode.ru/pub/go/failure"
	"github.com/stretchr/testify/require"

	"currency_flip/pkg/contextx"
	"currency_flip/pkg/errcodes"
	"currency_flip/pkg/httpx/reply"
)

func TestError(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		statusCode int
		code       string
	}{
		{
			name: "invalid argument",
			err: failure.NewInvalidArgumentError("bad limit",
				failure.WithCode(errcodes.ValidationError),
				failure.WithDescription("limit must be a non-negative integer"),
			),
			statusCode: http.StatusBadRequest,
			code:       errcodes.ValidationError.String(),
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			statusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			ctx := contextx.WithTraceID(context.Background(), "trace-1")
			w := httptest.NewRecorder()

			reply.Error(ctx, w, tc.err)

			rq.Equal(tc.statusCode, w.Code)
			rq.Contains(w.Body.String(), `"supportId":"trace-1"`)

			if tc.code != "" {
				rq.Contains(w.Body.String(), `"code":"`+tc.code+`"`)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	rq := require.New(t)

	w := httptest.NewRecorder()
	reply.Status(context.Background(), w, http.StatusServiceUnavailable, errcodes.BackendUnavailable, "backend is down")

	rq.Equal(http.StatusServiceUnavailable, w.Code)
	rq.Equal("application/json; charset=utf-8", w.Header().Get("Content-Type"))
	rq.JSONEq(`{"code":"BackendUnavailable","message":"backend is down","supportId":"unsupported"}`, w.Body.String())
}
