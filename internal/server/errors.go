package server

import (
	"net/http"

	"git.appkode.ru/pub/go/failure"

	"currency_flip/internal/domain"
	"currency_flip/pkg/errcodes"
	"currency_flip/pkg/httpx/reply"
	"currency_flip/pkg/logx"
)

// replyError переводит доменные ошибки в HTTP-ответы, остальное отдаёт reply.Error.
func replyError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	code, ok := domain.GetCode(err)
	if !ok {
		reply.Error(ctx, w, err)
		return
	}

	switch code {
	case errcodes.InvalidPathfind, errcodes.InvalidCurrency, errcodes.InvalidLeague,
		errcodes.MalformedOffer, errcodes.UnsupportedItem, errcodes.InvalidUserConfig:
		reply.Error(ctx, w, failure.NewInvalidArgumentError(
			err.Error(),
			failure.WithCode(code),
			failure.WithDescription(err.Error()),
		))
	case errcodes.SnapshotNotFound, errcodes.NotFound:
		logger(ctx).Info("not found", logx.Error(err))
		reply.Status(ctx, w, http.StatusNotFound, code, err.Error())
	case errcodes.BackendUnavailable:
		logger(ctx).Error("backend unavailable", logx.Error(err))
		reply.Status(ctx, w, http.StatusServiceUnavailable, code, err.Error())
	default:
		reply.Error(ctx, w, err)
	}
}
