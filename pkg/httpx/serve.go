package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"currency_flip/pkg/logx"
)

const (
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Serve запускает сервер и останавливает его (graceful shutdown) при отмене ctx.
// name попадает в логи: "<name> server started/stopped".
func Serve(ctx context.Context, name string, server *http.Server, shutdownTimeout time.Duration) error {
	if server.ReadHeaderTimeout == 0 {
		server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}

	if server.BaseContext == nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}

	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-stopped:
			return
		case <-ctx.Done():
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout) //nolint:govet
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger(ctx).Error("server.Shutdown", slog.String("server", name), logx.Error(err))
		}
	}()

	logger(ctx).Info(name+" server started", slog.String("address", server.Addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: httpServer.ListenAndServe: %w", name, err)
	}

	logger(ctx).Info(name+" server stopped", slog.String("address", server.Addr))

	return nil
}
