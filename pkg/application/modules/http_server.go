package modules

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"currency_flip/pkg/httpx"
)

// HTTPServer запускает API и останавливает его по отмене ctx,
// давая запросам ShutdownTimeout на завершение.
type HTTPServer struct {
	ShutdownTimeout time.Duration
}

func (h HTTPServer) Run(ctx context.Context, g *errgroup.Group, httpServer *http.Server) {
	g.Go(func() error {
		if err := httpx.Serve(ctx, "http", httpServer, h.ShutdownTimeout); err != nil {
			return fmt.Errorf("httpServer.Run: %w", err)
		}

		return nil
	})
}
