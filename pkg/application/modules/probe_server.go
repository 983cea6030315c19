package modules

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"currency_flip/pkg/probe"
)

// ProbeServer отдаёт /healthz и /ready; Checks проверяются только в /ready.
type ProbeServer struct {
	Name          string
	Version       string
	ListenAddress string
	Checks        map[string]probe.Check
}

func (p ProbeServer) Run(ctx context.Context, g *errgroup.Group) {
	probeServer := probe.NewServer(p.ListenAddress, probe.Options{
		Name:    p.Name,
		Version: p.Version,
		Checks:  p.Checks,
	})

	g.Go(func() error {
		if err := probeServer.Run(ctx); err != nil {
			return fmt.Errorf("probeServer.Run: %w", err)
		}

		return nil
	})
}
