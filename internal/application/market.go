package application

import (
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"currency_flip/internal/config"
	"currency_flip/internal/domain/catalog"
	"currency_flip/internal/domain/policy"
	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/infrastructure/backend"
)

// Market общие зависимости поиска цепочек для CLI и сервера.
type Market struct {
	Catalog *catalog.Catalog
	Policy  *policy.UserConfig
	Service *market.Service
}

func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}

	return catalog.Load(path)
}

// NewOfferSource собирает пул бэкендов; лимитеры создаются на каждого воркера.
func NewOfferSource(cfg config.Backend, items *catalog.Catalog, sessionID string) *backend.Pool {
	poe := backend.NewPoeOfficial(cfg.URL, items).WithSession(sessionID)

	return backend.NewPool(poe).
		WithWorkers(cfg.Workers).
		WithMaxAttempts(cfg.MaxAttempts).
		WithPenalty(cfg.Penalty).
		WithLimits(func() []*rate.Limiter {
			return []*rate.Limiter{rate.NewLimiter(rate.Every(cfg.RequestInterval), cfg.Burst)}
		})
}

func NewMarket(cfg config.Config, userConfigPath string) (*Market, error) {
	items, err := LoadCatalog(cfg.Files.Catalog)
	if err != nil {
		return nil, fmt.Errorf("application.LoadCatalog: %w", err)
	}

	if userConfigPath == "" {
		userConfigPath = cfg.Files.UserConfig
	}

	userCfg, err := policy.Load(userConfigPath)
	if err != nil {
		return nil, fmt.Errorf("policy.Load: %w", err)
	}

	traders, err := market.LoadExcludedTraders(cfg.Files.ExcludedTraders)
	if err != nil {
		return nil, fmt.Errorf("market.LoadExcludedTraders: %w", err)
	}

	slog.Default().Debug("market dependencies loaded",
		slog.Int("items", items.Len()),
		slog.Int("excluded_traders", len(traders)),
		slog.String("user_config", userCfg.String()),
	)

	svc := market.NewService(NewOfferSource(cfg.Backend, items, userCfg.PoeSessionID), items, userCfg).
		WithExcludedTraders(traders).
		WithMaxLength(cfg.Scanner.MaxLength).
		WithFetchLimit(cfg.Backend.FetchLimit)

	return &Market{
		Catalog: items,
		Policy:  userCfg,
		Service: svc,
	}, nil
}
