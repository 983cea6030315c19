package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"currency_flip/internal/config"
	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/infrastructure/cache"
	"currency_flip/internal/infrastructure/notifier"
	"currency_flip/internal/infrastructure/persistence"
	"currency_flip/internal/server"
	"currency_flip/internal/transport/bot"
	"currency_flip/internal/worker"
	"currency_flip/migrations"
	"currency_flip/pkg/application/connectors"
	"currency_flip/pkg/application/modules"
	"currency_flip/pkg/contextx"
	"currency_flip/pkg/logx"
	"currency_flip/pkg/metrics"
	"currency_flip/pkg/middlewarex"
	"currency_flip/pkg/probe"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	notificationsBuffer = 100
	logFieldMaxLen      = 4096
	scanQueuePriority   = 1
)

// Run поднимает сервис целиком: HTTP API, очередь сканирований, периодический
// сканер, уведомления и административного бота. Работает до отмены ctx.
func Run(ctx context.Context, cfg config.Config, userConfigPath string) error {
	mkt, err := NewMarket(cfg, userConfigPath)
	if err != nil {
		return err
	}

	// Хранилища
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	defer pg.Close(ctx)

	db, err := pg.Client(ctx)
	if err != nil {
		return fmt.Errorf("postgres.Client: %w", err)
	}

	if cfg.Postgres.Migrate {
		if err := migrations.Apply(ctx, db); err != nil {
			return fmt.Errorf("migrations.Apply: %w", err)
		}
	}

	rds := &connectors.Redis{
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		Address:            cfg.Redis.Address,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	defer rds.Close(ctx)

	redisClient, err := rds.Client(ctx)
	if err != nil {
		return fmt.Errorf("redis.Client: %w", err)
	}

	svc := mkt.Service.
		WithSnapshots(persistence.NewSnapshotRepository(db)).
		WithResultsCache(cache.NewResultsCache(redisClient))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("metrics.Register: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	// Уведомления
	notifications := make(chan notifier.Notification, notificationsBuffer)

	scanner := worker.NewFlipScanner(svc, cfg.Scanner.League, notifications).
		WithCurrencies(cfg.Scanner.Currencies...).
		WithInterval(cfg.Scanner.Interval).
		WithFullBulk(cfg.Scanner.FullBulk).
		WithNoFilter(cfg.Scanner.NoFilter).
		WithLimit(cfg.Scanner.Limit)

	if cfg.Bot.Enabled() {
		alertBot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		g.Go(func() error {
			if err := alertBot.Run(ctx, notifications); err != nil && ctx.Err() == nil {
				return fmt.Errorf("alertBot.Run: %w", err)
			}

			return nil
		})

		adminBot, err := bot.New(ctx, cfg.Bot, svc, scanner, mkt.Catalog)
		if err != nil {
			return fmt.Errorf("bot.New: %w", err)
		}

		g.Go(func() error {
			if err := adminBot.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("adminBot.Run: %w", err)
			}

			return nil
		})
	} else {
		logger(ctx).Warn("bot token is empty, notifications are logged only")

		g.Go(func() error {
			drainNotifications(ctx, notifications)
			return nil
		})
	}

	// Очередь сканирований
	queueClient := asynq.NewClient(rds.AsynqOpt())
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger(ctx).Error("asynqClient.Close", logx.Error(err))
		}
	}()

	modules.AsynqServer{
		Redis:       rds.AsynqOpt(),
		Concurrency: cfg.Scanner.Concurrency,
	}.Run(ctx, g,
		modules.AsynqQueues{worker.ScanQueue: scanQueuePriority},
		worker.NewScanTaskHandler(svc, notifications).AsynqHandler(),
	)

	// HTTP
	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(logx.NewSensitiveDataMasker(), logFieldMaxLen),
		middlewarex.ResponseLogging(logx.NewSensitiveDataMasker(), logFieldMaxLen),
	)

	server.NewServer(server.NewFlipServer(svc, queueClient)).RegisterRoutes(router)

	modules.HTTPServer{ShutdownTimeout: cfg.App.ShutdownTimeout}.Run(ctx, g, &http.Server{ //nolint:exhaustruct
		Addr:    cfg.App.HTTPAddress,
		Handler: router,
	})

	modules.MetricServer{
		ListenAddress: cfg.App.MetricsAddress,
		Gatherer:      prometheus.DefaultGatherer,
	}.Run(ctx, g)

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.App.ProbeAddress,
		Checks: map[string]probe.Check{
			"postgres": pg.Ping,
			"redis":    rds.Ping,
		},
	}.Run(ctx, g)

	// Сканер
	if cfg.Scanner.AutoStart {
		if err := scanner.Start(ctx); err != nil {
			return fmt.Errorf("scanner.Start: %w", err)
		}
		defer scanner.Stop()

		logger(ctx).Info("scanner started",
			slog.String(logx.FieldLeague, cfg.Scanner.League),
			slog.Any("currencies", cfg.Scanner.Currencies),
			slog.Duration("interval", cfg.Scanner.Interval),
		)
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("application.Run: %w", err)
	}

	logger(ctx).Info("application stopped")

	return nil
}

func drainNotifications(ctx context.Context, notifications <-chan notifier.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-notifications:
			logger(ctx).Info("profitable conversion",
				slog.String(logx.FieldLeague, n.League),
				slog.String(logx.FieldCurrency, n.Conversion.From),
				slog.String("conversion", market.FormatConversion(n.Conversion)),
			)
		}
	}
}
