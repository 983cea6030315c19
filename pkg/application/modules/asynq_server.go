package modules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"currency_flip/pkg/contextx"
	"currency_flip/pkg/logx"
	"currency_flip/pkg/metrics"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type AsynqQueues map[string]int

type AsynqHandler struct {
	Pattern string
	Handle  func(context.Context, *asynq.Task) error
}

// AsynqServer обрабатывает задачи сканирования из очереди.
type AsynqServer struct {
	Redis       asynq.RedisClientOpt
	Concurrency int
}

func (s AsynqServer) Run(
	ctx context.Context,
	g *errgroup.Group,
	queues AsynqQueues,
	handlers ...AsynqHandler,
) {
	g.Go(func() error {
		worker := asynq.NewServer(s.Redis, asynq.Config{
			//nolint:exhaustruct
			BaseContext:  func() context.Context { return ctx },
			Concurrency:  s.Concurrency,
			Queues:       queues,
			Logger:       asynqLogger{logger: logger(ctx)},
			ErrorHandler: asynq.ErrorHandlerFunc(handleTaskError),
		})

		mux := asynq.NewServeMux()

		for _, h := range handlers {
			mux.HandleFunc(h.Pattern, h.Handle)
		}

		logger(ctx).Info("asynq server started",
			slog.String("redis-address", s.Redis.Addr),
			slog.Int("redis-db", s.Redis.DB),
			slog.Int("concurrency", s.Concurrency),
		)

		if err := worker.Start(mux); err != nil {
			return fmt.Errorf("asynqServer.Start: %w", err)
		}

		<-ctx.Done()
		worker.Shutdown()

		logger(ctx).Info("asynq server stopped", slog.String("redis-address", s.Redis.Addr))

		return nil
	})
}

func handleTaskError(ctx context.Context, task *asynq.Task, err error) {
	metrics.TasksFailedTotal.WithLabelValues(task.Type()).Inc()

	logger(ctx).Error("asynq task failed", slog.String(logx.FieldTaskType, task.Type()), logx.Error(err))
}

// asynqLogger пишет внутренние сообщения asynq в slog.
type asynqLogger struct {
	logger *slog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
