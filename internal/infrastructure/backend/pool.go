package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"currency_flip/internal/domain"
	"currency_flip/internal/domain/catalog"
	"currency_flip/internal/domain/entity"
	"currency_flip/pkg/errcodes"
	"currency_flip/pkg/logx"
	"currency_flip/pkg/metrics"
)

const (
	DefaultWorkers     = 1
	DefaultMaxAttempts = 3
	DefaultPenalty     = 15 * time.Second

	// Официальный сайт пропускает около двух запросов за три секунды.
	defaultInterval = 1500 * time.Millisecond
	defaultBurst    = 2
)

// Backend загружает предложения по одной паре предметов.
type Backend interface {
	Name() string
	FetchPair(ctx context.Context, task Task) ([]entity.Offer, error)
}

type Task struct {
	League   string
	Have     string
	Want     string
	Limit    int
	Attempts int

	slot int
}

// Pool раздаёт задачи воркерам бэкендов. Каждый воркер ограничен
// собственным набором лимитеров, неудачная задача возвращается в очередь.
type Pool struct {
	backends    []Backend
	workers     int
	maxAttempts int
	penalty     time.Duration
	limits      func() []*rate.Limiter
}

func NewPool(backends ...Backend) *Pool {
	return &Pool{
		backends:    backends,
		workers:     DefaultWorkers,
		maxAttempts: DefaultMaxAttempts,
		penalty:     DefaultPenalty,
		limits: func() []*rate.Limiter {
			return []*rate.Limiter{rate.NewLimiter(rate.Every(defaultInterval), defaultBurst)}
		},
	}
}

// WithWorkers задаёт число воркеров на каждый бэкенд.
func (p *Pool) WithWorkers(n int) *Pool {
	if n > 0 {
		p.workers = n
	}
	return p
}

func (p *Pool) WithMaxAttempts(n int) *Pool {
	if n > 0 {
		p.maxAttempts = n
	}
	return p
}

func (p *Pool) WithPenalty(d time.Duration) *Pool {
	p.penalty = d
	return p
}

// WithLimits задаёт фабрику лимитеров: каждый воркер получает свой набор
// и ждёт их все перед запросом.
func (p *Pool) WithLimits(limits func() []*rate.Limiter) *Pool {
	p.limits = limits
	return p
}

func (p *Pool) Name() string {
	if len(p.backends) == 0 {
		return ""
	}
	return p.backends[0].Name()
}

type poolRun struct {
	queue     chan Task
	remaining atomic.Int64
	done      chan struct{}
	closeOnce sync.Once

	results [][]entity.Offer
	failed  atomic.Int64
}

func (r *poolRun) finish() {
	if r.remaining.Add(-1) == 0 {
		r.closeOnce.Do(func() { close(r.done) })
	}
}

// FetchOffers загружает предложения по всем парам и возвращает их
// в порядке пар.
func (p *Pool) FetchOffers(ctx context.Context, league string, pairs []catalog.Pair, limit int) ([]entity.Offer, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	if len(p.backends) == 0 {
		return nil, domain.NewError(errcodes.BackendUnavailable, "no backends configured")
	}

	run := &poolRun{
		queue:   make(chan Task, len(pairs)),
		done:    make(chan struct{}),
		results: make([][]entity.Offer, len(pairs)),
	}
	run.remaining.Store(int64(len(pairs)))

	for i, pair := range pairs {
		run.queue <- Task{League: league, Have: pair.Have, Want: pair.Want, Limit: limit, slot: i}
	}

	g, gCtx := errgroup.WithContext(ctx)

	for _, b := range p.backends {
		for i := range p.workers {
			limiters := p.limits()
			g.Go(func() error {
				return p.work(gCtx, run, b, i, limiters)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("backend.Pool.FetchOffers: %w", err)
	}

	failed := int(run.failed.Load())
	switch {
	case failed == len(pairs):
		return nil, domain.NewError(errcodes.BackendUnavailable,
			fmt.Sprintf("all %d requests to %s failed", failed, p.Name()))
	case failed > 0:
		logger(ctx).Warn("some pairs were not fetched",
			slog.String(logx.FieldBackend, p.Name()),
			slog.Int("failed", failed),
			slog.Int("total", len(pairs)),
		)
	}

	var offers []entity.Offer
	for _, slot := range run.results {
		offers = append(offers, slot...)
	}

	return offers, nil
}

func (p *Pool) work(ctx context.Context, run *poolRun, b Backend, id int, limiters []*rate.Limiter) error {
	log := logger(ctx).With(slog.String(logx.FieldBackend, b.Name()), slog.Int("worker", id))

	for {
		var task Task
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-run.done:
			return nil
		case task = <-run.queue:
		}

		for _, l := range limiters {
			if err := l.Wait(ctx); err != nil {
				return err
			}
		}

		offers, err := b.FetchPair(ctx, task)
		if err == nil {
			run.results[task.slot] = offers
			run.finish()
			continue
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		metrics.BackendErrorsTotal.WithLabelValues(b.Name()).Inc()
		task.Attempts++

		if task.Attempts >= p.maxAttempts || errors.Is(err, ErrUnsupportedPair) {
			log.Warn("giving up on pair",
				slog.String("have", task.Have),
				slog.String("want", task.Want),
				slog.Int("attempts", task.Attempts),
				logx.Error(err),
			)
			run.failed.Add(1)
			run.finish()
			continue
		}

		log.Info("request failed, rescheduling",
			slog.String("have", task.Have),
			slog.String("want", task.Want),
			slog.Int("attempt", task.Attempts),
			logx.Error(err),
		)

		// Очередь рассчитана на все задачи, запись не блокируется.
		run.queue <- task

		if err := sleep(ctx, p.penalty); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
