package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"currency_flip/internal/domain/entity"
	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/infrastructure/notifier"
	"currency_flip/pkg/contextx"
	"currency_flip/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const DefaultScanInterval = 5 * time.Minute

var ErrAlreadyRunning = errors.New("scanner is already running")

type Scanner interface {
	Scan(ctx context.Context, req market.ScanRequest) (market.ScanReport, error)
	FreshConversions(report market.ScanReport) []entity.Conversion
}

// FlipScanner периодически сканирует рынок лиги и отправляет новые
// цепочки в канал уведомлений.
type FlipScanner struct {
	svc           Scanner
	notifications chan<- notifier.Notification

	league     string
	currencies []string
	fullBulk   bool
	noFilter   bool
	limit      int
	interval   time.Duration

	lastReport *market.ScanReport
	lastScanAt time.Time

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewFlipScanner(svc Scanner, league string, notifications chan<- notifier.Notification) *FlipScanner {
	return &FlipScanner{
		svc:           svc,
		notifications: notifications,
		league:        league,
		interval:      DefaultScanInterval,
	}
}

func (w *FlipScanner) WithCurrencies(names ...string) *FlipScanner {
	w.currencies = names
	return w
}

func (w *FlipScanner) WithInterval(interval time.Duration) *FlipScanner {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

func (w *FlipScanner) WithFullBulk(fullBulk bool) *FlipScanner {
	w.fullBulk = fullBulk
	return w
}

func (w *FlipScanner) WithNoFilter(noFilter bool) *FlipScanner {
	w.noFilter = noFilter
	return w
}

func (w *FlipScanner) WithLimit(limit int) *FlipScanner {
	w.limit = limit
	return w
}

func (w *FlipScanner) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return ErrAlreadyRunning
	}

	scanCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(scanCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("scanner stopped", logx.Error(err))
		}
	}()

	return nil
}

func (w *FlipScanner) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *FlipScanner) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

// Run сканирует до отмены контекста, выдерживая интервал между циклами.
func (w *FlipScanner) Run(ctx context.Context) error {
	logger(ctx).Info("flip scanner started", slog.String(logx.FieldLeague, w.League()))
	defer logger(ctx).Info("flip scanner stopped")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.ScanOnce(ctx); err != nil && ctx.Err() == nil {
			logger(ctx).Error("scan cycle failed", logx.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ScanOnce выполняет один цикл: котировки загружаются один раз,
// цепочки отбираются по всем отслеживаемым валютам.
func (w *FlipScanner) ScanOnce(ctx context.Context) error {
	report, err := w.svc.Scan(ctx, market.ScanRequest{
		League:     w.League(),
		Currency:   market.AllCurrencies,
		Currencies: w.Currencies(),
		FullBulk:   w.fullBulk,
		NoFilter:   w.noFilter,
		Limit:      w.limit,
	})
	if err != nil {
		return fmt.Errorf("svc.Scan: %w", err)
	}

	w.remember(report)

	return w.notify(ctx, report)
}

func (w *FlipScanner) notify(ctx context.Context, report market.ScanReport) error {
	fresh := w.svc.FreshConversions(report)
	if len(fresh) > 0 {
		logger(ctx).Info("fresh conversions found",
			slog.String(logx.FieldLeague, report.League),
			slog.String(logx.FieldCurrency, report.Currency),
			slog.Int("count", len(fresh)),
		)
	}

	for _, conversion := range fresh {
		select {
		case w.notifications <- notifier.Notification{League: report.League, Conversion: conversion}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (w *FlipScanner) remember(report market.ScanReport) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastReport = &report
	w.lastScanAt = time.Now()
}

// LastReport возвращает последний отчёт и время сканирования.
func (w *FlipScanner) LastReport() (*market.ScanReport, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastReport, w.lastScanAt
}

func (w *FlipScanner) Interval() time.Duration {
	return w.interval
}
