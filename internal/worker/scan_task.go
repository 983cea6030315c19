package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/infrastructure/notifier"
	"currency_flip/pkg/application/modules"
	"currency_flip/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	TypeFlipScan = "flip:scan"
	ScanQueue    = "scans"
)

func NewFlipScanTask(req market.ScanRequest) (*asynq.Task, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return asynq.NewTask(TypeFlipScan, payload, asynq.Queue(ScanQueue), asynq.MaxRetry(2)), nil
}

// ScanTaskHandler выполняет сканирование по задаче из очереди и отправляет
// новые цепочки в канал уведомлений, если он задан.
type ScanTaskHandler struct {
	svc           Scanner
	notifications chan<- notifier.Notification
}

func NewScanTaskHandler(svc Scanner, notifications chan<- notifier.Notification) *ScanTaskHandler {
	return &ScanTaskHandler{svc: svc, notifications: notifications}
}

func (h *ScanTaskHandler) AsynqHandler() modules.AsynqHandler {
	return modules.AsynqHandler{
		Pattern: TypeFlipScan,
		Handle:  h.Handle,
	}
}

func (h *ScanTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var req market.ScanRequest
	if err := json.Unmarshal(task.Payload(), &req); err != nil {
		return fmt.Errorf("json.Unmarshal: %w: %w", err, asynq.SkipRetry)
	}

	report, err := h.svc.Scan(ctx, req)
	if err != nil {
		return fmt.Errorf("svc.Scan: %w", err)
	}

	logger(ctx).Info("scan task completed",
		slog.String(logx.FieldLeague, report.League),
		slog.String(logx.FieldSnapshotID, report.SnapshotID),
		slog.Int("conversions", report.Results.Count()),
	)

	if h.notifications == nil {
		return nil
	}

	for _, conversion := range h.svc.FreshConversions(report) {
		select {
		case h.notifications <- notifier.Notification{League: report.League, Conversion: conversion}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
