package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"currency_flip/internal/domain/entity"
	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/infrastructure/notifier"
	"currency_flip/internal/worker"
)

func TestNewFlipScanTask(t *testing.T) {
	rq := require.New(t)

	task, err := worker.NewFlipScanTask(market.ScanRequest{League: "Standard", Currency: "Chaos Orb", Limit: 2})
	rq.NoError(err)
	rq.Equal(worker.TypeFlipScan, task.Type())
	rq.JSONEq(`{"league":"Standard","currency":"Chaos Orb","fullbulk":false,"nofilter":false,"limit":2}`, string(task.Payload()))
}

func TestScanTaskHandler(t *testing.T) {
	testCases := []struct {
		name      string
		payload   []byte
		failures  map[string]bool
		skipRetry bool
		wantErr   bool
		notified  int
	}{
		{
			name:     "scan and notify",
			payload:  []byte(`{"league":"Standard","currency":"Chaos Orb"}`),
			notified: 1,
		},
		{
			name:      "broken payload",
			payload:   []byte(`{"league":`),
			wantErr:   true,
			skipRetry: true,
		},
		{
			name:     "scan failure is retried",
			payload:  []byte(`{"league":"Standard","currency":"Chaos Orb"}`),
			failures: map[string]bool{"Chaos Orb": true},
			wantErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			svc := &fakeScanner{failures: tc.failures, fresh: []entity.Conversion{conversion("Chaos Orb")}}
			notifications := make(chan notifier.Notification, 1)

			handler := worker.NewScanTaskHandler(svc, notifications).AsynqHandler()
			rq.Equal(worker.TypeFlipScan, handler.Pattern)

			err := handler.Handle(context.Background(), asynq.NewTask(worker.TypeFlipScan, tc.payload))
			if !tc.wantErr {
				rq.NoError(err)
			} else {
				rq.Error(err)
				rq.Equal(tc.skipRetry, errors.Is(err, asynq.SkipRetry))
			}

			rq.Len(notifications, tc.notified)
		})
	}
}

func TestScanTaskHandlerWithoutNotifications(t *testing.T) {
	rq := require.New(t)

	svc := &fakeScanner{fresh: []entity.Conversion{conversion("Chaos Orb")}}

	err := worker.NewScanTaskHandler(svc, nil).Handle(context.Background(),
		asynq.NewTask(worker.TypeFlipScan, []byte(`{"league":"Standard"}`)))
	rq.NoError(err)
	rq.Len(svc.Requests(), 1)
}
