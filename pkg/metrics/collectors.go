package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flip"

//nolint:gochecknoglobals
var (
	OffersFetchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_fetched_total",
		Help:      "Offers received from marketplace backends",
	}, []string{"backend"})
	OffersDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_dropped_total",
		Help:      "Offers removed by market filters",
	}, []string{"filter"})
	BackendErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_errors_total",
		Help:      "Failed backend requests by backend",
	}, []string{"backend"})
	PathsEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "paths_evaluated_total",
		Help:      "Profitable-by-rate paths passed to volume equalization",
	})
	ConversionsFoundTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conversions_found_total",
		Help:      "Conversions with positive winnings by league",
	}, []string{"league"})
	ScanDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Full scan duration from fetch to report",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"league"})
	NotificationsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Conversions posted to the notification chat",
	})
	TasksFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_failed_total",
		Help:      "Queued tasks finished with an error",
	}, []string{"type"})
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "API request duration by route and status",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
	PanicsRecoveredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "panics_recovered_total",
		Help:      "Panics recovered in HTTP handlers",
	})
)

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		OffersFetchedTotal,
		OffersDroppedTotal,
		BackendErrorsTotal,
		PathsEvaluatedTotal,
		ConversionsFoundTotal,
		ScanDurationSeconds,
		NotificationsSentTotal,
		TasksFailedTotal,
		HTTPRequestDurationSeconds,
		PanicsRecoveredTotal,
	}
}

// Register регистрирует коллекторы; повторная регистрация не считается ошибкой.
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return fmt.Errorf("reg.Register: %w", err)
		}
	}
	return nil
}
