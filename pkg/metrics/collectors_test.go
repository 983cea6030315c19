package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"currency_flip/pkg/metrics"
)

func TestRegister(t *testing.T) {
	rq := require.New(t)

	reg := prometheus.NewRegistry()

	rq.NoError(metrics.Register(reg))
	rq.NoError(metrics.Register(reg))

	metrics.ConversionsFoundTotal.WithLabelValues("Standard").Add(3)

	families, err := reg.Gather()
	rq.NoError(err)

	var found bool
	for _, family := range families {
		if family.GetName() != "flip_conversions_found_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			if m.GetLabel()[0].GetValue() == "Standard" {
				rq.GreaterOrEqual(m.GetCounter().GetValue(), 3.0)
				found = true
			}
		}
	}
	rq.True(found)
}
