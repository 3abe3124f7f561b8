// Package prometheus exports imecore load metrics to Prometheus.
//
//	reg := prom.NewRegistry()
//	eng, err := imecore.Open(ctx, src, imecore.WithMetricsCollector(prometheus.New(reg)))
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/imecore"
)

const namespace = "imecore"

// Collector implements imecore.MetricsCollector with Prometheus metrics.
type Collector struct {
	OpenTotal             *prom.CounterVec
	OpenDuration          *prom.HistogramVec
	DataSetBytes          *prom.GaugeVec
	ComponentInitTotal    *prom.CounterVec
	ComponentInitDuration *prom.HistogramVec
	FailOpenTotal         *prom.CounterVec
}

var _ imecore.MetricsCollector = (*Collector)(nil)

// New registers the imecore metrics with reg. A nil reg uses
// prom.DefaultRegisterer.
func New(reg prom.Registerer) *Collector {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		OpenTotal: f.NewCounterVec(
			prom.CounterOpts{
				Namespace: namespace,
				Name:      "open_total",
				Help:      "Total number of data set opens",
			},
			[]string{"kind", "status"}, // status: success, error
		),
		OpenDuration: f.NewHistogramVec(
			prom.HistogramOpts{
				Namespace: namespace,
				Name:      "open_duration_seconds",
				Help:      "Duration of data set opens in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"kind"},
		),
		DataSetBytes: f.NewGaugeVec(
			prom.GaugeOpts{
				Namespace: namespace,
				Name:      "data_set_bytes",
				Help:      "Size of the most recently opened data set",
			},
			[]string{"kind"},
		),
		ComponentInitTotal: f.NewCounterVec(
			prom.CounterOpts{
				Namespace: namespace,
				Name:      "component_init_total",
				Help:      "Total number of query component builds",
			},
			[]string{"component", "status"},
		),
		ComponentInitDuration: f.NewHistogramVec(
			prom.HistogramOpts{
				Namespace: namespace,
				Name:      "component_init_duration_seconds",
				Help:      "Duration of query component builds in seconds",
				Buckets:   prom.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"component"},
		),
		FailOpenTotal: f.NewCounterVec(
			prom.CounterOpts{
				Namespace: namespace,
				Name:      "fail_open_total",
				Help:      "Components replaced by their permissive fallback",
			},
			[]string{"component"},
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordOpen implements imecore.MetricsCollector.
func (c *Collector) RecordOpen(kind string, bytes int64, duration time.Duration, err error) {
	c.OpenTotal.WithLabelValues(kind, status(err)).Inc()
	c.OpenDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err == nil {
		c.DataSetBytes.WithLabelValues(kind).Set(float64(bytes))
	}
}

// RecordComponentInit implements imecore.MetricsCollector.
func (c *Collector) RecordComponentInit(component string, duration time.Duration, err error) {
	c.ComponentInitTotal.WithLabelValues(component, status(err)).Inc()
	c.ComponentInitDuration.WithLabelValues(component).Observe(duration.Seconds())
}

// RecordFailOpen implements imecore.MetricsCollector.
func (c *Collector) RecordFailOpen(component string) {
	c.FailOpenTotal.WithLabelValues(component).Inc()
}
