package imecore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting load metrics.
// Query paths are never instrumented.
//
// The metrics/prometheus package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordOpen is called after each Open. kind is the source kind
	// ("local", "remote", "bytes"), bytes the data set size.
	RecordOpen(kind string, bytes int64, duration time.Duration, err error)

	// RecordComponentInit is called after each component is built.
	RecordComponentInit(component string, duration time.Duration, err error)

	// RecordFailOpen is called when a component is replaced by its
	// permissive fallback.
	RecordFailOpen(component string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(string, int64, time.Duration, error)   {}
func (NoopMetricsCollector) RecordComponentInit(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordFailOpen(string)                            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount          atomic.Int64
	OpenErrors         atomic.Int64
	OpenBytes          atomic.Int64
	OpenTotalNanos     atomic.Int64
	ComponentInits     atomic.Int64
	ComponentErrors    atomic.Int64
	ComponentInitNanos atomic.Int64
	FailOpens          atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(_ string, bytes int64, duration time.Duration, err error) {
	b.OpenCount.Add(1)
	b.OpenTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.OpenErrors.Add(1)
		return
	}
	b.OpenBytes.Add(bytes)
}

// RecordComponentInit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordComponentInit(_ string, duration time.Duration, err error) {
	b.ComponentInits.Add(1)
	b.ComponentInitNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ComponentErrors.Add(1)
	}
}

// RecordFailOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFailOpen(string) {
	b.FailOpens.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		OpenCount:       b.OpenCount.Load(),
		OpenErrors:      b.OpenErrors.Load(),
		OpenBytes:       b.OpenBytes.Load(),
		ComponentInits:  b.ComponentInits.Load(),
		ComponentErrors: b.ComponentErrors.Load(),
		FailOpens:       b.FailOpens.Load(),
	}
	if s.OpenCount > 0 {
		s.OpenAvgNanos = b.OpenTotalNanos.Load() / s.OpenCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount       int64
	OpenErrors      int64
	OpenBytes       int64
	OpenAvgNanos    int64
	ComponentInits  int64
	ComponentErrors int64
	FailOpens       int64
}
