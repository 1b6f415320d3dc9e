package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics records stock adjustment outcomes and latency.
type InventoryMetrics struct {
	adjustments *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewInventoryMetrics registers the inventory metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Stock adjustments by movement type and outcome.",
	}, []string{"type", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_adjustment_duration_seconds",
		Help:    "Duration of stock adjustment transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	reg.MustRegister(adjustments, duration)
	return &InventoryMetrics{
		adjustments: adjustments,
		duration:    duration,
	}
}

// IncAdjustment counts one adjustment attempt with its outcome
// (applied/rejected).
func (m *InventoryMetrics) IncAdjustment(movementType, outcome string) {
	if m == nil || m.adjustments == nil {
		return
	}
	m.adjustments.WithLabelValues(normalizeLabel(movementType), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records how long an adjustment transaction took.
func (m *InventoryMetrics) ObserveDuration(movementType string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(movementType)).Observe(d.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
