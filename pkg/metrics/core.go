package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CoreMetrics records counters for the inventory ledger and pricing engine.
type CoreMetrics struct {
	movements         *prometheus.CounterVec
	insufficientStock prometheus.Counter
	reconciliations   *prometheus.CounterVec
	bulkRuns          *prometheus.CounterVec
	bulkModels        *prometheus.CounterVec
	bulkDuration      prometheus.Histogram
}

// NewCoreMetrics registers the core metrics on the provided registerer.
// A nil registerer yields a no-op instance so callers never nil-check.
func NewCoreMetrics(reg prometheus.Registerer) *CoreMetrics {
	if reg == nil {
		return &CoreMetrics{}
	}
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Stock ledger movements by direction.",
	}, []string{"direction"})
	insufficient := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_insufficient_total",
		Help: "Subtractions rejected for insufficient available stock.",
	})
	reconciliations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_reconciliations_total",
		Help: "Ledger reconciliations by outcome.",
	}, []string{"outcome"})
	bulkRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_bulk_runs_total",
		Help: "Bulk pricing workflow invocations by phase.",
	}, []string{"phase"})
	bulkModels := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_bulk_models_total",
		Help: "Model classifications produced by bulk pricing runs.",
	}, []string{"classification"})
	bulkDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_bulk_duration_seconds",
		Help:    "Duration of bulk pricing runs in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(movements, insufficient, reconciliations, bulkRuns, bulkModels, bulkDuration)
	return &CoreMetrics{
		movements:         movements,
		insufficientStock: insufficient,
		reconciliations:   reconciliations,
		bulkRuns:          bulkRuns,
		bulkModels:        bulkModels,
		bulkDuration:      bulkDuration,
	}
}

// IncMovement counts one ledger movement ("in" or "out").
func (m *CoreMetrics) IncMovement(direction string) {
	if m == nil || m.movements == nil {
		return
	}
	m.movements.WithLabelValues(normalizeLabel(direction)).Inc()
}

// IncInsufficientStock counts one rejected subtraction.
func (m *CoreMetrics) IncInsufficientStock() {
	if m == nil || m.insufficientStock == nil {
		return
	}
	m.insufficientStock.Inc()
}

// IncReconciliation counts one reconciliation run ("success" or "failure").
func (m *CoreMetrics) IncReconciliation(outcome string) {
	if m == nil || m.reconciliations == nil {
		return
	}
	m.reconciliations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncBulkRun counts one workflow invocation ("preview" or "commit").
func (m *CoreMetrics) IncBulkRun(phase string) {
	if m == nil || m.bulkRuns == nil {
		return
	}
	m.bulkRuns.WithLabelValues(normalizeLabel(phase)).Inc()
}

// AddBulkModels counts classified models for one run.
func (m *CoreMetrics) AddBulkModels(classification string, count int) {
	if m == nil || m.bulkModels == nil || count <= 0 {
		return
	}
	m.bulkModels.WithLabelValues(normalizeLabel(classification)).Add(float64(count))
}

// ObserveBulkDuration records the duration of one bulk run.
func (m *CoreMetrics) ObserveBulkDuration(duration time.Duration) {
	if m == nil || m.bulkDuration == nil {
		return
	}
	m.bulkDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
