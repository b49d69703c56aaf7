package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCoreMetricsRecordsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCoreMetrics(reg)

	m.IncMovement("in")
	m.IncMovement("in")
	m.IncMovement("out")
	m.IncInsufficientStock()
	m.IncReconciliation("success")
	m.IncBulkRun("preview")
	m.AddBulkModels("to_apply", 3)
	m.AddBulkModels("blocked", 1)
	m.ObserveBulkDuration(125 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	movements := findMetricFamily(mfs, "stock_movements_total")
	if movements == nil {
		t.Fatal("stock_movements_total not registered")
	}
	var sawIn bool
	for _, metric := range movements.GetMetric() {
		if matchesLabel(metric.GetLabel(), "direction", "in") {
			sawIn = true
			if got := metric.GetCounter().GetValue(); got != 2 {
				t.Fatalf("expected 2 inbound movements, got %v", got)
			}
		}
	}
	if !sawIn {
		t.Fatal("missing direction=in series")
	}

	bulkModels := findMetricFamily(mfs, "pricing_bulk_models_total")
	if bulkModels == nil {
		t.Fatal("pricing_bulk_models_total not registered")
	}
	for _, metric := range bulkModels.GetMetric() {
		if matchesLabel(metric.GetLabel(), "classification", "to_apply") {
			if got := metric.GetCounter().GetValue(); got != 3 {
				t.Fatalf("expected 3 to_apply models, got %v", got)
			}
		}
	}
}

func TestCoreMetricsNilRegistererIsNoop(t *testing.T) {
	m := NewCoreMetrics(nil)
	m.IncMovement("in")
	m.IncInsufficientStock()
	m.IncBulkRun("commit")
	m.AddBulkModels("excluded", 1)
	m.ObserveBulkDuration(time.Second)

	var nilMetrics *CoreMetrics
	nilMetrics.IncMovement("out")
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
