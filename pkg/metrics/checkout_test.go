package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)
	metrics.ObserveSubmitDuration("cod", 120*time.Millisecond)
	metrics.IncSubmit("cod", "success")
	metrics.IncSubmit("card", "failure")
	metrics.IncConcierge("fallback")
	metrics.IncOutboxPublish("success")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_submit_total", "payment_method", "cod"); err != nil {
		t.Fatalf("fetch submit: %v", err)
	} else if got != 1 {
		t.Fatalf("expected submit=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "concierge_replies_total", "source", "fallback"); err != nil {
		t.Fatalf("fetch concierge: %v", err)
	} else if got != 1 {
		t.Fatalf("expected concierge=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "outbox_publish_total", "outcome", "success"); err != nil {
		t.Fatalf("fetch outbox: %v", err)
	} else if got != 1 {
		t.Fatalf("expected outbox=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "checkout_submit_duration_seconds", "payment_method", "cod"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCheckoutMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewCheckoutMetrics(nil)
	metrics.ObserveSubmitDuration("cod", time.Second)
	metrics.IncSubmit("cod", "success")
	metrics.IncConcierge("model")
	metrics.IncOutboxPublish("failure")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
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
