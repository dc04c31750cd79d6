package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestFulfillmentMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewFulfillmentMetrics(reg)
	metrics.IncCheckoutSession("cart")
	metrics.IncWebhookEvent("processed")
	metrics.ObserveOrderCompleted(4999)
	metrics.IncDownloadServed("stems")
	metrics.IncEmailSent("sent")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_sessions_created", "flow", "cart"); err != nil {
		t.Fatalf("fetch sessions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected sessions=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "stripe_webhook_events", "outcome", "processed"); err != nil {
		t.Fatalf("fetch webhook events: %v", err)
	} else if got != 1 {
		t.Fatalf("expected events=1, got %f", got)
	}

	if got := fetchPlainCounter(mfs, "order_revenue_cents"); got != 4999 {
		t.Fatalf("expected revenue=4999, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "downloads_served", "kind", "stems"); err != nil {
		t.Fatalf("fetch downloads: %v", err)
	} else if got != 1 {
		t.Fatalf("expected downloads=1, got %f", got)
	}
}

func TestFulfillmentMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewFulfillmentMetrics(nil)
	metrics.IncCheckoutSession("cart")
	metrics.ObserveOrderCompleted(100)
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

func fetchPlainCounter(mfs []*dto.MetricFamily, name string) float64 {
	mf := findMetricFamily(mfs, name)
	if mf == nil || len(mf.GetMetric()) == 0 {
		return 0
	}
	return mf.GetMetric()[0].GetCounter().GetValue()
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
