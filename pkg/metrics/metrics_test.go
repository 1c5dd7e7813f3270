package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveCheckoutExportsCounterAndFanout(t *testing.T) {
	ObserveCheckout(OutcomeOK, 3)
	ObserveCheckout(OutcomeError, 0)

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "lokapasar_checkout_attempts_total", "outcome", OutcomeOK); err != nil {
		t.Fatalf("fetch ok counter: %v", err)
	} else if got < 1 {
		t.Fatalf("expected ok attempts >= 1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "lokapasar_checkout_attempts_total", "outcome", OutcomeError); err != nil {
		t.Fatalf("fetch error counter: %v", err)
	} else if got < 1 {
		t.Fatalf("expected error attempts >= 1, got %f", got)
	}

	mf := findMetricFamily(mfs, "lokapasar_checkout_sellers_per_cart")
	if mf == nil {
		t.Fatal("fanout histogram not exported")
	}
	if sum := mf.GetMetric()[0].GetHistogram().GetSampleSum(); sum < 3 {
		t.Fatalf("expected fanout sum >= 3, got %f", sum)
	}
}

func TestObserveTransitionAndRefund(t *testing.T) {
	ObserveTransition("cancel", OutcomeRejected)
	ObserveRefund(OutcomeOK)

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	mf := findMetricFamily(mfs, "lokapasar_transactions_transitions_total")
	if mf == nil {
		t.Fatal("transitions counter not exported")
	}
	found := false
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), "action", "cancel") && matchesLabel(metric.GetLabel(), "outcome", OutcomeRejected) {
			found = true
			if metric.GetCounter().GetValue() < 1 {
				t.Fatalf("expected rejected cancel >= 1, got %f", metric.GetCounter().GetValue())
			}
		}
	}
	if !found {
		t.Fatal("rejected cancel transition not recorded")
	}

	if got, err := fetchCounterValue(mfs, "lokapasar_transactions_refunds_total", "outcome", OutcomeOK); err != nil {
		t.Fatalf("fetch refund counter: %v", err)
	} else if got < 1 {
		t.Fatalf("expected refunds >= 1, got %f", got)
	}
}

func TestObserveHTTPRequestExportsHistogram(t *testing.T) {
	ObserveHTTPRequest("/api/v1/transactions", "POST", 201, 120*time.Millisecond)

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	mf := findMetricFamily(mfs, "lokapasar_http_request_duration_seconds")
	if mf == nil {
		t.Fatal("request histogram not exported")
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), "route", "/api/v1/transactions") && matchesLabel(metric.GetLabel(), "status", "201") {
			if metric.GetHistogram().GetSampleCount() < 1 {
				t.Fatal("expected at least one observation")
			}
			return
		}
	}
	t.Fatal("request observation not found")
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
