package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lokapasar",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests by route, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	checkoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lokapasar",
		Subsystem: "checkout",
		Name:      "attempts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})

	checkoutFanout = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lokapasar",
		Subsystem: "checkout",
		Name:      "sellers_per_cart",
		Help:      "Number of per-seller transactions produced by a single checkout.",
		Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
	})

	rateLookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lokapasar",
		Subsystem: "shipping",
		Name:      "rate_lookup_duration_seconds",
		Help:      "Latency of shipment rate lookups by outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	transitionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lokapasar",
		Subsystem: "transactions",
		Name:      "transitions_total",
		Help:      "Transaction status transitions by action and outcome.",
	}, []string{"action", "outcome"})

	refundTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lokapasar",
		Subsystem: "transactions",
		Name:      "refunds_total",
		Help:      "Refund attempts during cancellation by outcome.",
	}, []string{"outcome"})
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveCheckout records a checkout attempt and, on success, its fan-out width.
func ObserveCheckout(outcome string, sellers int) {
	checkoutTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK && sellers > 0 {
		checkoutFanout.Observe(float64(sellers))
	}
}

// ObserveRateLookup records a single upstream shipment rate call.
func ObserveRateLookup(outcome string, elapsed time.Duration) {
	rateLookupDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveTransition records a transaction action attempt.
func ObserveTransition(action, outcome string) {
	transitionTotal.WithLabelValues(action, outcome).Inc()
}

// ObserveRefund records a refund attempt made while canceling.
func ObserveRefund(outcome string) {
	refundTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
