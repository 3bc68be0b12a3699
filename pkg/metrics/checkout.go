package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records submission and concierge outcomes.
type CheckoutMetrics struct {
	submitDuration     *prometheus.HistogramVec
	submitTotal        *prometheus.CounterVec
	conciergeTotal     *prometheus.CounterVec
	outboxPublishTotal *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	submitTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submit_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"payment_method", "outcome"})
	conciergeTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "concierge_replies_total",
		Help: "Concierge replies by source.",
	}, []string{"source"})
	outboxPublishTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_total",
		Help: "Outbox events published by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(submitDuration, submitTotal, conciergeTotal, outboxPublishTotal)
	return &CheckoutMetrics{
		submitDuration:     submitDuration,
		submitTotal:        submitTotal,
		conciergeTotal:     conciergeTotal,
		outboxPublishTotal: outboxPublishTotal,
	}
}

// ObserveSubmitDuration records how long a submission took.
func (c *CheckoutMetrics) ObserveSubmitDuration(paymentMethod string, duration time.Duration) {
	if c == nil || c.submitDuration == nil {
		return
	}
	c.submitDuration.WithLabelValues(normalizeLabel(paymentMethod)).Observe(duration.Seconds())
}

// IncSubmit counts a submission outcome ("success" or "failure").
func (c *CheckoutMetrics) IncSubmit(paymentMethod, outcome string) {
	if c == nil || c.submitTotal == nil {
		return
	}
	c.submitTotal.WithLabelValues(normalizeLabel(paymentMethod), normalizeLabel(outcome)).Inc()
}

// IncConcierge counts a concierge reply by source ("model" or "fallback").
func (c *CheckoutMetrics) IncConcierge(source string) {
	if c == nil || c.conciergeTotal == nil {
		return
	}
	c.conciergeTotal.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncOutboxPublish counts an outbox publish attempt outcome.
func (c *CheckoutMetrics) IncOutboxPublish(outcome string) {
	if c == nil || c.outboxPublishTotal == nil {
		return
	}
	c.outboxPublishTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
