package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records the storefront's purchase pipeline activity.
type FulfillmentMetrics struct {
	checkoutSessions *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
	ordersCompleted  prometheus.Counter
	orderRevenue     prometheus.Counter
	downloadsServed  *prometheus.CounterVec
	emailsSent       *prometheus.CounterVec
}

// NewFulfillmentMetrics registers the pipeline metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	checkoutSessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_created",
		Help: "Stripe checkout sessions created, by flow.",
	}, []string{"flow"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events",
		Help: "Stripe webhook events received, by outcome.",
	}, []string{"outcome"})
	ordersCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed",
		Help: "Orders recorded as completed.",
	})
	orderRevenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_revenue_cents",
		Help: "Revenue recorded on completed orders, in minor units.",
	})
	downloadsServed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "downloads_served",
		Help: "Purchase downloads served, by kind.",
	}, []string{"kind"})
	emailsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_emails_sent",
		Help: "Delivery email attempts, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(checkoutSessions, webhookEvents, ordersCompleted, orderRevenue, downloadsServed, emailsSent)
	return &FulfillmentMetrics{
		checkoutSessions: checkoutSessions,
		webhookEvents:    webhookEvents,
		ordersCompleted:  ordersCompleted,
		orderRevenue:     orderRevenue,
		downloadsServed:  downloadsServed,
		emailsSent:       emailsSent,
	}
}

// IncCheckoutSession counts a created checkout session for a flow ("cart" or "buy_now").
func (m *FulfillmentMetrics) IncCheckoutSession(flow string) {
	if m == nil || m.checkoutSessions == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(normalizeLabel(flow)).Inc()
}

// IncWebhookEvent counts a webhook event by outcome ("processed", "duplicate", "rejected", "ignored").
func (m *FulfillmentMetrics) IncWebhookEvent(outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveOrderCompleted counts one completed order and its revenue.
func (m *FulfillmentMetrics) ObserveOrderCompleted(priceCents int) {
	if m == nil || m.ordersCompleted == nil {
		return
	}
	m.ordersCompleted.Inc()
	if priceCents > 0 {
		m.orderRevenue.Add(float64(priceCents))
	}
}

// IncDownloadServed counts a served download by kind.
func (m *FulfillmentMetrics) IncDownloadServed(kind string) {
	if m == nil || m.downloadsServed == nil {
		return
	}
	m.downloadsServed.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncEmailSent counts a delivery email attempt by outcome ("sent", "failed").
func (m *FulfillmentMetrics) IncEmailSent(outcome string) {
	if m == nil || m.emailsSent == nil {
		return
	}
	m.emailsSent.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
