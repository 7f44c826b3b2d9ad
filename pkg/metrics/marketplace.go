package metrics

import "github.com/prometheus/client_golang/prometheus"

// MarketplaceMetrics counts the domain events operators watch.
type MarketplaceMetrics struct {
	ordersPlaced    prometheus.Counter
	ordersRejected  *prometheus.CounterVec
	reviewsCreated  prometheus.Counter
	outboxPublished prometheus.Counter
	outboxFailed    prometheus.Counter
}

// NewMarketplaceMetrics registers the marketplace counters on the provided registerer.
func NewMarketplaceMetrics(reg prometheus.Registerer) *MarketplaceMetrics {
	if reg == nil {
		return &MarketplaceMetrics{}
	}
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders successfully placed.",
	})
	ordersRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Order placements rejected, by reason.",
	}, []string{"reason"})
	reviewsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reviews_created_total",
		Help: "Reviews successfully created.",
	})
	outboxPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events published to Pub/Sub.",
	})
	outboxFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox publish attempts that failed.",
	})
	reg.MustRegister(ordersPlaced, ordersRejected, reviewsCreated, outboxPublished, outboxFailed)
	return &MarketplaceMetrics{
		ordersPlaced:    ordersPlaced,
		ordersRejected:  ordersRejected,
		reviewsCreated:  reviewsCreated,
		outboxPublished: outboxPublished,
		outboxFailed:    outboxFailed,
	}
}

// IncOrderPlaced counts a successful order placement.
func (m *MarketplaceMetrics) IncOrderPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// IncOrderRejected counts a rejected placement with its reason.
func (m *MarketplaceMetrics) IncOrderRejected(reason string) {
	if m == nil || m.ordersRejected == nil {
		return
	}
	m.ordersRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncReviewCreated counts a successful review write.
func (m *MarketplaceMetrics) IncReviewCreated() {
	if m == nil || m.reviewsCreated == nil {
		return
	}
	m.reviewsCreated.Inc()
}

// IncOutboxPublished counts a published outbox event.
func (m *MarketplaceMetrics) IncOutboxPublished() {
	if m == nil || m.outboxPublished == nil {
		return
	}
	m.outboxPublished.Inc()
}

// IncOutboxFailed counts a failed outbox publish attempt.
func (m *MarketplaceMetrics) IncOutboxFailed() {
	if m == nil || m.outboxFailed == nil {
		return
	}
	m.outboxFailed.Inc()
}
