package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutations, coupon outcomes and persistence health.
// A nil *CartMetrics is valid and records nothing.
type CartMetrics struct {
	mutations       *prometheus.CounterVec
	coupons         *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	persistDuration *prometheus.HistogramVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"op"})
	coupons := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_coupon_applications_total",
		Help: "Coupon application attempts, by result.",
	}, []string{"result"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persistence_failures_total",
		Help: "Failed cart persistence calls, by stage.",
	}, []string{"stage"})
	persistDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_persistence_duration_seconds",
		Help:    "Duration of cart persistence calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	reg.MustRegister(mutations, coupons, persistFailures, persistDuration)
	return &CartMetrics{
		mutations:       mutations,
		coupons:         coupons,
		persistFailures: persistFailures,
		persistDuration: persistDuration,
	}
}

// IncMutation counts one applied mutation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncCoupon counts one coupon application attempt.
func (c *CartMetrics) IncCoupon(result string) {
	if c == nil || c.coupons == nil {
		return
	}
	c.coupons.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncPersistFailure counts a failed load or save.
func (c *CartMetrics) IncPersistFailure(stage string) {
	if c == nil || c.persistFailures == nil {
		return
	}
	c.persistFailures.WithLabelValues(normalizeLabel(stage)).Inc()
}

// ObservePersist records how long a load or save took.
func (c *CartMetrics) ObservePersist(stage string, duration time.Duration) {
	if c == nil || c.persistDuration == nil {
		return
	}
	c.persistDuration.WithLabelValues(normalizeLabel(stage)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
