package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PricingRequestsTotal counts pricing runs by level and outcome code.
	PricingRequestsTotal *prometheus.CounterVec
	// PricingCartsTotal counts carts priced successfully by level.
	PricingCartsTotal *prometheus.CounterVec
	// PricingDuration records pricing latency in milliseconds.
	PricingDuration *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers pricing Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PricingRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_requests_total",
			Help:      "Count of pricing runs by level and result.",
		}, []string{"level", "result"})
		PricingCartsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_carts_total",
			Help:      "Count of carts priced successfully.",
		}, []string{"level"})
		PricingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pricing_duration_ms",
			Help:      "Pricing latency distribution in milliseconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"level"})

		mustRegisterCollector(reg, PricingRequestsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PricingRequestsTotal = v
			}
		})
		mustRegisterCollector(reg, PricingCartsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PricingCartsTotal = v
			}
		})
		mustRegisterCollector(reg, PricingDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				PricingDuration = v
			}
		})
	})
}

// ObservePricing records the outcome of a pricing run. It is a no-op until
// MustRegisterDomainMetrics has been called.
func ObservePricing(level, result string, carts int, durationMs float64) {
	if PricingRequestsTotal == nil {
		return
	}
	PricingRequestsTotal.WithLabelValues(level, result).Inc()
	PricingDuration.WithLabelValues(level).Observe(durationMs)
	if carts > 0 {
		PricingCartsTotal.WithLabelValues(level).Add(float64(carts))
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
