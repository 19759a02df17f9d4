package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Checkouts labels: state
	Checkouts *prometheus.CounterVec
	// CheckoutDuration 一次完整结账流程的耗时
	CheckoutDuration prometheus.Histogram
	Compensations    prometheus.Counter
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "order_checkouts_total",
			Help: "Checkouts by final order state",
		}, []string{"state"}),
		CheckoutDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "order_checkout_duration_seconds",
			Help:    "Duration of the checkout saga",
			Buckets: prometheus.DefBuckets,
		}),
		Compensations: factory.NewCounter(prometheus.CounterOpts{
			Name: "order_checkout_compensations_total",
			Help: "Total number of checkouts that triggered saga compensation",
		}),
	}
}
