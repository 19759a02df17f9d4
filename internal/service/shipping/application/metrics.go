package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 报价相关的 Prometheus 指标
type Metrics struct {
	// RatesEstimated 每次报价返回的报价条数，labels: display
	RatesEstimated *prometheus.CounterVec
	// EmptyEstimates 没有任何可用报价的请求数
	EmptyEstimates prometheus.Counter
	// CacheRequests labels: result = hit | miss | error
	CacheRequests *prometheus.CounterVec
	// EstimateDuration 单个包裹报价耗时
	EstimateDuration prometheus.Histogram
}

// NewMetrics registry 为空时注册到默认 registry
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		RatesEstimated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shipping_rates_estimated_total",
			Help: "Total number of shipping rates returned to callers",
		}, []string{"display"}),
		EmptyEstimates: factory.NewCounter(prometheus.CounterOpts{
			Name: "shipping_rate_empty_estimates_total",
			Help: "Total number of packages for which no shipping rate was available",
		}),
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shipping_rate_cache_requests_total",
			Help: "Shipping rate cache lookups by result",
		}, []string{"result"}),
		EstimateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "shipping_rate_estimate_duration_seconds",
			Help:    "Time spent estimating rates for one package",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
