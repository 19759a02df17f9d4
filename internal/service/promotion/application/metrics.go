package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultApplied        = "applied"
	resultAlreadyApplied = "already_applied"
	resultNotEligible    = "not_eligible"
	resultInactive       = "inactive"
	resultNotFound       = "not_found"
	resultError          = "error"
)

type Metrics struct {
	// Applications labels: result
	Applications *prometheus.CounterVec
	// AdjustmentsCreated 免运费等动作新建的调整数
	AdjustmentsCreated prometheus.Counter
	AdjustmentsRemoved prometheus.Counter
	// LockWait 等待订单促销锁的耗时
	LockWait prometheus.Histogram
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Applications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "promotion_applications_total",
			Help: "Promotion code applications by result",
		}, []string{"result"}),
		AdjustmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "promotion_adjustments_created_total",
			Help: "Total number of promotion adjustments attached to shipments",
		}),
		AdjustmentsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "promotion_adjustments_removed_total",
			Help: "Total number of promotion adjustments removed from shipments",
		}),
		LockWait: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "promotion_lock_wait_seconds",
			Help:    "Time spent waiting for the order promotion lock",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
