package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CascadeItemRewrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pantrypal", Name: "cascade_item_rewrites_total", Help: "Number of pantry items rewritten by category cascades, by operation."},
		[]string{"op"},
	)
	CascadeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pantrypal", Name: "cascade_failures_total", Help: "Number of item writes that failed mid-cascade, by operation."},
		[]string{"op"},
	)
	SyncCategoriesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "pantrypal", Name: "sync_categories_created_total", Help: "Number of missing category documents re-created by the pantry sync repair."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pantrypal", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "pantrypal", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(CascadeItemRewrites)
	reg.MustRegister(CascadeFailures)
	reg.MustRegister(SyncCategoriesCreated)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
