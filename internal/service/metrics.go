package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemDeltaTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "item_stats_deltas_total",
			Help: "Incremental item stats updates by outcome",
		},
		[]string{"outcome"},
	)

	itemVersionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "item_stats_version_conflicts_total",
			Help: "Optimistic concurrency conflicts on item stats writes",
		},
	)

	itemStatsRepairs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "item_stats_repairs_total",
			Help: "Full re-scan repairs of item stats after exhausted retries",
		},
	)

	businessRecomputesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "business_rating_recomputes_total",
			Help: "Business rating recomputes by outcome",
		},
		[]string{"outcome"},
	)

	trustRecalcTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_recalculations_total",
			Help: "Trust score recalculations by outcome",
		},
		[]string{"outcome"},
	)
)
