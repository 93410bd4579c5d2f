package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reviewConflicts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_review_conflicts_total",
		Help: "Optimistic concurrency conflicts on review mutations, by outcome (retried or exhausted)",
	},
	[]string{"operation", "outcome"},
)

var reviewEventFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_review_event_failures_total",
		Help: "Review events that could not be published after a committed mutation",
	},
	[]string{"event_type"},
)
