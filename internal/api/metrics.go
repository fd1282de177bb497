package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchengine_recommendations_total",
		Help: "Number of recommendation requests served.",
	})

	recommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchengine_recommend_duration_seconds",
		Help:    "End-to-end latency of recommendation requests.",
		Buckets: prometheus.DefBuckets,
	})

	ruleVerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchengine_rule_verdicts_total",
		Help: "Rule evaluation outcomes across all scored candidates.",
	}, []string{"verdict"})

	catalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchengine_catalog_schemes",
		Help: "Number of schemes currently loaded in the catalog.",
	})
)
