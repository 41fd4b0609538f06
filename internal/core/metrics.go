package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "valuation_area_cache_lookups_total",
		Help: "Area metric cache lookups by outcome (hit, miss, error).",
	}, []string{"outcome"})

	liveFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "valuation_live_fetch_total",
		Help: "Live geodata fetches by outcome (success, fallback).",
	}, []string{"outcome"})

	liveFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "valuation_live_fetch_duration_seconds",
		Help:    "Duration of live geodata fetches.",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 25},
	})

	economicsResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "valuation_economics_resolutions_total",
		Help: "Economics profile resolutions by source (hub, country, region, default).",
	}, []string{"source"})

	predictionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "valuation_predictions_total",
		Help: "Predictions by currency code.",
	}, []string{"currency"})
)
