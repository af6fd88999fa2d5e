// Package telemetry exposes Prometheus counters for the daily pipeline. A
// private registry keeps the scrape output to our own series.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// #region registry

var registry = prometheus.NewRegistry()

var (
	runsTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "operator",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Pipeline runs by trigger and outcome",
	}, []string{"trigger", "outcome"}) // outcome: completed | cache_hit | failed

	regenerationsTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "operator",
		Subsystem: "pipeline",
		Name:      "content_regenerations_total",
		Help:      "Directive content regenerations by decision",
	}, []string{"decision"}) // decision: regenerated | skipped_cooldown | skipped_cap | skipped_same_shape

	cardsIssuedTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "operator",
		Subsystem: "cards",
		Name:      "issued_total",
		Help:      "Smart cards minted, by type",
	}, []string{"type"})

	generatorFailures = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "operator",
		Subsystem: "pipeline",
		Name:      "generator_failures_total",
		Help:      "Content generation calls that fell back to templates",
	})

	runDuration = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: "operator",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a pipeline run",
		Buckets:   prometheus.DefBuckets,
	})
)

// #endregion registry

// #region record

// RecordRun counts a pipeline run.
func RecordRun(trigger, outcome string) {
	runsTotal.WithLabelValues(trigger, outcome).Inc()
}

// RecordRegeneration counts a regeneration decision.
func RecordRegeneration(decision string) {
	regenerationsTotal.WithLabelValues(decision).Inc()
}

// RecordCardIssued counts a minted card.
func RecordCardIssued(cardType string) {
	cardsIssuedTotal.WithLabelValues(cardType).Inc()
}

// RecordGeneratorFailure counts a fallback after a failed generation call.
func RecordGeneratorFailure() {
	generatorFailures.Inc()
}

// RecordRunDuration observes a run's wall time in seconds.
func RecordRunDuration(seconds float64) {
	runDuration.Observe(seconds)
}

// #endregion record

// Handler serves the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
