// Package metrics exposes the Prometheus collectors for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsTotal counts committed ledger mutations by operation.
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "darts_ledger_mutations_total",
		Help: "Committed ledger mutations by operation.",
	}, []string{"operation"})

	// MutationErrors counts rejected or failed mutations by operation.
	MutationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "darts_ledger_mutation_errors_total",
		Help: "Rejected or failed ledger mutations by operation.",
	}, []string{"operation"})

	// RecalcDuration observes full balance recomputation time.
	RecalcDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "darts_ledger_recalc_duration_seconds",
		Help:    "Duration of full balance-sheet recomputation.",
		Buckets: prometheus.DefBuckets,
	})

	// ExportsTotal counts snapshot exports by outcome.
	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "darts_export_snapshots_total",
		Help: "Snapshot exports by outcome.",
	}, []string{"outcome"})
)
