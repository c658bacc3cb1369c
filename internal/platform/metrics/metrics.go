// Package metrics exposes Prometheus counters for the summary pipeline.
// Counters register on the default registry; an embedding host decides how
// (and whether) to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ParsesTotal counts parse invocations by outcome ("success", "failure").
	ParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_parses_total",
			Help: "Total number of bundle parse invocations",
		},
		[]string{"result"},
	)

	// ResourcesSkippedTotal counts resources dropped from a parse, by resource
	// kind and reason ("unsupported", "mapping-error").
	ResourcesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_resources_skipped_total",
			Help: "Total number of bundle resources skipped during normalization",
		},
		[]string{"kind", "reason"},
	)

	// CodeLookupsTotal counts terminology resolutions by where the display
	// came from ("cache", "gateway", "table", "echo").
	CodeLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_code_lookups_total",
			Help: "Total number of terminology code resolutions by source",
		},
		[]string{"source"},
	)

	// ReferenceMissesTotal counts unresolved in-bundle references.
	ReferenceMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_reference_misses_total",
			Help: "Total number of in-bundle references that could not be resolved",
		},
	)
)
