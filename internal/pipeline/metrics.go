package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Diagnostics counters. The spec treats unresolved codes and cell faults as
// countable, non-fatal conditions; counters are the cheapest way to keep
// them observable without threading them through every return value.
var (
	rowsProjected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealflow",
		Name:      "rows_projected_total",
		Help:      "Raw rows projected onto the canonical schema, per partner.",
	}, []string{"partner"})

	cellFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealflow",
		Name:      "cell_faults_total",
		Help:      "Cells nulled by numeric/date coercion failures.",
	}, []string{"partner", "kind"})

	unresolvedGeoCodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealflow",
		Name:      "unresolved_geo_codes_total",
		Help:      "Recipient area codes with no reference-table match.",
	}, []string{"partner"})

	partnerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealflow",
		Name:      "partner_runs_total",
		Help:      "Partner pipeline outcomes.",
	}, []string{"status"})

	dealsConsolidated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealflow",
		Name:      "deals_consolidated_total",
		Help:      "Canonical deal records produced, per partner.",
	}, []string{"partner"})
)
