package pipeline

import (
	"time"
)

// PartnerReport summarizes one partner's run.
type PartnerReport struct {
	Partner       string        `json:"partner"`
	RawRows       int           `json:"raw_rows"`
	Deals         int           `json:"deals"`
	ParseErrors   int           `json:"parse_errors"`
	UnresolvedGeo int           `json:"unresolved_geo"`
	Duration      time.Duration `json:"duration"`
	Err           *PartnerError `json:"error,omitempty"`
}

// Failed reports whether the partner's contribution was excluded.
func (r *PartnerReport) Failed() bool {
	return r.Err != nil
}

// RunReport is the per-run summary surfaced to the caller. Partner entries
// appear in partner order regardless of completion order.
type RunReport struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Partners   []PartnerReport `json:"partners"`
	TotalDeals int             `json:"total_deals"`
}

// Failures returns the whole-partner faults collected during the run.
func (r *RunReport) Failures() []*PartnerError {
	var failures []*PartnerError
	for i := range r.Partners {
		if r.Partners[i].Err != nil {
			failures = append(failures, r.Partners[i].Err)
		}
	}
	return failures
}

// Succeeded counts the partners whose contribution reached the merge.
func (r *RunReport) Succeeded() int {
	n := 0
	for i := range r.Partners {
		if r.Partners[i].Err == nil {
			n++
		}
	}
	return n
}

// Duration is the wall-clock time of the whole run.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
