// Package pipeline orchestrates partner runs: project, consolidate, enrich,
// then merge across partners. Partner pipelines are independent and a
// failure in one never aborts its siblings.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dealflow/internal/consolidate"
	"dealflow/internal/geo"
	"dealflow/internal/instruments"
	"dealflow/internal/projector"
	"dealflow/internal/sic"
	"dealflow/internal/source"
	"dealflow/pkg/contracts/domain"
)

// Partner binds a partner name to its row source.
type Partner struct {
	Name   string
	Source source.RowSource
}

// Runner executes partner pipelines against the shared reference tables.
type Runner struct {
	logger  *slog.Logger
	sic     sic.Table
	geo     geo.Lookup
	workers int
}

// NewRunner creates a runner. workers bounds the number of partner
// pipelines in flight; values below 1 mean one at a time.
func NewRunner(logger *slog.Logger, sicTable sic.Table, geoLookup geo.Lookup, workers int) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		logger:  logger.With(slog.String("component", "runner")),
		sic:     sicTable,
		geo:     geoLookup,
		workers: workers,
	}
}

// RunPartner executes one partner's pipeline end to end. Row- and
// field-level faults are absorbed into the report; only a source failure or
// cancellation fails the partner.
func (r *Runner) RunPartner(ctx context.Context, p Partner) ([]domain.DealRecord, PartnerReport) {
	logger := r.logger.With(slog.String("partner", p.Name))
	report := PartnerReport{Partner: p.Name}
	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	raw, err := p.Source.Rows(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			report.Err = NewCancelledError(p.Name, err)
		} else {
			report.Err = NewSourceError(p.Name, err)
		}
		logger.Error("partner pipeline failed", slog.String("error", report.Err.Error()))
		partnerRuns.WithLabelValues("failed").Inc()
		return nil, report
	}
	report.RawRows = len(raw)

	projected := projector.New(logger).Project(raw, p.Name)
	report.ParseErrors = len(projected.Errors)
	rowsProjected.WithLabelValues(p.Name).Add(float64(len(projected.Rows)))
	for _, perr := range projected.Errors {
		cellFaults.WithLabelValues(p.Name, string(perr.Kind)).Inc()
	}

	records := consolidate.New(logger, r.sic).Consolidate(
		projected.Rows, instruments.AggregateAll(projected.Rows))
	report.Deals = len(records)
	dealsConsolidated.WithLabelValues(p.Name).Add(float64(len(records)))

	report.UnresolvedGeo = r.geo.EnrichAll(records)
	unresolvedGeoCodes.WithLabelValues(p.Name).Add(float64(report.UnresolvedGeo))

	logger.Info("partner pipeline complete",
		slog.Int("raw_rows", report.RawRows),
		slog.Int("deals", report.Deals),
		slog.Int("parse_errors", report.ParseErrors),
		slog.Int("unresolved_geo", report.UnresolvedGeo),
		slog.Duration("duration", time.Since(start)))
	partnerRuns.WithLabelValues("completed").Inc()
	return records, report
}

// RunAll executes every partner pipeline, bounded by the worker limit, and
// returns the per-partner record sets in partner order alongside the run
// report. The error is non-nil only when the whole run was cancelled.
func (r *Runner) RunAll(ctx context.Context, partners []Partner) ([][]domain.DealRecord, *RunReport, error) {
	report := &RunReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Partners:  make([]PartnerReport, len(partners)),
	}
	logger := r.logger.With(slog.String("run_id", report.RunID))
	logger.Info("run starting",
		slog.Int("partners", len(partners)),
		slog.Int("workers", r.workers))

	results := make([][]domain.DealRecord, len(partners))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, p := range partners {
		i, p := i, p
		g.Go(func() error {
			// Partner failures land in the report, never in the group
			// error; only cancellation between partner units stops the run.
			results[i], report.Partners[i] = r.RunPartner(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = time.Now()
	for _, recs := range results {
		report.TotalDeals += len(recs)
	}

	logger.Info("run finished",
		slog.Int("partners_succeeded", report.Succeeded()),
		slog.Int("partners_failed", len(report.Failures())),
		slog.Int("total_deals", report.TotalDeals),
		slog.Duration("duration", report.Duration()))

	if err := ctx.Err(); err != nil {
		return results, report, err
	}
	return results, report, nil
}
