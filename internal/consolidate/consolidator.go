// Package consolidate collapses the many rows of a partner extract into one
// canonical record per deal, reconciling status against value and merging
// classifications.
package consolidate

import (
	"log/slog"
	"sort"
	"time"

	"dealflow/internal/instruments"
	"dealflow/internal/sic"
	"dealflow/pkg/contracts/domain"
)

// Consolidator builds canonical deal records from projected rows. The SIC
// table is shared read-only across partner runs.
type Consolidator struct {
	logger *slog.Logger
	sic    sic.Table
}

// New creates a consolidator. A nil logger falls back to slog.Default.
func New(logger *slog.Logger, table sic.Table) *Consolidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consolidator{
		logger: logger.With(slog.String("component", "consolidator")),
		sic:    table,
	}
}

// scalars accumulates the deal-level scalar columns for one deal. Later rows
// overwrite earlier ones column by column, but only with non-null values, so
// the consolidated record carries the last known value of each field.
type scalars struct {
	status         *string
	value          *float64
	estimatedValue *float64
	dealDate       *time.Time
	partner        string

	recipientSic       *string
	recipientID        *string
	recipientName      *string
	recipientPostcode  *string
	recipientAreaCode  *string
	recipientLatitude  *float64
	recipientLongitude *float64

	arrangingOrgID   *string
	arrangingOrgName *string
}

func (s *scalars) absorb(row *domain.ProjectedRow) {
	s.partner = row.Partner
	takeString(&s.status, row.Status)
	takeFloat(&s.value, row.Value)
	takeFloat(&s.estimatedValue, row.EstimatedValue)
	if row.DealDate != nil {
		d := *row.DealDate
		s.dealDate = &d
	}
	takeString(&s.recipientSic, row.RecipientSic)
	takeString(&s.recipientID, row.RecipientID)
	takeString(&s.recipientName, row.RecipientName)
	takeString(&s.recipientPostcode, row.RecipientPostcode)
	takeString(&s.recipientAreaCode, row.RecipientAreaCode)
	takeFloat(&s.recipientLatitude, row.RecipientLatitude)
	takeFloat(&s.recipientLongitude, row.RecipientLongitude)
	takeString(&s.arrangingOrgID, row.ArrangingOrgID)
	takeString(&s.arrangingOrgName, row.ArrangingOrgName)
}

// Consolidate produces one DealRecord per deal ID. Deal IDs that never
// appear with a non-null status are excluded entirely; that is the entry
// gate, not an error. Output is sorted by deal ID.
func (c *Consolidator) Consolidate(rows []domain.ProjectedRow, rollups map[domain.Instrument]instruments.Rollup) []domain.DealRecord {
	deals := make(map[string]*scalars)
	titles := make(map[string][]string)

	for i := range rows {
		row := &rows[i]
		if row.ID == "" {
			continue
		}

		// Project classification titles come from every row of the deal,
		// status-bearing or not.
		if row.ProjectClassification != nil {
			titles[row.ID] = append(titles[row.ID], *row.ProjectClassification)
		}

		if row.Status == nil {
			continue
		}
		s, ok := deals[row.ID]
		if !ok {
			s = &scalars{}
			deals[row.ID] = s
		}
		s.absorb(row)
	}

	ids := make([]string, 0, len(deals))
	for id := range deals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]domain.DealRecord, 0, len(ids))
	for _, id := range ids {
		s := deals[id]
		rec := domain.DealRecord{
			ID:             id,
			Partner:        s.partner,
			Value:          s.value,
			EstimatedValue: s.estimatedValue,
			DealDate:       s.dealDate,
			Recipient: domain.Recipient{
				ID:        s.recipientID,
				Name:      s.recipientName,
				Postcode:  s.recipientPostcode,
				AreaCode:  s.recipientAreaCode,
				Latitude:  s.recipientLatitude,
				Longitude: s.recipientLongitude,
			},
			ArrangingOrg: domain.Organization{
				ID:   s.arrangingOrgID,
				Name: s.arrangingOrgName,
			},
		}
		if s.status != nil {
			rec.Status = domain.DealStatus(*s.status)
		}

		c.applyStatusValueRules(&rec)
		rec.Classification = c.mergeClassification(s.recipientSic, titles[id])
		c.joinInstruments(&rec, rollups)

		records = append(records, rec)
	}

	c.logger.Debug("consolidation complete",
		slog.Int("input_rows", len(rows)),
		slog.Int("deals", len(records)))
	return records
}

// applyStatusValueRules reconciles status against value. The rules run in a
// fixed order; each may act on the previous one's output.
func (c *Consolidator) applyStatusValueRules(rec *domain.DealRecord) {
	// An estimate defaults to the reported value.
	if rec.EstimatedValue == nil {
		rec.EstimatedValue = rec.Value
	}

	// A live deal must have a value; without one it is still in pipeline.
	if rec.Status == domain.StatusLive && rec.Value == nil {
		rec.Status = domain.StatusPipeline
	}

	// A closed deal without a value has an unknown outcome.
	if rec.Status == domain.StatusClosed && rec.Value == nil {
		rec.Status = domain.StatusUnknown
	}

	// A deal that did not proceed cannot carry a value.
	if rec.Status == domain.StatusDidNotProceed && rec.Value != nil {
		rec.Value = nil
	}
}

// mergeClassification unions the resolved SIC sector labels with the
// distinct project classification titles recorded for the deal. The result
// is sorted so repeated runs produce identical records.
func (c *Consolidator) mergeClassification(rawSic *string, titles []string) []string {
	seen := make(map[string]struct{})
	for _, label := range c.sic.Resolve(rawSic) {
		seen[label] = struct{}{}
	}
	for _, title := range titles {
		seen[title] = struct{}{}
	}

	merged := make([]string, 0, len(seen))
	for label := range seen {
		merged = append(merged, label)
	}
	sort.Strings(merged)
	return merged
}

// joinInstruments left-joins the per-instrument rollups; a missing join
// defaults to count 0 and a nil value.
func (c *Consolidator) joinInstruments(rec *domain.DealRecord, rollups map[domain.Instrument]instruments.Rollup) {
	withCount := 0
	for _, inst := range domain.Instruments {
		agg, ok := rollups[inst][rec.ID]
		if !ok {
			agg = domain.InstrumentAggregate{}
		}
		rec.SetAggregate(inst, agg)
		withCount += agg.CountWith
	}
	rec.MultiInstrument = withCount > 1
}

func takeString(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}

func takeFloat(dst **float64, v *float64) {
	if v != nil {
		f := *v
		*dst = &f
	}
}
