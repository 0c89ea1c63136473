package projector

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"dealflow/pkg/contracts/domain"
)

// ParseKind classifies a cell-level coercion failure.
type ParseKind string

const (
	ParseKindNumeric ParseKind = "numeric"
	ParseKindDate    ParseKind = "date"
)

// ParseError reports a single cell that could not be coerced. The field is
// nulled on the projected row and excluded from downstream aggregation of
// that field; the rest of the row is kept.
type ParseError struct {
	Kind   ParseKind `json:"kind"`
	Row    int       `json:"row"`
	Column string    `json:"column"`
	Value  string    `json:"value"`
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse error at row %d column %q: %q", e.Kind, e.Row, e.Column, e.Value)
}

// Result holds the projected rows plus the cell-level faults encountered.
// Faults never drop a row; they are surfaced for diagnostics only.
type Result struct {
	Rows   []domain.ProjectedRow
	Errors []*ParseError
}

// Projector normalizes heterogeneous raw rows onto the canonical nullable
// column schema with type coercion. Columns a partner's sheet does not carry
// come out nil for every row.
type Projector struct {
	logger *slog.Logger
}

// New creates a projector. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{logger: logger.With(slog.String("component", "projector"))}
}

// Project coerces every raw row onto the canonical schema, tagging each with
// the partner name. Input rows are never mutated.
func (p *Projector) Project(raw []domain.RawRow, partner string) Result {
	res := Result{Rows: make([]domain.ProjectedRow, 0, len(raw))}

	for i, rr := range raw {
		row := domain.ProjectedRow{
			ID:      stringValue(cell(rr, domain.ColID)),
			Partner: partner,

			Status:                cell(rr, domain.ColStatus),
			ProjectClassification: cell(rr, domain.ColProjectClassification),
			RecipientSic:          cell(rr, domain.ColRecipientSic),
			RecipientID:           cell(rr, domain.ColRecipientID),
			RecipientName:         cell(rr, domain.ColRecipientName),
			RecipientPostcode:     cell(rr, domain.ColRecipientPostcode),
			RecipientAreaCode:     cell(rr, domain.ColRecipientAreaCode),
			ArrangingOrgID:        cell(rr, domain.ColArrangingOrgID),
			ArrangingOrgName:      cell(rr, domain.ColArrangingOrgName),
		}

		row.Value = p.number(&res, rr, i, domain.ColValue)
		row.EstimatedValue = p.number(&res, rr, i, domain.ColEstimatedValue)
		row.DealDate = p.date(&res, rr, i, domain.ColDealDate)

		// Coordinates are carried through leniently; they are not part of
		// the designated numeric column set, so a bad cell is just nil.
		row.RecipientLatitude = lenientNumber(cell(rr, domain.ColRecipientLatitude))
		row.RecipientLongitude = lenientNumber(cell(rr, domain.ColRecipientLongitude))

		row.Credit = p.leg(&res, rr, i, domain.InstrumentCredit)
		row.Equity = p.leg(&res, rr, i, domain.InstrumentEquity)
		row.Grants = p.leg(&res, rr, i, domain.InstrumentGrants)

		res.Rows = append(res.Rows, row)
	}

	if len(res.Errors) > 0 {
		p.logger.Warn("projection finished with cell faults",
			slog.String("partner", partner),
			slog.Int("rows", len(res.Rows)),
			slog.Int("faults", len(res.Errors)))
	}
	return res
}

// leg projects one instrument's leg columns. For grants the value is the
// disbursed amount when present, else the committed amount; the two source
// columns are dropped once merged.
func (p *Projector) leg(res *Result, rr domain.RawRow, rowIdx int, inst domain.Instrument) domain.LegColumns {
	leg := domain.LegColumns{
		FundingOrg: domain.Organization{
			ID:   cell(rr, domain.LegColumn(inst, domain.LegFieldFundingOrgID)),
			Name: cell(rr, domain.LegColumn(inst, domain.LegFieldFundingOrgName)),
		},
		LegID:    cell(rr, domain.LegColumn(inst, domain.LegFieldID)),
		Status:   cell(rr, domain.LegColumn(inst, domain.LegFieldStatus)),
		Currency: cell(rr, domain.LegColumn(inst, domain.LegFieldCurrency)),
	}

	if inst == domain.InstrumentGrants {
		disbursed := p.number(res, rr, rowIdx, domain.LegColumn(inst, domain.LegFieldAmountDisbursed))
		committed := p.number(res, rr, rowIdx, domain.LegColumn(inst, domain.LegFieldAmountCommitted))
		if disbursed != nil {
			leg.Value = disbursed
		} else {
			leg.Value = committed
		}
		return leg
	}

	leg.Value = p.number(res, rr, rowIdx, domain.LegColumn(inst, domain.LegFieldValue))
	return leg
}

// number parses a designated numeric column, recording a ParseError and
// returning nil when the cell is non-numeric after separator stripping.
func (p *Projector) number(res *Result, rr domain.RawRow, rowIdx int, col string) *float64 {
	v := cell(rr, col)
	if v == nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(*v), ",", ""), 64)
	if err != nil {
		perr := &ParseError{Kind: ParseKindNumeric, Row: rowIdx, Column: col, Value: *v}
		res.Errors = append(res.Errors, perr)
		p.logger.Debug("cell fault", slog.String("error", perr.Error()))
		return nil
	}
	return &f
}

// dateLayouts are the calendar date formats accepted after month expansion.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

// date parses a date column. A token of exactly year-month length is
// expanded to the first day of that month before parsing.
func (p *Projector) date(res *Result, rr domain.RawRow, rowIdx int, col string) *time.Time {
	v := cell(rr, col)
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if len(s) == 7 {
		s = s + "-01"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	perr := &ParseError{Kind: ParseKindDate, Row: rowIdx, Column: col, Value: *v}
	res.Errors = append(res.Errors, perr)
	p.logger.Debug("cell fault", slog.String("error", perr.Error()))
	return nil
}

// cell reads a raw cell, treating an absent key and an empty string as null.
func cell(rr domain.RawRow, col string) *string {
	v, ok := rr[col]
	if !ok {
		return nil
	}
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

// lenientNumber parses a float without recording a fault on failure.
func lenientNumber(v *string) *float64 {
	if v == nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil {
		return nil
	}
	return &f
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
