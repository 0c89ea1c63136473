package domain

import (
	"time"
)

// DealStatus is the lifecycle status of a deal. Raw extracts may carry other
// strings; the consolidation rules only act on the known values.
type DealStatus string

const (
	StatusLive          DealStatus = "live"
	StatusClosed        DealStatus = "closed"
	StatusDidNotProceed DealStatus = "didNotProceed"
	StatusPipeline      DealStatus = "pipeline"
	StatusUnknown       DealStatus = "unknown"
)

// Instrument is an investment mechanism type.
type Instrument string

const (
	InstrumentCredit Instrument = "credit"
	InstrumentEquity Instrument = "equity"
	InstrumentGrants Instrument = "grants"
)

// Instruments lists the instrument types in their canonical order.
var Instruments = []Instrument{InstrumentCredit, InstrumentEquity, InstrumentGrants}

// Organization identifies an organization taking part in a deal.
// Partner extracts frequently omit identifiers, so both fields are nullable.
type Organization struct {
	ID   *string `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}

// Recipient is the organization receiving the investment.
type Recipient struct {
	ID        *string  `json:"id,omitempty"`
	Name      *string  `json:"name,omitempty"`
	Postcode  *string  `json:"postcode,omitempty"`
	AreaCode  *string  `json:"area_code,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// InstrumentAggregate is the per-deal rollup for one instrument type.
// Value is nil when the deal has no legs of this type, which is distinct
// from a deal whose legs sum to zero.
type InstrumentAggregate struct {
	Count     int      `json:"count"`
	Value     *float64 `json:"value,omitempty"`
	CountWith int      `json:"count_with"`
}

// GeoContext is the geography and deprivation context joined onto a deal
// from the area-code reference table. All fields stay nil when the
// recipient's area code has no match.
type GeoContext struct {
	Region         *string `json:"region,omitempty"`
	LocalAuthority *string `json:"local_authority,omitempty"`
	IMDDecile      *int    `json:"imd_decile,omitempty"`
}

// DealRecord is the canonical record for one deal within one partner run.
// ID is unique per partner but not across partners; (Partner, ID) is the
// effective key of the merged output.
type DealRecord struct {
	ID             string       `json:"id" validate:"required"`
	Partner        string       `json:"partner" validate:"required"`
	Status         DealStatus   `json:"status"`
	Value          *float64     `json:"value,omitempty"`
	EstimatedValue *float64     `json:"estimated_value,omitempty"`
	DealDate       *time.Time   `json:"deal_date,omitempty"`
	Classification []string     `json:"classification"`
	Recipient      Recipient    `json:"recipient"`
	ArrangingOrg   Organization `json:"arranging_org"`

	Credit InstrumentAggregate `json:"credit"`
	Equity InstrumentAggregate `json:"equity"`
	Grants InstrumentAggregate `json:"grants"`

	MultiInstrument bool       `json:"multi_instrument"`
	Geo             GeoContext `json:"geo"`

	// Merge-time derivations.
	DealCount   int     `json:"deal_count"`
	RecipientID *string `json:"recipient_id,omitempty"`
	DealYear    *int    `json:"deal_year,omitempty"`
}

// Aggregate returns the rollup for the given instrument type.
func (d *DealRecord) Aggregate(i Instrument) InstrumentAggregate {
	switch i {
	case InstrumentCredit:
		return d.Credit
	case InstrumentEquity:
		return d.Equity
	case InstrumentGrants:
		return d.Grants
	}
	return InstrumentAggregate{}
}

// SetAggregate stores the rollup for the given instrument type.
func (d *DealRecord) SetAggregate(i Instrument, agg InstrumentAggregate) {
	switch i {
	case InstrumentCredit:
		d.Credit = agg
	case InstrumentEquity:
		d.Equity = agg
	case InstrumentGrants:
		d.Grants = agg
	}
}

// SicEntry maps a 5-character zero-padded SIC code to a sector label.
type SicEntry struct {
	Code string `json:"siccode"`
	Name string `json:"name"`
}

// GeoEntry is one row of the small-area reference table.
type GeoEntry struct {
	AreaCode       string   `json:"area_code"`
	Region         string   `json:"region"`
	LocalAuthority string   `json:"local_authority"`
	IMDDecile      *int     `json:"imd_decile,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}
