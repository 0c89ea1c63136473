package domain

import (
	"time"
)

// RawRow is one flattened input row keyed by the canonical slash-delimited
// column paths. Cell values arrive as strings straight from the sheet; an
// absent key and an empty string both mean null.
type RawRow map[string]string

// Canonical column paths for the deal-level scalar fields.
const (
	ColID             = "id"
	ColStatus         = "status"
	ColValue          = "value"
	ColEstimatedValue = "estimatedValue"
	ColDealDate       = "dealDate"
	ColPartner        = "meta/partner"

	ColProjectClassification = "projects/0/classification/0/title"

	ColRecipientSic       = "recipientOrganization/industryClassifications"
	ColRecipientID        = "recipientOrganization/id"
	ColRecipientName      = "recipientOrganization/name"
	ColRecipientPostcode  = "recipientOrganization/location/0/postCode"
	ColRecipientAreaCode  = "recipientOrganization/location/0/geoCode"
	ColRecipientLatitude  = "recipientOrganization/location/0/latitude"
	ColRecipientLongitude = "recipientOrganization/location/0/longitude"

	ColArrangingOrgID   = "arrangingOrganization/id"
	ColArrangingOrgName = "arrangingOrganization/name"
)

// Per-instrument column paths, e.g. "investments/credit/0/value".
const (
	colInvestmentPrefix = "investments/"

	LegFieldFundingOrgID   = "fundingOrganization/id"
	LegFieldFundingOrgName = "fundingOrganization/name"
	LegFieldID             = "id"
	LegFieldStatus         = "status"
	LegFieldCurrency       = "currency"
	LegFieldValue          = "value"

	// Grants legs report amounts instead of a single value column.
	LegFieldAmountDisbursed = "amountDisbursed"
	LegFieldAmountCommitted = "amountCommitted"
)

// LegColumn builds the canonical path for one field of an instrument leg.
func LegColumn(i Instrument, field string) string {
	return colInvestmentPrefix + string(i) + "/0/" + field
}

// LegColumns is the projection of one investment leg's columns on a row.
// A row carries at most one leg per instrument type.
type LegColumns struct {
	FundingOrg Organization
	LegID      *string
	Status     *string
	Currency   *string
	Value      *float64
}

// ProjectedRow is a RawRow coerced onto the canonical nullable schema.
type ProjectedRow struct {
	ID             string
	Status         *string
	Value          *float64
	EstimatedValue *float64
	DealDate       *time.Time
	Partner        string

	ProjectClassification *string

	RecipientSic       *string
	RecipientID        *string
	RecipientName      *string
	RecipientPostcode  *string
	RecipientAreaCode  *string
	RecipientLatitude  *float64
	RecipientLongitude *float64

	ArrangingOrgID   *string
	ArrangingOrgName *string

	Credit LegColumns
	Equity LegColumns
	Grants LegColumns
}

// Leg returns the leg columns for the given instrument type.
func (r *ProjectedRow) Leg(i Instrument) LegColumns {
	switch i {
	case InstrumentCredit:
		return r.Credit
	case InstrumentEquity:
		return r.Equity
	case InstrumentGrants:
		return r.Grants
	}
	return LegColumns{}
}
