// Package geo joins small-area reference data (region, local authority,
// deprivation decile) onto consolidated deal records.
package geo

import (
	"dealflow/pkg/contracts/domain"
)

// Lookup is the area-code reference table, loaded once per process and
// shared read-only across partner runs.
type Lookup map[string]domain.GeoEntry

// Enrich left-joins the recipient's area code against the lookup. On a match
// the region, local authority and deprivation decile are copied onto the
// record, and the reference coordinates fill in missing recipient
// coordinates. On no match the record is returned unchanged; the boolean
// reports whether a code was present but unresolved, for diagnostics.
func (l Lookup) Enrich(rec *domain.DealRecord) (unresolved bool) {
	if rec.Recipient.AreaCode == nil {
		return false
	}
	entry, ok := l[*rec.Recipient.AreaCode]
	if !ok {
		return true
	}

	if entry.Region != "" {
		region := entry.Region
		rec.Geo.Region = &region
	}
	if entry.LocalAuthority != "" {
		la := entry.LocalAuthority
		rec.Geo.LocalAuthority = &la
	}
	if entry.IMDDecile != nil {
		decile := *entry.IMDDecile
		rec.Geo.IMDDecile = &decile
	}

	// Reference coordinates are a fallback only.
	if rec.Recipient.Latitude == nil && entry.Latitude != nil {
		lat := *entry.Latitude
		rec.Recipient.Latitude = &lat
	}
	if rec.Recipient.Longitude == nil && entry.Longitude != nil {
		long := *entry.Longitude
		rec.Recipient.Longitude = &long
	}
	return false
}

// EnrichAll enriches every record in place and returns the number of
// unresolved area codes.
func (l Lookup) EnrichAll(recs []domain.DealRecord) int {
	unresolved := 0
	for i := range recs {
		if l.Enrich(&recs[i]) {
			unresolved++
		}
	}
	return unresolved
}
