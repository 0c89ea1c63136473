// Package merge concatenates per-partner canonical deal tables into the
// cross-partner output dataset.
package merge

import (
	"dealflow/pkg/contracts/domain"
)

// Merge concatenates the partner tables in order and fills in the derived
// summable fields: a constant deal_count of 1, the recipient join key
// (organization ID, falling back to name where a partner's source omits
// identifiers) and the deal year. Deal IDs are deliberately not deduplicated
// across partners; (partner, id) is the effective output key.
func Merge(partnerSets ...[]domain.DealRecord) []domain.DealRecord {
	total := 0
	for _, set := range partnerSets {
		total += len(set)
	}

	merged := make([]domain.DealRecord, 0, total)
	for _, set := range partnerSets {
		for _, rec := range set {
			rec.DealCount = 1
			rec.RecipientID = recipientKey(rec.Recipient)
			if rec.DealDate != nil {
				year := rec.DealDate.Year()
				rec.DealYear = &year
			}
			merged = append(merged, rec)
		}
	}
	return merged
}

func recipientKey(r domain.Recipient) *string {
	if r.ID != nil {
		id := *r.ID
		return &id
	}
	if r.Name != nil {
		name := *r.Name
		return &name
	}
	return nil
}
