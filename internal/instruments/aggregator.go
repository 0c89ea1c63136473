// Package instruments rolls investment-leg rows up to one aggregate per
// deal per instrument type.
package instruments

import (
	"dealflow/pkg/contracts/domain"
)

// Rollup maps deal ID to the per-instrument aggregate. Deals with no legs of
// the instrument type are absent; the consolidator supplies the defaults
// (count 0, nil value) on join.
type Rollup map[string]domain.InstrumentAggregate

// legKey identifies one investment leg within a partner run.
type legKey struct {
	dealID string
	legID  string
}

// Aggregate groups the legs of one instrument type by deal. Rows without a
// leg ID are excluded; duplicate (deal, leg) keys keep the last-seen row,
// mirroring the deal-level tie-break. The aggregate value is the sum of leg
// values with nulls excluded, so a deal whose legs all lack values sums to
// zero while a deal with no legs at all stays out of the rollup entirely.
func Aggregate(rows []domain.ProjectedRow, inst domain.Instrument) Rollup {
	legs := make(map[legKey]*float64)
	dealOrder := make(map[string][]legKey)

	for _, row := range rows {
		leg := row.Leg(inst)
		if leg.LegID == nil {
			continue
		}
		key := legKey{dealID: row.ID, legID: *leg.LegID}
		if _, seen := legs[key]; !seen {
			dealOrder[row.ID] = append(dealOrder[row.ID], key)
		}
		legs[key] = leg.Value
	}

	rollup := make(Rollup, len(dealOrder))
	for dealID, keys := range dealOrder {
		agg := domain.InstrumentAggregate{Count: len(keys)}
		var sum float64
		for _, key := range keys {
			if v := legs[key]; v != nil {
				sum += *v
			}
		}
		agg.Value = &sum
		if agg.Count > 0 {
			agg.CountWith = 1
		}
		rollup[dealID] = agg
	}
	return rollup
}

// AggregateAll computes the rollup for every instrument type.
func AggregateAll(rows []domain.ProjectedRow) map[domain.Instrument]Rollup {
	out := make(map[domain.Instrument]Rollup, len(domain.Instruments))
	for _, inst := range domain.Instruments {
		out[inst] = Aggregate(rows, inst)
	}
	return out
}
