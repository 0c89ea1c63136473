package exporter

import (
	"encoding/json"
	"strconv"

	"dealflow/pkg/contracts/domain"
)

// dealRecord flattens one deal onto the Header column order. Null fields
// become empty cells.
func dealRecord(d *domain.DealRecord) ([]string, error) {
	labels := d.Classification
	if labels == nil {
		labels = []string{}
	}
	classification, err := json.Marshal(labels)
	if err != nil {
		return nil, err
	}

	record := []string{
		d.Partner,
		d.ID,
		string(d.Status),
		formatFloat(d.Value),
		formatFloat(d.EstimatedValue),
		formatDate(d),
		formatIntPtr(d.DealYear),
		string(classification),
		formatStringPtr(d.RecipientID),
		formatStringPtr(d.Recipient.Name),
		formatStringPtr(d.Recipient.Postcode),
		formatStringPtr(d.Recipient.AreaCode),
		formatFloat(d.Recipient.Latitude),
		formatFloat(d.Recipient.Longitude),
		formatStringPtr(d.ArrangingOrg.ID),
		formatStringPtr(d.ArrangingOrg.Name),
	}
	for _, inst := range domain.Instruments {
		agg := d.Aggregate(inst)
		record = append(record,
			strconv.Itoa(agg.Count),
			formatFloat(agg.Value),
			strconv.Itoa(agg.CountWith),
		)
	}
	record = append(record,
		strconv.FormatBool(d.MultiInstrument),
		strconv.Itoa(d.DealCount),
		formatStringPtr(d.Geo.Region),
		formatStringPtr(d.Geo.LocalAuthority),
		formatIntPtr(d.Geo.IMDDecile),
	)
	return record, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatStringPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatDate(d *domain.DealRecord) string {
	if d.DealDate == nil {
		return ""
	}
	return d.DealDate.Format("2006-01-02")
}
