package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealflow/pkg/contracts/domain"
)

func sampleDeal() domain.DealRecord {
	value := 1500.0
	date := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	year := 2019
	recipientID := "org-1"
	name := "Hope Trust"
	region := "London"
	decile := 4
	creditValue := 1000.0

	return domain.DealRecord{
		ID:             "d1",
		Partner:        "partner-a",
		Status:         domain.StatusLive,
		Value:          &value,
		EstimatedValue: &value,
		DealDate:       &date,
		DealYear:       &year,
		Classification: []string{"Arts", "Professional services"},
		Recipient:      domain.Recipient{Name: &name},
		RecipientID:    &recipientID,
		Credit:         domain.InstrumentAggregate{Count: 1, Value: &creditValue, CountWith: 1},
		DealCount:      1,
		Geo:            domain.GeoContext{Region: &region, IMDDecile: &decile},
	}
}

func readBack(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteDeals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "deals.csv")
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteDeals(path, []domain.DealRecord{sampleDeal()}))

	rows := readBack(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])

	row := rows[1]
	cell := func(name string) string {
		for i, h := range Header {
			if h == name {
				return row[i]
			}
		}
		t.Fatalf("no column %q", name)
		return ""
	}

	assert.Equal(t, "partner-a", cell("partner"))
	assert.Equal(t, "d1", cell("id"))
	assert.Equal(t, "live", cell("status"))
	assert.Equal(t, "1500", cell("value"))
	assert.Equal(t, "2019-03-01", cell("dealDate"))
	assert.Equal(t, "2019", cell("deal_year"))
	assert.Equal(t, "org-1", cell("recipient_id"))
	assert.Equal(t, "1", cell("credit_count"))
	assert.Equal(t, "1000", cell("credit_value"))
	assert.Equal(t, "1", cell("count_with_credit"))
	assert.Equal(t, "0", cell("equity_count"))
	assert.Equal(t, "", cell("equity_value"))
	assert.Equal(t, "false", cell("multi_instrument"))
	assert.Equal(t, "1", cell("deal_count"))
	assert.Equal(t, "London", cell("region"))
	assert.Equal(t, "4", cell("imd_decile"))

	// The classification list round-trips through its JSON cell encoding.
	var classification []string
	require.NoError(t, json.Unmarshal([]byte(cell("classification")), &classification))
	assert.Equal(t, []string{"Arts", "Professional services"}, classification)
}

func TestWriteDeals_NullsAreEmptyCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.csv")
	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteDeals(path, []domain.DealRecord{
		{ID: "d1", Partner: "p", Status: domain.StatusUnknown, DealCount: 1},
	}))

	rows := readBack(t, path)
	require.Len(t, rows, 2)
	require.Len(t, rows[1], len(Header))

	byName := map[string]string{}
	for i, h := range Header {
		byName[h] = rows[1][i]
	}
	assert.Empty(t, byName["value"])
	assert.Empty(t, byName["dealDate"])
	assert.Empty(t, byName["region"])
	assert.Equal(t, "[]", byName["classification"])
}

func TestWriteDeals_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.csv")
	require.NoError(t, NewCSVWriter(nil).WriteDeals(path, nil))

	rows := readBack(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, Header, rows[0])
}
