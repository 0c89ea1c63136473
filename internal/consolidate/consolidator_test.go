package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealflow/internal/instruments"
	"dealflow/internal/sic"
	"dealflow/pkg/contracts/domain"
)

var testSic = sic.Table{
	"70220": "Professional services",
	"01110": "Agriculture",
}

func consolidate(t *testing.T, rows []domain.ProjectedRow) []domain.DealRecord {
	t.Helper()
	c := New(nil, testSic)
	return c.Consolidate(rows, instruments.AggregateAll(rows))
}

func TestConsolidate_StatusEntryGate(t *testing.T) {
	// Scenario E: a deal that only ever appears in leg rows, never with a
	// status, is absent from the output entirely.
	rows := []domain.ProjectedRow{
		{ID: "d1", Status: ptr("live"), Value: f(100), Partner: "p"},
		{ID: "d2", Credit: domain.LegColumns{LegID: ptr("c1"), Value: f(500)}, Partner: "p"},
	}

	records := consolidate(t, rows)
	require.Len(t, records, 1)
	assert.Equal(t, "d1", records[0].ID)
}

func TestConsolidate_LastRowWins(t *testing.T) {
	rows := []domain.ProjectedRow{
		{ID: "d1", Status: ptr("pipeline"), Value: f(100), RecipientName: ptr("Old Name"), Partner: "p"},
		{ID: "d1", Status: ptr("live"), Value: f(900), Partner: "p"},
	}

	records := consolidate(t, rows)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, domain.StatusLive, rec.Status)
	require.NotNil(t, rec.Value)
	assert.Equal(t, 900.0, *rec.Value)
	// A column that is null on the last row keeps its last known value.
	require.NotNil(t, rec.Recipient.Name)
	assert.Equal(t, "Old Name", *rec.Recipient.Name)
}

func TestConsolidate_ScenarioA(t *testing.T) {
	// live deal, no value, one credit leg, one grants leg with null leg ID.
	rows := []domain.ProjectedRow{
		{
			ID:      "d1",
			Status:  ptr("live"),
			Partner: "p",
			Credit:  domain.LegColumns{LegID: ptr("c1"), Value: f(1000)},
			Grants:  domain.LegColumns{Value: f(400)},
		},
	}

	records := consolidate(t, rows)
	require.Len(t, records, 1)
	rec := records[0]

	assert.Equal(t, domain.StatusPipeline, rec.Status)
	assert.Nil(t, rec.Value)
	assert.Nil(t, rec.EstimatedValue)
	assert.Equal(t, 1, rec.Credit.Count)
	require.NotNil(t, rec.Credit.Value)
	assert.Equal(t, 1000.0, *rec.Credit.Value)
	assert.Equal(t, 0, rec.Grants.Count)
	assert.Nil(t, rec.Grants.Value)
	assert.False(t, rec.MultiInstrument)
}

func TestConsolidate_ScenarioB(t *testing.T) {
	rows := []domain.ProjectedRow{
		{ID: "d1", Status: ptr("didNotProceed"), Value: f(5000), Partner: "p"},
	}

	records := consolidate(t, rows)
	require.Len(t, records, 1)
	assert.Equal(t, domain.StatusDidNotProceed, records[0].Status)
	assert.Nil(t, records[0].Value)
	// The estimate was captured before the value was cleared.
	require.NotNil(t, records[0].EstimatedValue)
	assert.Equal(t, 5000.0, *records[0].EstimatedValue)
}

func TestConsolidate_StatusValueRules(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		value      *float64
		wantStatus domain.DealStatus
		wantValue  *float64
	}{
		{name: "live with value stays live", status: "live", value: f(100), wantStatus: domain.StatusLive, wantValue: f(100)},
		{name: "live without value becomes pipeline", status: "live", wantStatus: domain.StatusPipeline},
		{name: "closed without value becomes unknown", status: "closed", wantStatus: domain.StatusUnknown},
		{name: "closed with value stays closed", status: "closed", value: f(100), wantStatus: domain.StatusClosed, wantValue: f(100)},
		{name: "didNotProceed value cleared", status: "didNotProceed", value: f(100), wantStatus: domain.StatusDidNotProceed},
		{name: "pipeline passes through", status: "pipeline", wantStatus: domain.StatusPipeline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := consolidate(t, []domain.ProjectedRow{
				{ID: "d1", Status: ptr(tt.status), Value: tt.value, Partner: "p"},
			})
			require.Len(t, records, 1)
			assert.Equal(t, tt.wantStatus, records[0].Status)
			if tt.wantValue == nil {
				assert.Nil(t, records[0].Value)
			} else {
				require.NotNil(t, records[0].Value)
				assert.Equal(t, *tt.wantValue, *records[0].Value)
			}
		})
	}
}

func TestConsolidate_StatusValueInvariants(t *testing.T) {
	// For every output record: unknown and didNotProceed imply a null
	// value, live implies a value.
	rows := []domain.ProjectedRow{
		{ID: "d1", Status: ptr("live"), Value: f(10), Partner: "p"},
		{ID: "d2", Status: ptr("live"), Partner: "p"},
		{ID: "d3", Status: ptr("closed"), Partner: "p"},
		{ID: "d4", Status: ptr("didNotProceed"), Value: f(7), Partner: "p"},
	}

	for _, rec := range consolidate(t, rows) {
		switch rec.Status {
		case domain.StatusUnknown, domain.StatusDidNotProceed:
			assert.Nil(t, rec.Value, "deal %s", rec.ID)
		case domain.StatusLive:
			assert.NotNil(t, rec.Value, "deal %s", rec.ID)
		}
	}
}

func TestConsolidate_EstimatedValueFallback(t *testing.T) {
	t.Run("explicit estimate kept", func(t *testing.T) {
		records := consolidate(t, []domain.ProjectedRow{
			{ID: "d1", Status: ptr("live"), Value: f(100), EstimatedValue: f(250), Partner: "p"},
		})
		require.NotNil(t, records[0].EstimatedValue)
		assert.Equal(t, 250.0, *records[0].EstimatedValue)
	})

	t.Run("estimate defaults to value", func(t *testing.T) {
		records := consolidate(t, []domain.ProjectedRow{
			{ID: "d1", Status: ptr("live"), Value: f(100), Partner: "p"},
		})
		require.NotNil(t, records[0].EstimatedValue)
		assert.Equal(t, 100.0, *records[0].EstimatedValue)
	})
}

func TestConsolidate_ClassificationMerge(t *testing.T) {
	rows := []domain.ProjectedRow{
		{
			ID:           "d1",
			Status:       ptr("live"),
			Value:        f(1),
			RecipientSic: ptr("70.22, 99999"),
			Partner:      "p",
		},
		// Titles are collected from rows without a status too.
		{ID: "d1", ProjectClassification: ptr("Community energy"), Partner: "p"},
		{ID: "d1", ProjectClassification: ptr("Community energy"), Partner: "p"},
		{ID: "d1", ProjectClassification: ptr("Arts"), Partner: "p"},
	}

	records := consolidate(t, rows)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Arts", "Community energy", "Professional services"}, records[0].Classification)
}

func TestConsolidate_MultiInstrument(t *testing.T) {
	rows := []domain.ProjectedRow{
		{
			ID:      "d1",
			Status:  ptr("live"),
			Value:   f(1),
			Partner: "p",
			Credit:  domain.LegColumns{LegID: ptr("c1"), Value: f(100)},
		},
		{
			ID:     "d1",
			Equity: domain.LegColumns{LegID: ptr("e1"), Value: f(200)},
		},
	}

	records := consolidate(t, rows)
	require.Len(t, records, 1)
	assert.True(t, records[0].MultiInstrument)
	assert.Equal(t, 1, records[0].Credit.CountWith)
	assert.Equal(t, 1, records[0].Equity.CountWith)
	assert.Equal(t, 0, records[0].Grants.CountWith)
}

func TestConsolidate_InstrumentFlagInvariant(t *testing.T) {
	rows := []domain.ProjectedRow{
		{ID: "d1", Status: ptr("live"), Value: f(1), Partner: "p",
			Credit: domain.LegColumns{LegID: ptr("c1")}},
		{ID: "d2", Status: ptr("closed"), Value: f(2), Partner: "p"},
	}

	for _, rec := range consolidate(t, rows) {
		for _, inst := range domain.Instruments {
			agg := rec.Aggregate(inst)
			assert.Equal(t, agg.Count > 0, agg.CountWith == 1,
				"deal %s instrument %s", rec.ID, inst)
		}
	}
}

func TestConsolidate_DeterministicOrder(t *testing.T) {
	rows := []domain.ProjectedRow{
		{ID: "zz", Status: ptr("live"), Value: f(1), Partner: "p"},
		{ID: "aa", Status: ptr("live"), Value: f(2), Partner: "p"},
	}

	first := consolidate(t, rows)
	second := consolidate(t, rows)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "aa", first[0].ID)
}

func ptr(s string) *string { return &s }
func f(v float64) *float64 { return &v }
