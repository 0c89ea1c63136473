package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealflow/pkg/contracts/domain"
)

func TestMerge_NoCrossPartnerDedupe(t *testing.T) {
	// Scenario D: the same raw deal ID reported by two partners stays as
	// two rows keyed by (partner, id).
	a := []domain.DealRecord{{ID: "123", Partner: "partner-a"}}
	b := []domain.DealRecord{{ID: "123", Partner: "partner-b"}}

	merged := Merge(a, b)
	require.Len(t, merged, 2)
	assert.Equal(t, "partner-a", merged[0].Partner)
	assert.Equal(t, "partner-b", merged[1].Partner)
	assert.Equal(t, merged[0].ID, merged[1].ID)
}

func TestMerge_DealCount(t *testing.T) {
	merged := Merge([]domain.DealRecord{{ID: "1"}, {ID: "2"}})
	require.Len(t, merged, 2)
	for _, rec := range merged {
		assert.Equal(t, 1, rec.DealCount)
	}
}

func TestMerge_RecipientIDFallback(t *testing.T) {
	id, name := "org-1", "Hope Trust"

	tests := []struct {
		name      string
		recipient domain.Recipient
		want      *string
	}{
		{name: "id preferred", recipient: domain.Recipient{ID: &id, Name: &name}, want: &id},
		{name: "name fallback", recipient: domain.Recipient{Name: &name}, want: &name},
		{name: "neither", recipient: domain.Recipient{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge([]domain.DealRecord{{ID: "1", Recipient: tt.recipient}})
			require.Len(t, merged, 1)
			if tt.want == nil {
				assert.Nil(t, merged[0].RecipientID)
			} else {
				require.NotNil(t, merged[0].RecipientID)
				assert.Equal(t, *tt.want, *merged[0].RecipientID)
			}
		})
	}
}

func TestMerge_DealYear(t *testing.T) {
	date := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	merged := Merge([]domain.DealRecord{
		{ID: "1", DealDate: &date},
		{ID: "2"},
	})

	require.Len(t, merged, 2)
	require.NotNil(t, merged[0].DealYear)
	assert.Equal(t, 2019, *merged[0].DealYear)
	assert.Nil(t, merged[1].DealYear)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge())
	assert.Empty(t, Merge(nil, nil))
}
