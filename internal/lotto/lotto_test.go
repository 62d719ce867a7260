package lotto

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDrawingSortsCopy(t *testing.T) {
	in := []int{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	d, err := NewDrawing(in)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, d.Numbers)
	assert.Equal(t, 15, in[0], "input untouched")
	assert.Equal(t, 120, d.Sum())
	assert.True(t, d.Contains(7))
	assert.False(t, d.Contains(16))
}

func TestValidateNumbers(t *testing.T) {
	tests := []struct {
		name   string
		nums   []int
		reason string
	}{
		{"short", []int{1, 2, 3}, "want 15 numbers, got 3"},
		{"zero", []int{0, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, "number 0 out of range [1,25]"},
		{"high", []int{26, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, "number 26 out of range [1,25]"},
		{"duplicate", []int{2, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, "duplicate number 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNumbers("pick", tc.nums)
			var inErr *InvalidInputError
			require.ErrorAs(t, err, &inErr)
			assert.Equal(t, "pick", inErr.Field)
			assert.Equal(t, tc.reason, inErr.Reason)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.False(t, errors.Is(err, ErrUnknownTier))
		})
	}
}

func TestHistoryValidateNamesDrawing(t *testing.T) {
	h := History{
		MustDrawing(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15),
		{Numbers: []int{1, 2}},
	}
	err := h.Validate()
	var inErr *InvalidInputError
	require.ErrorAs(t, err, &inErr)
	assert.Equal(t, "history[1]", inErr.Field)
	assert.EqualError(t, err, "invalid history[1]: want 15 numbers, got 2")

	latest, ok := h.Latest()
	assert.True(t, ok)
	assert.Equal(t, h[0], latest)
	_, ok = History{}.Latest()
	assert.False(t, ok)
}

func TestMustDrawingPanics(t *testing.T) {
	assert.Panics(t, func() { MustDrawing(1, 2, 3) })
}

func TestPrizeTable(t *testing.T) {
	table, err := NewPrizeTable([]PrizeTier{
		{Hits: 13, Payout: decimal.NewFromInt(30)},
		{Hits: 11, Payout: decimal.NewFromInt(6)},
	})
	require.NoError(t, err)
	assert.Equal(t, 11, table[0].Hits)
	assert.Equal(t, 11, table.MinHits())
	assert.Equal(t, 0, PrizeTable{}.MinHits())

	tier, ok := table.Lookup(13)
	assert.True(t, ok)
	assert.True(t, tier.Payout.Equal(decimal.NewFromInt(30)))
	_, ok = table.Lookup(12)
	assert.False(t, ok)

	require.NoError(t, ReferenceTable().Validate())
	assert.Len(t, ReferenceTable(), 5)
}

func TestPrizeTableValidate(t *testing.T) {
	tests := []struct {
		name  string
		tiers []PrizeTier
		hits  int
	}{
		{"duplicate", []PrizeTier{{Hits: 12}, {Hits: 12}}, 12},
		{"zero", []PrizeTier{{Hits: 0}}, 0},
		{"above pick size", []PrizeTier{{Hits: 16}}, 16},
		{"negative payout", []PrizeTier{{Hits: 11, Payout: decimal.NewFromInt(-1)}}, 11},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPrizeTable(tc.tiers)
			var tierErr *UnknownTierError
			require.ErrorAs(t, err, &tierErr)
			assert.Equal(t, tc.hits, tierErr.Hits)
			assert.ErrorIs(t, err, ErrUnknownTier)
		})
	}
}

func TestOfficialValidate(t *testing.T) {
	o := Official{Drawing: MustDrawing(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15), Prizes: ReferenceTable()}
	assert.NoError(t, o.Validate())

	o.Prizes = append(o.Prizes, PrizeTier{Hits: 11})
	assert.ErrorIs(t, o.Validate(), ErrUnknownTier)

	o.Drawing = Drawing{}
	assert.ErrorIs(t, o.Validate(), ErrInvalidInput)
}
