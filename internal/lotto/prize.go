package lotto

import (
	"slices"

	"github.com/shopspring/decimal"
)

// PrizeTable is the set of paying tiers of one contest, sorted by ascending hits.
type PrizeTable []PrizeTier

// NewPrizeTable validates tiers and returns them sorted by hit threshold.
func NewPrizeTable(tiers []PrizeTier) (PrizeTable, error) {
	t := PrizeTable(slices.Clone(tiers))
	if err := t.Validate(); err != nil {
		return nil, err
	}
	slices.SortFunc(t, func(a, b PrizeTier) int { return a.Hits - b.Hits })
	return t, nil
}

// Validate rejects duplicate thresholds, thresholds outside [1,PickSize] and negative payouts.
func (t PrizeTable) Validate() error {
	var seen [PickSize + 1]bool
	for _, tier := range t {
		if tier.Hits < 1 || tier.Hits > PickSize {
			return &UnknownTierError{Hits: tier.Hits, Reason: "threshold out of range"}
		}
		if seen[tier.Hits] {
			return &UnknownTierError{Hits: tier.Hits, Reason: "duplicate threshold"}
		}
		seen[tier.Hits] = true
		if tier.Payout.IsNegative() {
			return &UnknownTierError{Hits: tier.Hits, Reason: "negative payout"}
		}
	}
	return nil
}

// MinHits is the smallest paying threshold, or 0 for an empty table.
func (t PrizeTable) MinHits() int {
	low := 0
	for _, tier := range t {
		if low == 0 || tier.Hits < low {
			low = tier.Hits
		}
	}
	return low
}

// Lookup returns the tier paying exactly hits.
func (t PrizeTable) Lookup(hits int) (PrizeTier, bool) {
	for _, tier := range t {
		if tier.Hits == hits {
			return tier, true
		}
	}
	return PrizeTier{}, false
}

// DefaultStake is the price of a 15-number bet.
var DefaultStake = decimal.RequireFromString("3.00")

// ReferenceTable is a typical Lotofácil payout table, used when no official table is stored.
func ReferenceTable() PrizeTable {
	return PrizeTable{
		{Hits: 11, Payout: decimal.RequireFromString("6.00")},
		{Hits: 12, Payout: decimal.RequireFromString("12.00")},
		{Hits: 13, Payout: decimal.RequireFromString("30.00")},
		{Hits: 14, Payout: decimal.RequireFromString("1840.30")},
		{Hits: 15, Payout: decimal.RequireFromString("1540320.50")},
	}
}
