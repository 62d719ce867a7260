// Package matcher scores picks against an official drawing and a prize table.
package matcher

import (
	"github.com/shopspring/decimal"

	"github.com/palpiteiro/tipengine/internal/generator"
	"github.com/palpiteiro/tipengine/internal/lotto"
)

// Result of matching one pick. Tier is nil when the hit count pays nothing.
type Result struct {
	PickID int              `json:"pick_id,omitempty"`
	Hits   int              `json:"hits"`
	Tier   *lotto.PrizeTier `json:"tier,omitempty"`
	Payout decimal.Decimal  `json:"payout"`
}

// Won reports whether the pick reached a paying tier.
func (r Result) Won() bool { return r.Tier != nil }

// Match counts |pick ∩ official| and looks the count up in table.
func Match(pick []int, official lotto.Drawing, table lotto.PrizeTable) (Result, error) {
	if err := lotto.ValidateNumbers("pick", pick); err != nil {
		return Result{}, err
	}
	if err := lotto.ValidateNumbers("official", official.Numbers); err != nil {
		return Result{}, err
	}
	if err := table.Validate(); err != nil {
		return Result{}, err
	}

	var drawn [lotto.MaxNumber + 1]bool
	for _, n := range official.Numbers {
		drawn[n] = true
	}
	hits := 0
	for _, n := range pick {
		if drawn[n] {
			hits++
		}
	}

	r := Result{Hits: hits, Payout: decimal.Zero}
	if tier, ok := table.Lookup(hits); ok {
		r.Tier = &tier
		r.Payout = tier.Payout
	}
	return r, nil
}

// MatchAll matches every pick against o. It stops at the first malformed pick.
func MatchAll(picks []generator.Pick, o lotto.Official) ([]Result, error) {
	out := make([]Result, 0, len(picks))
	for _, p := range picks {
		r, err := Match(p.Numbers, o.Drawing, o.Prizes)
		if err != nil {
			return nil, err
		}
		r.PickID = p.ID
		out = append(out, r)
	}
	return out, nil
}

// NetResult is the sum of payouts minus stake for every result.
func NetResult(results []Result, stake decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range results {
		total = total.Add(r.Payout)
	}
	return total.Sub(stake.Mul(decimal.NewFromInt(int64(len(results)))))
}
