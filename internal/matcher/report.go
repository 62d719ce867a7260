package matcher

import (
	"github.com/shopspring/decimal"

	"github.com/palpiteiro/tipengine/internal/lotto"
)

// Report aggregates a batch of results. It is derived from the results on every call.
type Report struct {
	Picks       int                     `json:"picks"`
	Winning     int                     `json:"winning"`
	BestHits    int                     `json:"best_hits"`
	ByHits      [lotto.PickSize + 1]int `json:"by_hits"`
	TotalPayout decimal.Decimal         `json:"total_payout"`
	TotalStake  decimal.Decimal         `json:"total_stake"`
	Net         decimal.Decimal         `json:"net"`
}

// Summarize builds the Report of results at stake per pick.
func Summarize(results []Result, stake decimal.Decimal) Report {
	rep := Report{
		Picks:       len(results),
		TotalPayout: decimal.Zero,
		TotalStake:  stake.Mul(decimal.NewFromInt(int64(len(results)))),
	}
	for _, r := range results {
		if r.Hits >= 0 && r.Hits <= lotto.PickSize {
			rep.ByHits[r.Hits]++
		}
		rep.BestHits = max(rep.BestHits, r.Hits)
		if r.Won() {
			rep.Winning++
		}
		rep.TotalPayout = rep.TotalPayout.Add(r.Payout)
	}
	rep.Net = NetResult(results, stake)
	return rep
}
