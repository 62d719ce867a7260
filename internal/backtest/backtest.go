// Package backtest replays a generation strategy over past drawings.
package backtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/palpiteiro/tipengine/internal/generator"
	"github.com/palpiteiro/tipengine/internal/lotto"
	"github.com/palpiteiro/tipengine/internal/matcher"
	"github.com/palpiteiro/tipengine/internal/stats"
)

var ErrNotEnoughHistory = errors.New("history shorter than the warm-up window")

// Params describes one replay.
type Params struct {
	Strategy generator.Strategy
	Window   int    // drawings feeding the statistics of each round
	PicksPer int    // picks generated per round
	Seed     uint64 // round i uses Seed+i
	Table    lotto.PrizeTable
	Stake    decimal.Decimal
}

// Report of a replay. Hits summarizes the hit count of every generated pick.
type Report struct {
	Rounds  int            `json:"rounds"`
	Hits    Stats          `json:"hits"`
	Summary matcher.Report `json:"summary"`
}

// Run replays h (most recent first) from oldest to newest. Rounds run in parallel; the
// report does not depend on scheduling.
func Run(ctx context.Context, h lotto.History, gen *generator.Generator, p Params) (Report, error) {
	if err := h.Validate(); err != nil {
		return Report{}, err
	}
	if p.Window <= 0 {
		p.Window = 1
	}
	if p.PicksPer <= 0 {
		p.PicksPer = 1
	}
	rounds := len(h) - p.Window
	if rounds <= 0 {
		return Report{}, fmt.Errorf("%w: %d drawings, window %d", ErrNotEnoughHistory, len(h), p.Window)
	}

	perRound := make([][]matcher.Result, rounds)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(8)
	for i := range rounds {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			k := len(h) - 1 - p.Window - i // target index, most recent first
			snap, err := stats.Compute(h[k+1 : k+1+p.Window])
			if err != nil {
				return err
			}
			picks, err := gen.Generate(p.PicksPer, p.Strategy, generator.Deterministic(p.Seed+uint64(i)), snap)
			if err != nil {
				return err
			}
			res := make([]matcher.Result, len(picks))
			for j, pk := range picks {
				if res[j], err = matcher.Match(pk.Numbers, h[k], p.Table); err != nil {
					return err
				}
				res[j].PickID = pk.ID
			}
			perRound[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Report{}, err
	}

	all := make([]matcher.Result, 0, rounds*p.PicksPer)
	for _, r := range perRound {
		all = append(all, r...)
	}
	samples := make([]int, len(all))
	for i, r := range all {
		samples[i] = r.Hits
	}
	return Report{
		Rounds:  rounds,
		Hits:    calcStats(samples),
		Summary: matcher.Summarize(all, p.Stake),
	}, nil
}
