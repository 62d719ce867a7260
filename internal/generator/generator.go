// Package generator builds 15-number picks from a statistics snapshot under a strategy.
package generator

import (
	"fmt"
	"math"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/palpiteiro/tipengine/internal/lotto"
	"github.com/palpiteiro/tipengine/internal/policy"
	"github.com/palpiteiro/tipengine/internal/rng"
	"github.com/palpiteiro/tipengine/internal/stats"
)

// Generator is immutable after New and safe for concurrent use.
type Generator struct {
	p       policy.Params
	entropy func() rng.RandomSource
}

type Option func(*Generator)

// WithEntropy replaces the source used by Random fairness. fn is called once per pick;
// a returned source is never shared between goroutines.
func WithEntropy(fn func() rng.RandomSource) Option {
	return func(g *Generator) { g.entropy = fn }
}

// New clamps p into workable bounds; validation proper happens in policy.ValidateRaw.
func New(p policy.Params, opts ...Option) *Generator {
	p.HotBias = clampProb(p.HotBias)
	p.ColdBias = clampProb(p.ColdBias)
	p.RunAllow = clampProb(p.RunAllow)
	p.AttemptCap = max(p.AttemptCap, 1)
	p.MaxPicks = min(max(p.MaxPicks, 1), DailyPickID-1)
	p.HotSize = min(max(p.HotSize, 1), lotto.MaxNumber)
	p.ColdSize = min(max(p.ColdSize, 1), lotto.MaxNumber)

	g := &Generator{p: p, entropy: rng.Crypto}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Params returns the effective (clamped) parameters.
func (g *Generator) Params() policy.Params { return g.p }

// Generate produces count picks of one strategy, ids 1..count.
func (g *Generator) Generate(count int, s Strategy, f Fairness, snap stats.Snapshot) ([]Pick, error) {
	if count <= 0 || count > g.p.MaxPicks {
		return nil, fmt.Errorf("%w: %d (allowed 1..%d)", ErrInvalidCount, count, g.p.MaxPicks)
	}
	plan := make([]Strategy, count)
	for i := range plan {
		plan[i] = s
	}
	return g.GeneratePlan(plan, f, snap)
}

// GeneratePlan produces one pick per plan entry, in plan order.
func (g *Generator) GeneratePlan(plan []Strategy, f Fairness, snap stats.Snapshot) ([]Pick, error) {
	if len(plan) == 0 || len(plan) > g.p.MaxPicks {
		return nil, fmt.Errorf("%w: %d (allowed 1..%d)", ErrInvalidCount, len(plan), g.p.MaxPicks)
	}
	needRanking := false
	for _, s := range plan {
		if _, err := ParseStrategy(string(s)); err != nil {
			return nil, err
		}
		needRanking = needRanking || s == Hot || s == Cold
	}
	var hot, cold []int
	if needRanking {
		if err := checkRanking(snap.Ranking); err != nil {
			return nil, err
		}
		hot, cold = snap.Hot(g.p.HotSize), snap.Cold(g.p.ColdSize)
	}

	picks := make([]Pick, len(plan))
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range plan {
		eg.Go(func() error {
			picks[i] = g.pick(i+1, s, g.source(f, i), hot, cold)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return picks, nil
}

// Daily is the fixed balanced pick of a calendar day; every caller gets the same numbers.
func (g *Generator) Daily(date time.Time) Pick {
	src := rng.NewSampler(rng.DailySeed(date))
	p := g.pick(DailyPickID, Balanced, src, nil, nil)
	p.Daily = true
	return p
}

func (g *Generator) source(f Fairness, i int) rng.RandomSource {
	if f.deterministic {
		return rng.NewSampler(rng.Mix(f.seed) + uint64(i))
	}
	return g.entropy()
}

func (g *Generator) pick(id int, s Strategy, src rng.RandomSource, hot, cold []int) Pick {
	var set [lotto.MaxNumber + 1]bool
	nums := make([]int, 0, lotto.PickSize)
	add := func(n int) {
		if !set[n] {
			set[n] = true
			nums = append(nums, n)
		}
	}

	for attempts := 0; len(nums) < lotto.PickSize && attempts < g.p.AttemptCap; attempts++ {
		n := lotto.MinNumber + rng.Intn(src, lotto.MaxNumber)
		switch s {
		case Hot:
			if chance(g.p.HotBias, src) {
				n = hot[rng.Intn(src, len(hot))]
			}
		case Cold:
			if chance(g.p.ColdBias, src) {
				n = cold[rng.Intn(src, len(cold))]
			}
		case Pattern0:
			if !set[n] && runLength(&set, n) >= 3 && !chance(g.p.RunAllow, src) {
				continue
			}
		}
		add(n)
	}

	downgraded := false
	if len(nums) < lotto.PickSize {
		downgraded = true
		rest := make([]int, 0, lotto.MaxNumber)
		for n := lotto.MinNumber; n <= lotto.MaxNumber; n++ {
			if !set[n] {
				rest = append(rest, n)
			}
		}
		for len(nums) < lotto.PickSize {
			j := rng.Intn(src, len(rest))
			add(rest[j])
			rest = slices.Delete(rest, j, j+1)
		}
	}

	slices.Sort(nums)
	return Pick{ID: id, Numbers: nums, Strategy: s, Stats: statsOf(nums), Downgraded: downgraded}
}

// runLength is the length of the consecutive run n would sit in once added.
func runLength(set *[lotto.MaxNumber + 1]bool, n int) int {
	l := 1
	for m := n - 1; m >= lotto.MinNumber && set[m]; m-- {
		l++
	}
	for m := n + 1; m <= lotto.MaxNumber && set[m]; m++ {
		l++
	}
	return l
}

func chance(p float64, src rng.RandomSource) bool {
	hit, _ := rng.Bernoulli(p, src) // p is clamped in New
	return hit
}

func clampProb(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func checkRanking(r []int) error {
	if len(r) != lotto.MaxNumber {
		return &lotto.InvalidInputError{Field: "stats.ranking", Reason: fmt.Sprintf("want %d numbers, got %d", lotto.MaxNumber, len(r))}
	}
	var seen [lotto.MaxNumber + 1]bool
	for _, n := range r {
		if n < lotto.MinNumber || n > lotto.MaxNumber || seen[n] {
			return &lotto.InvalidInputError{Field: "stats.ranking", Reason: fmt.Sprintf("not a permutation of %d..%d", lotto.MinNumber, lotto.MaxNumber)}
		}
		seen[n] = true
	}
	return nil
}
