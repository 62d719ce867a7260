package generator

import (
	"errors"
	"fmt"

	"github.com/palpiteiro/tipengine/internal/lotto"
)

// Strategy biases how candidate numbers are drawn.
type Strategy string

const (
	Balanced Strategy = "balanced"  // uniform over [1,25]
	Hot      Strategy = "hot"       // leans toward the most frequent numbers
	Cold     Strategy = "cold"      // leans toward the least frequent numbers
	Pattern0 Strategy = "pattern_0" // balanced, but avoids runs of 3+ consecutive numbers
)

var (
	ErrInvalidCount    = errors.New("invalid pick count")
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// ParseStrategy maps a policy/plan name to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case Balanced, Hot, Cold, Pattern0:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// ParsePlan maps every entry of a plan.
func ParsePlan(names []string) ([]Strategy, error) {
	plan := make([]Strategy, len(names))
	for i, n := range names {
		s, err := ParseStrategy(n)
		if err != nil {
			return nil, err
		}
		plan[i] = s
	}
	return plan, nil
}

// Fairness selects the entropy behind a generation: a reproducible seed, or true randomness.
type Fairness struct {
	deterministic bool
	seed          uint64
}

// Deterministic generation from seed; the same inputs always produce the same picks.
func Deterministic(seed uint64) Fairness { return Fairness{deterministic: true, seed: seed} }

// Random generation from the generator's entropy source.
func Random() Fairness { return Fairness{} }

func (f Fairness) IsDeterministic() bool { return f.deterministic }
func (f Fairness) Seed() uint64          { return f.seed }

func (f Fairness) String() string {
	if f.deterministic {
		return fmt.Sprintf("deterministic(%d)", f.seed)
	}
	return "random"
}

// PickStats are derived once, when the pick is emitted.
type PickStats struct {
	Sum   int `json:"sum"`
	Even  int `json:"even"`
	Odd   int `json:"odd"`
	Prime int `json:"prime"`
}

// Pick is one generated game. The generator keeps no reference to it.
type Pick struct {
	ID       int       `json:"id"`
	Numbers  []int     `json:"numbers"`
	Strategy Strategy  `json:"strategy"`
	Stats    PickStats `json:"stats"`
	// Downgraded is set when the attempt cap forced the balanced fallback.
	Downgraded bool `json:"downgraded,omitempty"`
	Daily      bool `json:"daily,omitempty"`
}

// DailyPickID identifies the pick of the day; plan ids never reach it.
const DailyPickID = 999

var primes = [lotto.MaxNumber + 1]bool{2: true, 3: true, 5: true, 7: true, 11: true, 13: true, 17: true, 19: true, 23: true}

func statsOf(nums []int) PickStats {
	var s PickStats
	for _, n := range nums {
		s.Sum += n
		if n%2 == 0 {
			s.Even++
		} else {
			s.Odd++
		}
		if primes[n] {
			s.Prime++
		}
	}
	return s
}
