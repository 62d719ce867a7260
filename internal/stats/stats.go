// Package stats derives frequency, delay and hot/cold rankings from a drawing history.
package stats

import (
	"slices"

	"github.com/palpiteiro/tipengine/internal/lotto"
)

// Snapshot summarises one History. It is recomputed for every request and never shared across
// histories. Frequency and Delay are indexed by number; index 0 is unused.
type Snapshot struct {
	Draws     int                      `json:"draws"`
	Frequency [lotto.MaxNumber + 1]int `json:"frequency"`
	Delay     [lotto.MaxNumber + 1]int `json:"delay"`

	// Ranking holds all numbers by frequency desc, number asc.
	Ranking []int `json:"ranking"`

	AverageSum  float64 `json:"average_sum"`
	AverageEven float64 `json:"average_even"`
	AverageOdd  float64 `json:"average_odd"`
	Endings     [10]int `json:"endings"` // occurrences per last digit
}

// Compute builds a Snapshot from h (most recent first).
func Compute(h lotto.History) (Snapshot, error) {
	if err := h.Validate(); err != nil {
		return Snapshot{}, err
	}

	var s Snapshot
	s.Draws = len(h)

	var sumTotal, evenTotal int
	for _, d := range h {
		for _, n := range d.Numbers {
			s.Frequency[n]++
			s.Endings[n%10]++
			if n%2 == 0 {
				evenTotal++
			}
		}
		sumTotal += d.Sum()
	}
	if len(h) > 0 {
		s.AverageSum = float64(sumTotal) / float64(len(h))
		s.AverageEven = float64(evenTotal) / float64(len(h))
		s.AverageOdd = float64(lotto.PickSize) - s.AverageEven
	}

	// delay stops at the first drawing that contains the number
	for n := lotto.MinNumber; n <= lotto.MaxNumber; n++ {
		for _, d := range h {
			if d.Contains(n) {
				break
			}
			s.Delay[n]++
		}
	}

	s.Ranking = make([]int, 0, lotto.MaxNumber)
	for n := lotto.MinNumber; n <= lotto.MaxNumber; n++ {
		s.Ranking = append(s.Ranking, n)
	}
	slices.SortStableFunc(s.Ranking, func(a, b int) int {
		if s.Frequency[a] != s.Frequency[b] {
			return s.Frequency[b] - s.Frequency[a]
		}
		return a - b
	})
	return s, nil
}

// Hot returns the k most frequent numbers. k is clamped to [0,25].
func (s Snapshot) Hot(k int) []int {
	k = clamp(k, len(s.Ranking))
	return slices.Clone(s.Ranking[:k])
}

// Cold returns the last k numbers of the same ranking Hot reads from, so Hot(k1) and Cold(k2) never
// overlap while k1+k2 <= 25.
func (s Snapshot) Cold(k int) []int {
	k = clamp(k, len(s.Ranking))
	return slices.Clone(s.Ranking[len(s.Ranking)-k:])
}

// Mode is the most frequent number (lowest value on ties); 0 if the snapshot has no ranking.
func (s Snapshot) Mode() int {
	if len(s.Ranking) == 0 {
		return 0
	}
	return s.Ranking[0]
}

// Overdue returns the k numbers with the largest delay, ties broken by ascending number.
func (s Snapshot) Overdue(k int) []int {
	nums := make([]int, 0, lotto.MaxNumber)
	for n := lotto.MinNumber; n <= lotto.MaxNumber; n++ {
		nums = append(nums, n)
	}
	slices.SortStableFunc(nums, func(a, b int) int {
		if s.Delay[a] != s.Delay[b] {
			return s.Delay[b] - s.Delay[a]
		}
		return a - b
	})
	return nums[:clamp(k, len(nums))]
}

// Count pairs a number with its frequency, for ranked listings.
type Count struct {
	Number int `json:"number"`
	Times  int `json:"times"`
}

// MostDrawn lists the head of the ranking with frequencies.
func (s Snapshot) MostDrawn(k int) []Count {
	return s.counts(s.Hot(k))
}

// LeastDrawn lists the tail of the ranking with frequencies.
func (s Snapshot) LeastDrawn(k int) []Count {
	return s.counts(s.Cold(k))
}

func (s Snapshot) counts(nums []int) []Count {
	out := make([]Count, len(nums))
	for i, n := range nums {
		out[i] = Count{Number: n, Times: s.Frequency[n]}
	}
	return out
}

func clamp(k, n int) int {
	if k < 0 {
		return 0
	}
	if k > n {
		return n
	}
	return k
}
