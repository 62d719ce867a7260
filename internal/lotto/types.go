package lotto

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinNumber = 1
	MaxNumber = 25 // size of the game's universe
	PickSize  = 15 // numbers per drawing and per pick
)

// Drawing is one historical or official draw: 15 distinct numbers in [1,25], kept sorted.
type Drawing struct {
	Numbers []int `json:"numbers"`
}

// NewDrawing validates nums and returns a sorted copy as a Drawing.
func NewDrawing(nums []int) (Drawing, error) {
	if err := ValidateNumbers("drawing", nums); err != nil {
		return Drawing{}, err
	}
	cp := append([]int(nil), nums...)
	slices.Sort(cp)
	return Drawing{Numbers: cp}, nil
}

// MustDrawing is NewDrawing for fixtures; it panics on invalid input.
func MustDrawing(nums ...int) Drawing {
	d, err := NewDrawing(nums)
	if err != nil {
		panic(err)
	}
	return d
}

// Contains reports whether n was drawn.
func (d Drawing) Contains(n int) bool {
	return slices.Contains(d.Numbers, n)
}

// Sum of the drawn numbers.
func (d Drawing) Sum() int {
	s := 0
	for _, n := range d.Numbers {
		s += n
	}
	return s
}

// History is an ordered sequence of drawings, most recent first.
type History []Drawing

// Validate checks every drawing of the history.
func (h History) Validate() error {
	for i, d := range h {
		if err := ValidateNumbers(historyField(i), d.Numbers); err != nil {
			return err
		}
	}
	return nil
}

// Latest returns the most recent drawing, if any.
func (h History) Latest() (Drawing, bool) {
	if len(h) == 0 {
		return Drawing{}, false
	}
	return h[0], true
}

// PrizeTier maps an exact hit count to a payout.
type PrizeTier struct {
	Hits    int             `json:"hits"`
	Payout  decimal.Decimal `json:"payout"`
	Winners int             `json:"winners,omitempty"`
}

// Official is the latest official result published for a contest.
type Official struct {
	Contest      int             `json:"contest"`
	Date         time.Time       `json:"date"`
	Drawing      Drawing         `json:"drawing"`
	Prizes       PrizeTable      `json:"prizes"`
	StakePerPick decimal.Decimal `json:"stake_per_pick"`
	Accumulated  bool            `json:"accumulated"`
	NextEstimate decimal.Decimal `json:"next_estimate"`
}

// Validate checks the drawing and the prize table of an official result.
func (o Official) Validate() error {
	if err := ValidateNumbers("official.drawing", o.Drawing.Numbers); err != nil {
		return err
	}
	return o.Prizes.Validate()
}
