package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palpiteiro/tipengine/internal/lotto"
	"github.com/palpiteiro/tipengine/internal/rng"
)

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}

// randomHistory builds n valid drawings from a deterministic stream.
func randomHistory(n int, seed uint64) lotto.History {
	src := rng.NewSampler(seed)
	h := make(lotto.History, 0, n)
	for i := 0; i < n; i++ {
		pool := seq(1, 25)
		nums := make([]int, 0, lotto.PickSize)
		for len(nums) < lotto.PickSize {
			j := rng.Intn(src, len(pool))
			nums = append(nums, pool[j])
			pool = append(pool[:j], pool[j+1:]...)
		}
		h = append(h, lotto.MustDrawing(nums...))
	}
	return h
}

func TestComputeSingleDrawing(t *testing.T) {
	s, err := Compute(lotto.History{lotto.MustDrawing(seq(1, 15)...)})
	require.NoError(t, err)

	for n := 1; n <= 15; n++ {
		assert.Equal(t, 1, s.Frequency[n], "frequency[%d]", n)
		assert.Equal(t, 0, s.Delay[n], "delay[%d]", n)
	}
	for n := 16; n <= 25; n++ {
		assert.Equal(t, 0, s.Frequency[n], "frequency[%d]", n)
		assert.Equal(t, 1, s.Delay[n], "delay[%d]", n)
	}
	assert.Equal(t, seq(1, 10), s.Hot(10))
	assert.Equal(t, seq(21, 25), s.Cold(5))
	assert.Equal(t, 1, s.Mode())
	assert.InDelta(t, 120.0, s.AverageSum, 1e-9)
	assert.InDelta(t, 7.0, s.AverageEven, 1e-9)
	assert.InDelta(t, 8.0, s.AverageOdd, 1e-9)
}

func TestDelayStopsAtFirstAppearance(t *testing.T) {
	h := lotto.History{
		lotto.MustDrawing(seq(1, 15)...),  // most recent
		lotto.MustDrawing(seq(11, 25)...), // 16..25 appear here
		lotto.MustDrawing(seq(1, 15)...),
	}
	s, err := Compute(h)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Delay[16])
	assert.Equal(t, 1, s.Delay[25])
	assert.Equal(t, 0, s.Delay[1])
	assert.Equal(t, []int{16, 17, 18}, s.Overdue(3))
}

func TestComputeProperties(t *testing.T) {
	for _, size := range []int{1, 2, 20, 100} {
		h := randomHistory(size, uint64(size))
		s, err := Compute(h)
		require.NoError(t, err)

		total := 0
		for n := 1; n <= 25; n++ {
			total += s.Frequency[n]
			assert.LessOrEqual(t, s.Delay[n], len(h))
			assert.Equal(t, h[0].Contains(n), s.Delay[n] == 0, "delay[%d] with size %d", n, size)
		}
		assert.Equal(t, lotto.PickSize*len(h), total)

		endings := 0
		for _, c := range s.Endings {
			endings += c
		}
		assert.Equal(t, total, endings)

		hot, cold := s.Hot(25), s.Cold(25)
		assert.ElementsMatch(t, seq(1, 25), hot)
		assert.ElementsMatch(t, hot, cold)

		hot10, cold15 := s.Hot(10), s.Cold(15)
		assert.Empty(t, intersect(hot10, cold15))
		assert.Len(t, append(hot10, cold15...), 25)
	}
}

func TestRankingTieBreak(t *testing.T) {
	s, err := Compute(nil)
	require.NoError(t, err)
	assert.Equal(t, seq(1, 25), s.Ranking)
	assert.Equal(t, 0, s.Draws)
	assert.Zero(t, s.AverageSum)
}

func TestComputeRejectsMalformedDrawing(t *testing.T) {
	cases := map[string][]int{
		"short":     seq(1, 14),
		"duplicate": append(seq(1, 14), 14),
		"range":     append(seq(1, 14), 26),
	}
	for name, nums := range cases {
		t.Run(name, func(t *testing.T) {
			h := lotto.History{lotto.MustDrawing(seq(1, 15)...), {Numbers: nums}}
			_, err := Compute(h)
			require.ErrorIs(t, err, lotto.ErrInvalidInput)

			var inv *lotto.InvalidInputError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, "history[1]", inv.Field)
		})
	}
}

func TestMostAndLeastDrawn(t *testing.T) {
	h := lotto.History{lotto.MustDrawing(seq(1, 15)...), lotto.MustDrawing(seq(1, 15)...)}
	s, err := Compute(h)
	require.NoError(t, err)
	assert.Equal(t, []Count{{1, 2}, {2, 2}}, s.MostDrawn(2))
	assert.Equal(t, []Count{{25, 0}}, s.LeastDrawn(1))
	assert.Empty(t, s.Hot(-1))
}

func intersect(a, b []int) []int {
	in := map[int]bool{}
	for _, n := range a {
		in[n] = true
	}
	var out []int
	for _, n := range b {
		if in[n] {
			out = append(out, n)
		}
	}
	return out
}
