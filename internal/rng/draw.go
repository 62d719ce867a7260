package rng

import (
	"errors"
	"math"
)

var ErrInvalidProb = errors.New("invalid probability p; must be 0..1")

// Bernoulli draws under p, returns if it is hit
// p <=0 => no hit. p>= 1 => must hit. otherwise, rng.Float64() < p

func Bernoulli(p float64, src RandomSource) (bool, error) {
	if err := validateProb(p); err != nil {
		return false, err
	}
	if p <= 0 {
		return false, nil
	}
	if p >= 1 {
		return true, nil
	}
	if src == nil {
		src = Crypto()
	}
	return src.Float64() < p, nil
}

// Intn maps one draw of src to [0, n).
func Intn(src RandomSource, n int) int {
	i := int(src.Float64() * float64(n))
	if i >= n { // guards float rounding at the top of the range
		i = n - 1
	}
	return i
}

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}
