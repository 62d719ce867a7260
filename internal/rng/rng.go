package rng

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstract

type RandomSource interface {
	Float64() float64 // [0, 1)
}

// crypto random : entropy source for unlimited (paying) generation
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	// Read 53bit random => [0, 1)
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Float64()
	}

	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

// Crypto returns the true-entropy source. It is safe for concurrent use.
func Crypto() RandomSource { return cryptoRNG{} }

// Sampler is a reproducible RandomSource driven by Next.
// Not safe for concurrent use; give each goroutine its own Sampler.
type Sampler struct {
	state uint64
}

// NewSampler starts a deterministic stream at seed.
func NewSampler(seed uint64) *Sampler {
	return &Sampler{state: seed}
}

func (s *Sampler) Float64() float64 {
	var f float64
	f, s.state = Next(s.state)
	return f
}

// State returns the current seed state, so a stream can be resumed with NewSampler.
func (s *Sampler) State() uint64 { return s.state }
