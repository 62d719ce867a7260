package rng

import "time"

const gamma = 0x9e3779b97f4a7c15

// Next is the deterministic transform behind Sampler: it maps a seed state to a float in [0,1)
// and the following state. Integer-only arithmetic (SplitMix64 finaliser), so the sequence is
// bit-identical on every platform and Go release.
func Next(state uint64) (float64, uint64) {
	state += gamma
	return float64(mix64(state)>>11) / (1 << 53), state
}

// Mix scrambles seed into an unrelated 64-bit value. Nearby seeds map far apart, so
// seed-derived sub-streams of consecutive seeds do not overlap.
func Mix(seed uint64) uint64 {
	return mix64(seed + gamma)
}

func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// DailySeed derives the seed of a calendar day: day + month*100 + year*10000.
// The date is read in t's location.
func DailySeed(t time.Time) uint64 {
	y, m, d := t.Date()
	return uint64(d + int(m)*100 + y*10000)
}
