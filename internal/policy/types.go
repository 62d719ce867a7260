// types.go
package policy

import "github.com/shopspring/decimal"

// Raw config loaded from YAML; mirrors the policy schema.
type RawConfig struct {
	Version string     `yaml:"version"`
	Draw    DrawConfig `yaml:"draw"`
	Bias    BiasConfig `yaml:"bias"`
	Plan    []string   `yaml:"plan,omitempty"`
	Stake   *string    `yaml:"stake,omitempty"`
	Notes   string     `yaml:"notes,omitempty"`
}

type DrawConfig struct {
	AttemptCap *int `yaml:"attempt_cap"`
	MaxPicks   *int `yaml:"max_picks"`
}

type BiasConfig struct {
	Hot      *float64 `yaml:"hot"`
	Cold     *float64 `yaml:"cold"`
	HotSize  *int     `yaml:"hot_size"`
	ColdSize *int     `yaml:"cold_size"`
	RunAllow *float64 `yaml:"run_allow"` // pattern_0: chance a 3-run is kept anyway
}

// Params are the normalized generation parameters used by internal/generator.
type Params struct {
	AttemptCap int
	MaxPicks   int
	HotBias    float64
	ColdBias   float64
	HotSize    int
	ColdSize   int
	RunAllow   float64
	Plan       []string
	Stake      string
	Version    string // effective config version for tracing
}

// Built-in values used when no file sets a key.
const (
	DefaultAttemptCap = 2000
	DefaultMaxPicks   = 50
	DefaultHotBias    = 0.5
	DefaultColdBias   = 0.5
	DefaultHotSize    = 10
	DefaultColdSize   = 5
	DefaultRunAllow   = 0.5
	DefaultStake      = "3.00"
)

var (
	// StandardPlan is the original daily set: two hot picks, one cold, four balanced.
	StandardPlan = []string{"hot", "hot", "cold", "balanced", "balanced", "balanced", "balanced"}
	// FinalZeroPlan is used for contests ending in 0.
	FinalZeroPlan = []string{"pattern_0", "pattern_0", "pattern_0", "pattern_0", "pattern_0", "pattern_0", "pattern_0"}
)

// Defaults returns Params built only from the built-in values.
func Defaults() Params {
	return normalize(RawConfig{})
}

// StakeAmount parses Stake, falling back to DefaultStake when it is not a decimal.
func (p Params) StakeAmount() decimal.Decimal {
	if d, err := decimal.NewFromString(p.Stake); err == nil {
		return d
	}
	return decimal.RequireFromString(DefaultStake)
}
