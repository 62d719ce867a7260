package policy

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Strategy names accepted in plan entries.
var knownStrategies = map[string]bool{
	"balanced":  true,
	"hot":       true,
	"cold":      true,
	"pattern_0": true,
}

// Upper bound for draw.attempt_cap.
const maxAttemptCap = 100_000

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// draw
	if cfg.Draw.AttemptCap != nil {
		if *cfg.Draw.AttemptCap < 1 || *cfg.Draw.AttemptCap > maxAttemptCap {
			errs = append(errs, fmt.Sprintf("draw.attempt_cap must be in [1,%d]", maxAttemptCap))
		}
	}
	if cfg.Draw.MaxPicks != nil && *cfg.Draw.MaxPicks < 1 {
		errs = append(errs, "draw.max_picks must be >= 1")
	}

	// bias probabilities
	probs := []struct {
		name string
		v    *float64
	}{
		{"bias.hot", cfg.Bias.Hot},
		{"bias.cold", cfg.Bias.Cold},
		{"bias.run_allow", cfg.Bias.RunAllow},
	}
	for _, p := range probs {
		if p.v != nil && (*p.v < 0 || *p.v > 1) {
			errs = append(errs, p.name+" must be in [0,1]")
		}
	}

	// bias sets are prefix/suffix of the same 25-number ranking
	if cfg.Bias.HotSize != nil && (*cfg.Bias.HotSize < 1 || *cfg.Bias.HotSize > 25) {
		errs = append(errs, "bias.hot_size must be in [1,25]")
	}
	if cfg.Bias.ColdSize != nil && (*cfg.Bias.ColdSize < 1 || *cfg.Bias.ColdSize > 25) {
		errs = append(errs, "bias.cold_size must be in [1,25]")
	}

	// plan
	for i, s := range cfg.Plan {
		if !knownStrategies[s] {
			errs = append(errs, fmt.Sprintf("plan[%d] unknown strategy %q", i, s))
		}
	}

	// stake
	if cfg.Stake != nil {
		d, err := decimal.NewFromString(*cfg.Stake)
		if err != nil {
			errs = append(errs, "stake must be a decimal amount")
		} else if d.IsNegative() {
			errs = append(errs, "stake must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("policy validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
