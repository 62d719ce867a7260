// resolve.go
package policy

// Overrides carries per-request tweaks applied on top of the merged files.
type Overrides struct {
	AttemptCap *int
	HotBias    *float64
	ColdBias   *float64
	RunAllow   *float64
	Plan       []string
}

func (o Overrides) apply(raw RawConfig) RawConfig {
	return mergeRaw(raw, RawConfig{
		Draw: DrawConfig{AttemptCap: o.AttemptCap},
		Bias: BiasConfig{Hot: o.HotBias, Cold: o.ColdBias, RunAllow: o.RunAllow},
		Plan: o.Plan,
	})
}

// Resolver is satisfied by *Loader.
type Resolver interface {
	Resolve(game, mode string, o Overrides) (Params, error)
}

func normalize(raw RawConfig) Params {
	p := Params{
		AttemptCap: DefaultAttemptCap,
		MaxPicks:   DefaultMaxPicks,
		HotBias:    DefaultHotBias,
		ColdBias:   DefaultColdBias,
		HotSize:    DefaultHotSize,
		ColdSize:   DefaultColdSize,
		RunAllow:   DefaultRunAllow,
		Plan:       append([]string(nil), StandardPlan...),
		Stake:      DefaultStake,
		Version:    raw.Version,
	}
	if raw.Draw.AttemptCap != nil {
		p.AttemptCap = *raw.Draw.AttemptCap
	}
	if raw.Draw.MaxPicks != nil {
		p.MaxPicks = *raw.Draw.MaxPicks
	}
	if raw.Bias.Hot != nil {
		p.HotBias = *raw.Bias.Hot
	}
	if raw.Bias.Cold != nil {
		p.ColdBias = *raw.Bias.Cold
	}
	if raw.Bias.HotSize != nil {
		p.HotSize = *raw.Bias.HotSize
	}
	if raw.Bias.ColdSize != nil {
		p.ColdSize = *raw.Bias.ColdSize
	}
	if raw.Bias.RunAllow != nil {
		p.RunAllow = *raw.Bias.RunAllow
	}
	if len(raw.Plan) > 0 {
		p.Plan = append([]string(nil), raw.Plan...)
	}
	if raw.Stake != nil {
		p.Stake = *raw.Stake
	}
	return p
}
