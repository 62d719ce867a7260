// Package tips is the application service: it loads history and policy once per request,
// then runs the pure statistics, generation and matching steps.
package tips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/palpiteiro/tipengine/internal/generator"
	"github.com/palpiteiro/tipengine/internal/lotto"
	"github.com/palpiteiro/tipengine/internal/matcher"
	"github.com/palpiteiro/tipengine/internal/policy"
	"github.com/palpiteiro/tipengine/internal/rng"
	"github.com/palpiteiro/tipengine/internal/stats"
	"github.com/palpiteiro/tipengine/internal/store"
)

// Policy modes. Any other name selects games/<game>/modes/<name>.yaml.
const (
	ModeStandard = ""
	ModeFinal0   = "final_0"
	ModeAuto     = "auto" // final_0 when the next contest number ends in 0
)

var ErrNoUser = errors.New("user id required")

type HistoryStore interface {
	RecentDrawings(ctx context.Context, n int) (lotto.History, error)
	LatestOfficialDrawing(ctx context.Context) (lotto.Official, error)
}

// PickSink receives generated picks. batch names the generation a pick belongs to.
type PickSink interface {
	SavePick(ctx context.Context, userID, batch string, createdAt time.Time, pick generator.Pick) error
}

type PickLister interface {
	ListPicks(ctx context.Context, userID string) ([]store.StoredPick, error)
}

type Service struct {
	history     HistoryStore
	policies    policy.Resolver
	game        string
	historySize int
	sinks       []PickSink
	picks       PickLister
	genOpts     []generator.Option
	now         func() time.Time
	log         *slog.Logger
	seq         atomic.Uint64
}

type Option func(*Service)

// WithSinks adds persistence targets for generated picks.
func WithSinks(sinks ...PickSink) Option {
	return func(s *Service) { s.sinks = append(s.sinks, sinks...) }
}

func WithPickLister(l PickLister) Option { return func(s *Service) { s.picks = l } }

func WithGeneratorOptions(opts ...generator.Option) Option {
	return func(s *Service) { s.genOpts = append(s.genOpts, opts...) }
}

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithLogger(l *slog.Logger) Option      { return func(s *Service) { s.log = l } }

func New(history HistoryStore, policies policy.Resolver, game string, historySize int, opts ...Option) *Service {
	s := &Service{
		history:     history,
		policies:    policies,
		game:        game,
		historySize: historySize,
		now:         time.Now,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats computes the snapshot of the configured history window.
func (s *Service) Stats(ctx context.Context) (stats.Snapshot, error) {
	h, err := s.history.RecentDrawings(ctx, s.historySize)
	if err != nil {
		return stats.Snapshot{}, fmt.Errorf("load history: %w", err)
	}
	return stats.Compute(h)
}

type Request struct {
	User     string
	Count    int    // 0 generates the policy plan
	Strategy string // used with Count; defaults to balanced
	Mode     string
	VIP      bool      // VIP users get true randomness, others the picks of the day
	Date     time.Time // zero means now
	DryRun   bool      // generate without persisting
}

type Response struct {
	Picks         []generator.Pick `json:"picks"`
	Fairness      string           `json:"fairness"`
	Mode          string           `json:"mode"`
	PolicyVersion string           `json:"policy_version,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Generate produces picks for req and persists them to every sink when a user is given.
func (s *Service) Generate(ctx context.Context, req Request) (Response, error) {
	mode, err := s.resolveMode(ctx, req.Mode)
	if err != nil {
		return Response{}, err
	}
	params, err := s.policies.Resolve(s.game, mode, policy.Overrides{})
	if err != nil {
		return Response{}, fmt.Errorf("resolve policy: %w", err)
	}
	snap, err := s.Stats(ctx)
	if err != nil {
		return Response{}, err
	}

	date := req.Date
	if date.IsZero() {
		date = s.now()
	}
	fair := generator.Deterministic(rng.DailySeed(date))
	if req.VIP {
		fair = generator.Random()
	}

	gen := generator.New(params, s.genOpts...)
	var picks []generator.Pick
	shape := "plan"
	if req.Count > 0 {
		strategy := generator.Balanced
		if req.Strategy != "" {
			if strategy, err = generator.ParseStrategy(req.Strategy); err != nil {
				return Response{}, err
			}
		}
		shape = string(strategy)
		picks, err = gen.Generate(req.Count, strategy, fair, snap)
	} else {
		var plan []generator.Strategy
		if plan, err = generator.ParsePlan(params.Plan); err != nil {
			return Response{}, err
		}
		picks, err = gen.GeneratePlan(plan, fair, snap)
	}
	if err != nil {
		return Response{}, err
	}

	for _, p := range picks {
		if p.Downgraded {
			s.log.Debug("pick completed by fallback", "id", p.ID, "strategy", p.Strategy, "attempt_cap", params.AttemptCap)
		}
	}

	createdAt := s.now().UTC()
	if req.User != "" && !req.DryRun {
		batch := s.batchID(fair, mode, shape, createdAt)
		if err := s.persist(ctx, req.User, batch, createdAt, picks); err != nil {
			return Response{}, err
		}
	}
	s.log.Info("picks generated", "user", req.User, "count", len(picks), "mode", modeName(mode), "fairness", fair.String())

	return Response{
		Picks:         picks,
		Fairness:      fair.String(),
		Mode:          modeName(mode),
		PolicyVersion: params.Version,
		CreatedAt:     createdAt,
	}, nil
}

// Daily returns the fixed balanced pick of date; everyone gets the same numbers that day.
func (s *Service) Daily(ctx context.Context, date time.Time) (generator.Pick, error) {
	if err := ctx.Err(); err != nil {
		return generator.Pick{}, err
	}
	params, err := s.policies.Resolve(s.game, ModeStandard, policy.Overrides{})
	if err != nil {
		return generator.Pick{}, fmt.Errorf("resolve policy: %w", err)
	}
	if date.IsZero() {
		date = s.now()
	}
	return generator.New(params, s.genOpts...).Daily(date), nil
}

type CheckResult struct {
	Official lotto.Official   `json:"official"`
	Results  []matcher.Result `json:"results"`
	Report   matcher.Report   `json:"report"`
}

// Check matches every stored pick of user against the latest official drawing.
func (s *Service) Check(ctx context.Context, user string) (CheckResult, error) {
	if user == "" {
		return CheckResult{}, ErrNoUser
	}
	if s.picks == nil {
		return CheckResult{}, errors.New("no pick store configured")
	}
	official, err := s.history.LatestOfficialDrawing(ctx)
	if err != nil {
		return CheckResult{}, fmt.Errorf("load official result: %w", err)
	}
	stored, err := s.picks.ListPicks(ctx, user)
	if err != nil {
		return CheckResult{}, fmt.Errorf("load picks: %w", err)
	}

	picks := make([]generator.Pick, len(stored))
	for i, sp := range stored {
		picks[i] = sp.Pick
	}
	results, err := matcher.MatchAll(picks, official)
	if err != nil {
		return CheckResult{}, err
	}
	stake := official.StakePerPick
	if stake.IsZero() {
		stake = lotto.DefaultStake
	}
	return CheckResult{
		Official: official,
		Results:  results,
		Report:   matcher.Summarize(results, stake),
	}, nil
}

// batchID names one generation. Deterministic picks of the same day, mode and request shape
// share a batch, so asking again stores nothing new.
func (s *Service) batchID(fair generator.Fairness, mode, shape string, at time.Time) string {
	if fair.IsDeterministic() {
		return fmt.Sprintf("d%d-%s-%s", fair.Seed(), modeName(mode), shape)
	}
	return fmt.Sprintf("r%d-%d", at.UnixNano(), s.seq.Add(1))
}

func (s *Service) persist(ctx context.Context, user, batch string, at time.Time, picks []generator.Pick) error {
	fresh, err := s.unsaved(ctx, user, batch, picks)
	if err != nil {
		return err
	}
	for _, sink := range s.sinks {
		for _, p := range fresh {
			if err := sink.SavePick(ctx, user, batch, at, p); err != nil {
				return fmt.Errorf("save pick %d: %w", p.ID, err)
			}
		}
	}
	if skipped := len(picks) - len(fresh); skipped > 0 {
		s.log.Debug("picks already stored", "user", user, "batch", batch, "skipped", skipped)
	}
	return nil
}

// unsaved drops the picks of batch the user already has.
func (s *Service) unsaved(ctx context.Context, user, batch string, picks []generator.Pick) ([]generator.Pick, error) {
	if s.picks == nil {
		return picks, nil
	}
	stored, err := s.picks.ListPicks(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load picks: %w", err)
	}
	have := make(map[int]bool)
	for _, sp := range stored {
		if sp.Batch == batch {
			have[sp.Pick.ID] = true
		}
	}
	fresh := make([]generator.Pick, 0, len(picks))
	for _, p := range picks {
		if !have[p.ID] {
			fresh = append(fresh, p)
		}
	}
	return fresh, nil
}

func (s *Service) resolveMode(ctx context.Context, mode string) (string, error) {
	switch mode {
	case "standard":
		return ModeStandard, nil
	case ModeAuto:
	default:
		return mode, nil
	}
	o, err := s.history.LatestOfficialDrawing(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ModeStandard, nil
		}
		return "", fmt.Errorf("load official result: %w", err)
	}
	if (o.Contest+1)%10 == 0 {
		return ModeFinal0, nil
	}
	return ModeStandard, nil
}

func modeName(mode string) string {
	if mode == ModeStandard {
		return "standard"
	}
	return mode
}
