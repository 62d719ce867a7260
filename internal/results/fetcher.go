// Package results fetches the latest official result, keeping a stored copy as fallback.
package results

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/palpiteiro/tipengine/internal/lotto"
)

const DefaultURL = "https://servicebus2.caixa.gov.br/portaldeloterias/api/lotofacil"

type Source string

const (
	SourceAPI      Source = "api"
	SourceFallback Source = "fallback"
)

// Fallback keeps the last good result.
type Fallback interface {
	SaveOfficial(ctx context.Context, o lotto.Official) error
	LatestOfficialDrawing(ctx context.Context) (lotto.Official, error)
}

type Config struct {
	URL             string
	Timeout         time.Duration // per request
	InitialInterval time.Duration
	MaxElapsed      time.Duration // total retry budget
	Stake           decimal.Decimal
}

type Fetcher struct {
	cfg      Config
	client   *http.Client
	fallback Fallback
	log      *slog.Logger
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option { return func(f *Fetcher) { f.client = c } }
func WithLogger(l *slog.Logger) Option     { return func(f *Fetcher) { f.log = l } }

func New(cfg Config, fb Fallback, opts ...Option) *Fetcher {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 30 * time.Second
	}
	if cfg.Stake.IsZero() {
		cfg.Stake = lotto.DefaultStake
	}
	f := &Fetcher{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}, fallback: fb, log: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Latest returns the official result from the API, storing it as the new fallback. When the
// API keeps failing it returns the stored copy; it errors only if both are unavailable.
func (f *Fetcher) Latest(ctx context.Context) (lotto.Official, Source, error) {
	o, apiErr := f.fetchWithRetry(ctx)
	if apiErr == nil {
		if f.fallback != nil {
			if err := f.fallback.SaveOfficial(ctx, o); err != nil {
				f.log.Warn("save fallback result failed", "contest", o.Contest, "err", err)
			}
		}
		return o, SourceAPI, nil
	}

	f.log.Warn("official result api failed, reading fallback", "err", apiErr)
	if f.fallback == nil {
		return lotto.Official{}, "", apiErr
	}
	o, err := f.fallback.LatestOfficialDrawing(ctx)
	if err != nil {
		return lotto.Official{}, "", fmt.Errorf("api: %w; fallback: %w", apiErr, err)
	}
	return o, SourceFallback, nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context) (lotto.Official, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.cfg.InitialInterval
	bo.MaxElapsedTime = f.cfg.MaxElapsed

	var o lotto.Official
	op := func() error {
		var err error
		o, err = f.fetch(ctx)
		return err
	}
	err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		f.log.Debug("retrying official result", "err", err, "next", next)
	})
	return o, err
}

func (f *Fetcher) fetch(ctx context.Context) (lotto.Official, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
	if err != nil {
		return lotto.Official{}, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return lotto.Official{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return lotto.Official{}, err
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("official result: unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return lotto.Official{}, backoff.Permanent(err)
		}
		return lotto.Official{}, err
	}

	o, err := Parse(body, f.cfg.Stake)
	if err != nil {
		return lotto.Official{}, backoff.Permanent(err)
	}
	return o, nil
}
