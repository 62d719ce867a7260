package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/palpiteiro/tipengine/internal/backtest"
	"github.com/palpiteiro/tipengine/internal/generator"
	"github.com/palpiteiro/tipengine/internal/logger"
	"github.com/palpiteiro/tipengine/internal/lotto"
	"github.com/palpiteiro/tipengine/internal/policy"
	"github.com/palpiteiro/tipengine/internal/store"
	"github.com/palpiteiro/tipengine/internal/tips"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var watchEvery time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withApp(opts, func(a *app) error {
				paths := a.loader.Paths()
				w := policy.NewFileWatcher(paths.Files(a.cfg.Game, tips.ModeFinal0), watchEvery, func(path string) {
					logger.Info("policy changed, reloading", "path", path)
					a.loader.Invalidate()
				})
				w.Start()
				defer w.Stop()

				srv := &http.Server{
					Addr:              a.cfg.HTTPAddr,
					Handler:           (&server{svc: a.svc, fetcher: a.fetcher}).routes(),
					ReadHeaderTimeout: 5 * time.Second,
				}
				errCh := make(chan error, 1)
				go func() {
					logger.Info("listening", "addr", a.cfg.HTTPAddr)
					errCh <- srv.ListenAndServe()
				}()

				select {
				case err := <-errCh:
					return err
				case <-ctx.Done():
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				logger.Info("shutting down")
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&watchEvery, "watch-interval", 2*time.Second, "policy file poll interval")
	return cmd
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		req  tips.Request
		date string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate picks (the policy plan unless --count is set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if date != "" {
				d, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				req.Date = d
			}
			return withApp(opts, func(a *app) error {
				resp, err := a.svc.Generate(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.User, "user", "", "user id; picks are stored when set")
	f.IntVarP(&req.Count, "count", "n", 0, "number of picks")
	f.StringVarP(&req.Strategy, "strategy", "s", "", "balanced, hot, cold or pattern_0")
	f.StringVar(&req.Mode, "mode", "", "policy mode: standard, final_0, auto or a custom mode")
	f.BoolVar(&req.VIP, "vip", false, "true randomness instead of the picks of the day")
	f.StringVar(&date, "date", "", "day seed (YYYY-MM-DD), default today")
	f.BoolVar(&req.DryRun, "dry-run", false, "do not store the picks")
	return cmd
}

func newDailyCmd(opts *rootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Print the pick of the day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var d time.Time
			if date != "" {
				var err error
				if d, err = time.Parse(time.DateOnly, date); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}
			return withApp(opts, func(a *app) error {
				p, err := a.svc.Daily(cmd.Context(), d)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD, default today")
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print frequency, delay and hot/cold statistics of the recent history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				snap, err := a.svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), newStatsResp(snap, top))
			})
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "size of hot and overdue lists")
	return cmd
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Match a user's stored picks against the latest official result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				res, err := a.svc.Check(cmd.Context(), user)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch the latest official result into the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				o, src, err := a.fetcher.Latest(cmd.Context())
				if err != nil {
					return err
				}
				logger.Info("official result", "contest", o.Contest, "source", src)
				return printJSON(cmd.OutOrStdout(), syncResp{Source: src, Official: o})
			})
		},
	}
}

func newBacktestCmd(opts *rootOptions) *cobra.Command {
	var (
		strategy string
		mode     string
		size     int
		p        backtest.Params
	)
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay a strategy over the stored history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := generator.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			p.Strategy = s
			return withApp(opts, func(a *app) error {
				ctx := cmd.Context()
				params, err := a.loader.Resolve(a.cfg.Game, mode, policy.Overrides{})
				if err != nil {
					return err
				}
				h, err := a.db.RecentDrawings(ctx, size)
				if err != nil {
					return err
				}

				p.Table, p.Stake = lotto.ReferenceTable(), params.StakeAmount()
				switch o, err := a.db.LatestOfficialDrawing(ctx); {
				case err == nil:
					p.Table, p.Stake = o.Prizes, o.StakePerPick
				case errors.Is(err, store.ErrNotFound):
					logger.Warn("no official result stored, using the reference prize table")
				default:
					return err
				}

				rep, err := backtest.Run(ctx, h, generator.New(params), p)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rep)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&strategy, "strategy", "s", string(generator.Hot), "strategy to replay")
	f.StringVar(&mode, "mode", "", "policy mode")
	f.IntVar(&size, "history", 200, "drawings to load")
	f.IntVar(&p.Window, "window", 20, "drawings feeding each round's statistics")
	f.IntVar(&p.PicksPer, "picks", 7, "picks per round")
	f.Uint64Var(&p.Seed, "seed", 1, "base seed")
	return cmd
}
