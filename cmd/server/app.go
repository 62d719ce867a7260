package main

import (
	"errors"
	"fmt"

	"github.com/palpiteiro/tipengine/internal/config"
	"github.com/palpiteiro/tipengine/internal/events"
	"github.com/palpiteiro/tipengine/internal/logger"
	"github.com/palpiteiro/tipengine/internal/policy"
	"github.com/palpiteiro/tipengine/internal/results"
	"github.com/palpiteiro/tipengine/internal/store"
	"github.com/palpiteiro/tipengine/internal/tips"
)

// app holds the wired collaborators of one process.
type app struct {
	cfg     config.Config
	db      *store.BadgerStore
	loader  *policy.Loader
	emitter *events.Emitter
	svc     *tips.Service
	fetcher *results.Fetcher
}

func openApp(cfg config.Config) (*app, error) {
	db, err := store.Open(store.Options{Path: cfg.Store.Path, InMemory: cfg.Store.InMemory})
	if err != nil {
		return nil, err
	}
	logger.Debug("store opened", "path", cfg.Store.Path, "in_memory", cfg.Store.InMemory)
	a := &app{cfg: cfg, db: db, loader: policy.NewLoader(cfg.PolicyDir)}

	sinks := []tips.PickSink{db}
	if cfg.NATS.URL != "" {
		em, err := events.NewEmitter(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		a.emitter = em
		sinks = append(sinks, em)
	}

	a.svc = tips.New(db, a.loader, cfg.Game, cfg.HistorySize,
		tips.WithSinks(sinks...),
		tips.WithPickLister(db),
		tips.WithLogger(logger.With("component", "tips")),
	)
	a.fetcher = results.New(results.Config{
		URL:        cfg.Results.URL,
		Timeout:    cfg.Results.Timeout,
		MaxElapsed: cfg.Results.MaxElapsed,
	}, db, results.WithLogger(logger.With("component", "results")))
	return a, nil
}

func (a *app) Close() error {
	if a.emitter != nil {
		a.emitter.Close()
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// withApp opens the app for the duration of fn.
func withApp(opts *rootOptions, fn func(*app) error) (err error) {
	a, err := openApp(opts.cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, a.Close()) }()
	return fn(a)
}
