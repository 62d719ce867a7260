package main

import (
	"fmt"
	"io"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/palpiteiro/tipengine/internal/config"
	"github.com/palpiteiro/tipengine/internal/logger"
)

type rootOptions struct {
	configPath string
	debug      bool
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "tipengine",
		Short:         "Lotofácil statistics, tips and result checking",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			level, err := logger.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			if opts.debug {
				level = slog.LevelDebug
			}
			logger.Init(logger.Options{Level: level, Writer: cmd.ErrOrStderr(), TimeFormat: cfg.Log.TimeFormat})
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newDailyCmd(opts),
		newStatsCmd(opts),
		newCheckCmd(opts),
		newSyncCmd(opts),
		newBacktestCmd(opts),
	)
	return root
}

var jsonOut = jsoniter.ConfigCompatibleWithStandardLibrary

func printJSON(w io.Writer, v any) error {
	b, err := jsonOut.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
