package main

import (
	"fmt"
	"os"

	"github.com/sandeepkv93/habitd/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "habitd failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	flags := config.Default()

	cmd := &cobra.Command{
		Use:           "habitd",
		Short:         "Track daily habits, streaks and weekly history in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg := config.FromEnv(config.Default())
			themeExplicit := os.Getenv("HABITD_THEME") != ""
			applyFlags(cmd, &cfg, flags)
			if cmd.Flags().Changed("theme") {
				themeExplicit = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, themeExplicit)
		},
	}

	f := cmd.Flags()
	f.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading HABITD_* variables")
	f.StringVar(&flags.DBPath, "db", flags.DBPath, "SQLite database path")
	f.IntVar(&flags.HistoryDays, "history-days", flags.HistoryDays, "days kept in each habit's history window")
	f.DurationVar(&flags.NotifyTTL, "notify-ttl", flags.NotifyTTL, "how long a notification stays visible")
	f.BoolVar(&flags.Demo, "demo", flags.Demo, "seed the demo habits when the database is empty")
	f.StringVar(&flags.FixtureFile, "fixture", flags.FixtureFile, "YAML file with habits to seed instead of the demo set")
	f.StringVar(&flags.LogFile, "log-file", flags.LogFile, "file receiving structured logs")
	f.StringVar(&flags.MetricsAddr, "metrics-addr", flags.MetricsAddr, "serve Prometheus metrics on this address (disabled when empty)")
	f.StringVar(&flags.Theme, "theme", flags.Theme, "color theme: light or dark")
	f.Int64Var(&flags.Seed, "seed", flags.Seed, "random seed for demo history and habit colors (0 = time based)")
	return cmd
}

// applyFlags copies explicitly set flags over the environment-derived config.
func applyFlags(cmd *cobra.Command, cfg *config.RuntimeConfig, flags config.RuntimeConfig) {
	f := cmd.Flags()
	if f.Changed("db") {
		cfg.DBPath = flags.DBPath
	}
	if f.Changed("history-days") {
		cfg.HistoryDays = flags.HistoryDays
	}
	if f.Changed("notify-ttl") {
		cfg.NotifyTTL = flags.NotifyTTL
	}
	if f.Changed("demo") {
		cfg.Demo = flags.Demo
	}
	if f.Changed("fixture") {
		cfg.FixtureFile = flags.FixtureFile
	}
	if f.Changed("log-file") {
		cfg.LogFile = flags.LogFile
	}
	if f.Changed("metrics-addr") {
		cfg.MetricsAddr = flags.MetricsAddr
	}
	if f.Changed("theme") {
		if theme, ok := config.NormalizeTheme(flags.Theme); ok {
			cfg.Theme = theme
		} else {
			cfg.Theme = flags.Theme
		}
	}
	if f.Changed("seed") {
		cfg.Seed = flags.Seed
	}
}
