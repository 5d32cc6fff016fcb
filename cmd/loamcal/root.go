package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/loamcal/internal/config"
	"github.com/aretw0/loamcal/internal/platform"
	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/dates"
)

var (
	verbose    bool
	vaultPath  string
	adapter    string
	configPath string
	readOnly   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "loamcal",
	Short: "A calendar over a vault of Markdown + Frontmatter records",
	Long: `loamcal reads records with start and end dates from a vault and renders
them as calendar events. Moving, resizing and creating events writes back to
the records.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", "", "Vault directory (fs) or database file (sqlite)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: fs or sqlite")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to loamcal.yaml (default: <vault root>/loamcal.yaml)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Never write to the vault")
}

// loadConfig merges the config file, the environment and the global flags.
func loadConfig() *config.Config {
	path := configPath
	if path == "" {
		if root, err := platform.FindRoot("."); err == nil {
			path = root + string(os.PathSeparator) + "loamcal.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fatal("Error loading config", err)
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("vault") {
		cfg.Vault = vaultPath
	}
	if flags.Changed("adapter") {
		cfg.Adapter = adapter
	}
	if flags.Changed("read-only") {
		cfg.Calendar.ReadOnly = readOnly
	}
	cfg.Normalize()
	return cfg
}

// openStore opens and loads the record store described by cfg.
func openStore(ctx context.Context, cfg *config.Config) *core.Service {
	svc, err := platform.New(cfg.Vault,
		platform.WithAdapter(cfg.Adapter),
		platform.WithSystemDir(cfg.SystemDir),
		platform.WithReadOnly(cfg.Calendar.ReadOnly),
		platform.WithAutoInit(!cfg.Calendar.ReadOnly),
		platform.WithLogger(slog.Default()),
	)
	if err != nil {
		fatal("Error opening vault", err)
	}
	if err := svc.Load(ctx); err != nil {
		fatal("Error loading records", err)
	}
	return svc
}

// parseTime accepts canonical record dates, RFC 3339 and plain dates.
func parseTime(name, value string) time.Time {
	t, ok := dates.Parse(value)
	if !ok {
		fatal("Invalid --"+name, fmt.Errorf("cannot parse %q", value))
	}
	return t
}

// window resolves --from/--to, defaulting to yesterday through the horizon.
func window(cfg *config.Config, from, to string) (time.Time, time.Time) {
	now := time.Now()
	start := now.AddDate(0, 0, -1)
	end := now.AddDate(0, 0, cfg.HorizonDays)
	if from != "" {
		start = parseTime("from", from)
	}
	if to != "" {
		end = parseTime("to", to)
	}
	return start, end
}
