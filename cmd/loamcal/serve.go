package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/loamcal/internal/web"
	"github.com/aretw0/loamcal/pkg/tasks"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calendar API for the browser widget",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := loadConfig()
		if cmd.Flags().Changed("listen") {
			cfg.Listen = serveListen
		}
		svc := openStore(ctx, cfg)
		if err := svc.Follow(ctx); err != nil {
			slog.Warn("external changes will not be picked up", "error", err)
		}

		runner := tasks.NewRunner(ctx, tasks.WithRunnerLogger(slog.Default()))
		srv := web.NewServer(cfg, svc, runner, web.WithLogger(slog.Default()))
		if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
			fatal("Server error", err)
		}

		runner.Wait()
		// Saves still pending when the runner stopped.
		if !cfg.Calendar.ReadOnly {
			if err := svc.AutoSave(context.Background()); err != nil {
				slog.Error("final save failed", "error", err)
			}
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (default: listen from config)")
	rootCmd.AddCommand(serveCmd)
}
