package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/ics"
)

var (
	exportFrom   string
	exportTo     string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export calendar events as iCalendar",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		svc := openStore(ctx, cfg)
		from, to := window(cfg, exportFrom, exportTo)

		events, err := calendar.NewSource(cfg.Calendar, svc, slog.Default()).Events(ctx, from, to)
		if err != nil {
			fatal("Error listing events", err)
		}

		var out io.Writer = os.Stdout
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				fatal("Error creating output", err)
			}
			defer f.Close()
			out = f
		}
		if err := ics.Encode(out, ics.DefaultProductID, events); err != nil {
			fatal("Error encoding calendar", err)
		}
		slog.Debug("calendar exported", "events", len(events))
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start (default: yesterday)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end (default: horizon_days from now)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}
