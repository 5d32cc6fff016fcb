package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/dates"
)

var (
	eventsFrom string
	eventsTo   string
	eventsJSON bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List calendar events in a date range",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		svc := openStore(ctx, cfg)
		from, to := window(cfg, eventsFrom, eventsTo)

		events, err := calendar.NewSource(cfg.Calendar, svc, slog.Default()).Events(ctx, from, to)
		if err != nil {
			fatal("Error listing events", err)
		}

		if eventsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if events == nil {
				events = []calendar.Event{}
			}
			if err := enc.Encode(events); err != nil {
				fatal("Error encoding events", err)
			}
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "START\tEND\tTITLE")
		for _, ev := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\n",
				dates.Format(ev.Start.Local(), "YYYY-0MM-0DD 0hh:0mm"),
				dates.Format(ev.End.Local(), "YYYY-0MM-0DD 0hh:0mm"),
				ev.Title)
		}
		_ = tw.Flush()
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsFrom, "from", "", "Range start (default: yesterday)")
	eventsCmd.Flags().StringVar(&eventsTo, "to", "", "Range end (default: horizon_days from now)")
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(eventsCmd)
}
