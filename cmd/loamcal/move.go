package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/dates"
	"github.com/aretw0/loamcal/pkg/tasks"
)

var (
	changeStart string
	changeEnd   string
)

var moveCmd = &cobra.Command{
	Use:   "move [title]",
	Short: "Move an event to a new start and end",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runChange(args[0], false)
	},
}

var resizeCmd = &cobra.Command{
	Use:   "resize [title]",
	Short: "Change the start and end of an event",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runChange(args[0], true)
	},
}

// runChange applies a drop or a resize and runs the deferred saves.
func runChange(title string, resize bool) {
	ctx := context.Background()
	cfg := loadConfig()
	svc := openStore(ctx, cfg)

	if changeStart == "" || changeEnd == "" {
		fatal("Invalid range", fmt.Errorf("--start and --end are required"))
	}
	info := calendar.ChangeInfo{Event: calendar.Event{
		Title: title,
		Start: parseTime("start", changeStart),
		End:   parseTime("end", changeEnd),
	}}
	// The stored bounds act as the occurrence being dragged, so a recurring
	// record moves as a series.
	if doc, ok := svc.GetRecord(title); ok {
		old := calendar.Event{Title: title}
		old.Start, _ = dates.Parse(doc.String(cfg.Calendar.StartDateField))
		old.End, _ = dates.Parse(doc.String(cfg.Calendar.EndDateField))
		if old.HasRange() {
			info.OldEvent = &old
		}
	}

	queue := tasks.NewQueue()
	host := calendar.NewHeadlessHost(svc, cfg.Calendar, calendar.WithHostLogger(slog.Default()))
	h := calendar.NewHandlers(cfg.Calendar, svc, host, queue, calendar.WithLogger(slog.Default()))

	var n int
	if resize {
		n = h.EventResize(ctx, info)
	} else {
		n = h.EventDrop(ctx, info)
	}
	queue.Flush(ctx)

	if n == 0 {
		fmt.Printf("No record updated for '%s'.\n", title)
		return
	}
	fmt.Printf("Updated '%s'.\n", title)
}

func init() {
	for _, c := range []*cobra.Command{moveCmd, resizeCmd} {
		c.Flags().StringVar(&changeStart, "start", "", "New start")
		c.Flags().StringVar(&changeEnd, "end", "", "New end")
		rootCmd.AddCommand(c)
	}
}
