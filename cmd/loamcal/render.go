package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/loamcal/internal/web"
	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/dates"
)

var (
	renderView     string
	renderStart    string
	renderEnd      string
	renderTimeText string
)

var renderCmd = &cobra.Command{
	Use:   "render [title]",
	Short: "Render the calendar cell of an event as HTML",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		svc := openStore(ctx, cfg)

		view := calendar.View(renderView)
		if !view.Valid() {
			fatal("Invalid --view", fmt.Errorf("expected one of %v", calendar.Views))
		}

		if doc, ok := svc.GetRecord(args[0]); ok && doc.IsSkinny() {
			if err := svc.Reload(ctx, args[0]); err != nil {
				fatal("Error loading record", err)
			}
		}

		ev := calendar.Event{Title: args[0]}
		if doc, ok := svc.GetRecord(args[0]); ok {
			ev.Start, _ = dates.Parse(doc.String(cfg.Calendar.StartDateField))
			ev.End, _ = dates.Parse(doc.String(cfg.Calendar.EndDateField))
		}
		if renderStart != "" {
			ev.Start = parseTime("start", renderStart)
		}
		if renderEnd != "" {
			ev.End = parseTime("end", renderEnd)
		}

		timeText := renderTimeText
		if !cmd.Flags().Changed("time-text") {
			timeText = web.TimeText(cfg.TimeTextFormat, ev)
		}

		content := calendar.NewFormatter(cfg.Calendar, svc).EventContent(calendar.ContentArg{
			Event:    ev,
			View:     view,
			TimeText: timeText,
		})
		fmt.Println(content.HTML)
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderView, "view", string(calendar.ViewWeek), "Calendar view")
	renderCmd.Flags().StringVar(&renderStart, "start", "", "Override the event start")
	renderCmd.Flags().StringVar(&renderEnd, "end", "", "Override the event end")
	renderCmd.Flags().StringVar(&renderTimeText, "time-text", "", "Time text shown in the cell (default: time_text_format)")
	rootCmd.AddCommand(renderCmd)
}
