package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/tasks"
)

var (
	selectStart    string
	selectEnd      string
	selectStartStr string
	selectEndStr   string
	selectView     string
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Create the draft event for a selected time range",
	Long: `Select writes the draft records the create-event dialog edits, exactly as a
drag selection on the calendar grid does. In the month view a single day
selection becomes a journal entry when $:/config/NewJournal/Title exists.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		svc := openStore(ctx, cfg)

		info := calendar.SelectInfo{
			View:     calendar.View(selectView),
			StartStr: selectStartStr,
			EndStr:   selectEndStr,
		}
		if !info.View.Valid() {
			fatal("Invalid --view", fmt.Errorf("expected one of %v", calendar.Views))
		}
		if selectStart != "" {
			info.Start = parseTime("start", selectStart)
		}
		if selectEnd != "" {
			info.End = parseTime("end", selectEnd)
		}
		if info.StartStr == "" {
			info.StartStr = selectStart
		}
		if info.EndStr == "" {
			info.EndStr = selectEnd
		}

		queue := tasks.NewQueue()
		host := calendar.NewHeadlessHost(svc, cfg.Calendar, calendar.WithHostLogger(slog.Default()))
		modal := &calendar.HeadlessModal{}
		h := calendar.NewHandlers(cfg.Calendar, svc, host, queue,
			calendar.WithModal(modal),
			calendar.WithLogger(slog.Default()),
		)

		if !h.Select(ctx, info) {
			fmt.Println("Nothing selected.")
			return
		}
		queue.Flush(ctx)
		if err := svc.AutoSave(ctx); err != nil {
			fatal("Error saving draft", err)
		}

		draft, _ := svc.GetRecord(calendar.DraftTitle)
		fmt.Printf("Draft %q: %s\n", draft.String(calendar.FieldDraftTitle), calendar.DraftTitle)
		fmt.Printf("  %s: %s\n", cfg.Calendar.StartDateField, draft.String(cfg.Calendar.StartDateField))
		fmt.Printf("  %s: %s\n", cfg.Calendar.EndDateField, draft.String(cfg.Calendar.EndDateField))
		for _, tmpl := range modal.Displayed() {
			fmt.Printf("Open %s to finish the event.\n", tmpl)
		}
	},
}

func init() {
	selectCmd.Flags().StringVar(&selectStart, "start", "", "Selection start")
	selectCmd.Flags().StringVar(&selectEnd, "end", "", "Selection end")
	selectCmd.Flags().StringVar(&selectStartStr, "start-str", "", "Selection start as reported by the grid (default: --start)")
	selectCmd.Flags().StringVar(&selectEndStr, "end-str", "", "Selection end as reported by the grid (default: --end)")
	selectCmd.Flags().StringVar(&selectView, "view", string(calendar.ViewWeek), "Calendar view")
	rootCmd.AddCommand(selectCmd)
}
