package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/loamcal/pkg/calendar"
)

var previewCmd = &cobra.Command{
	Use:   "preview [title]",
	Short: "Render the preview popup of an event as HTML",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		svc := openStore(ctx, cfg)

		// Skinny records only carry frontmatter; the preview needs the body.
		if doc, ok := svc.GetRecord(args[0]); ok && doc.IsSkinny() {
			if err := svc.Reload(ctx, args[0]); err != nil {
				fatal("Error loading record", err)
			}
		}

		host := calendar.NewHeadlessHost(svc, cfg.Calendar, calendar.WithHostLogger(slog.Default()))
		w, err := host.RenderPreview(ctx, args[0])
		if err != nil {
			fatal("Error rendering preview", err)
		}
		fmt.Println(w.(*calendar.HeadlessWidget).View().HTML)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
