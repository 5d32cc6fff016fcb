package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/loamcal/pkg/core"
	"github.com/aretw0/loamcal/pkg/ics"
)

var importOverwrite bool

var importCmd = &cobra.Command{
	Use:   "import [file.ics]",
	Short: "Create records from the events of an iCalendar file",
	Long:  `Import reads VEVENTs from the file (or stdin with "-") and writes one record per event.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		if cfg.Calendar.ReadOnly {
			fatal("Error importing", core.ErrReadOnly)
		}
		svc := openStore(ctx, cfg)

		var in io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				fatal("Error opening file", err)
			}
			defer f.Close()
			in = f
		}

		entries, err := ics.Decode(in)
		if err != nil {
			fatal("Error reading calendar", err)
		}

		created := 0
		for _, e := range entries {
			doc := e.Document(cfg.Calendar)
			if _, exists := svc.GetRecord(doc.ID); exists && !importOverwrite {
				slog.Info("skipping existing record", "title", doc.ID)
				continue
			}
			if err := svc.AddRecord(doc); err != nil {
				fatal("Error adding record", err)
			}
			created++
		}
		if err := svc.AutoSave(ctx); err != nil {
			fatal("Error saving records", err)
		}
		fmt.Printf("Imported %d of %d events.\n", created, len(entries))
	},
}

func init() {
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Replace records that already exist")
	rootCmd.AddCommand(importCmd)
}
