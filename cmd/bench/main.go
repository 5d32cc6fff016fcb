package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/loamcal"
	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/dates"
)

func main() {
	count := flag.Int("count", 1000, "Number of event records to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark vault after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "loamcal_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	// Records are written directly to simulate an existing vault.
	fmt.Printf("Generating %d event records in %s...\n", *count, benchDir)
	startGen := time.Now()
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < *count; i++ {
		start := base.Add(time.Duration(i) * 3 * time.Hour)
		content := fmt.Sprintf("---\ncaption: Event %d\nstartDate: \"%s\"\nendDate: \"%s\"\ntags: [benchmark]\n---\nBenchmark event %d.",
			i, dates.Stringify(start), dates.Stringify(start.Add(time.Hour)), i)
		filename := filepath.Join(benchDir, fmt.Sprintf("event_%d.md", i))
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()
	from, to := base, base.AddDate(0, 1, 0)

	// Run 1 parses every file and fills the index cache; run 2 re-opens the
	// vault like a new CLI invocation and is served from the cache.
	run := func(label string) time.Duration {
		start := time.Now()
		svc, err := loamcal.New(benchDir, loamcal.WithLogger(logger), loamcal.WithAutoInit(true))
		if err != nil {
			panic(err)
		}
		if err := svc.Load(ctx); err != nil {
			panic(err)
		}
		events, err := calendar.NewSource(calendar.Context{}, svc, logger).Events(ctx, from, to)
		if err != nil {
			panic(err)
		}
		elapsed := time.Since(start)
		fmt.Printf("%s: %v (Records: %d, Events in January: %d)\n", label, elapsed, len(svc.Records()), len(events))
		return elapsed
	}

	cold := run("Run 1 - Cold")
	warm := run("Run 2 - Warm")

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d records):\n", *count)
	fmt.Printf("  Cold: %v\n", cold)
	fmt.Printf("  Warm: %v\n", warm)
	fmt.Printf("--------------------------------------------------\n")
}
