package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/cards"
	"github.com/danielpatrickdp/operator-state/internal/config"
	"github.com/danielpatrickdp/operator-state/internal/generator"
	"github.com/danielpatrickdp/operator-state/internal/logging"
	"github.com/danielpatrickdp/operator-state/internal/orchestrator"
	"github.com/danielpatrickdp/operator-state/internal/store"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #region main

func main() {
	date := flag.String("date", "", "date to run (YYYY-MM-DD), default today")
	force := flag.Bool("force", false, "bypass the run cache")
	reset := flag.Bool("reset", false, "drop the stored record first and recompute from scratch")
	goalsManual := flag.Bool("goals", false, "re-run the goals intake even if completed today")
	backfill := flag.Int("backfill", 0, "fill the last N days instead of running one date")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	var gen generator.Generator
	var suggester cards.Suggester
	if cfg.GenerationEnabled {
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			a, err := generator.NewAnthropic(key, cfg.Model)
			if err != nil {
				fmt.Fprintf(os.Stderr, "generator: %v\n", err)
				os.Exit(1)
			}
			gen = a
			suggester = a
		}
	}

	runner := &orchestrator.Runner{
		Store:      st,
		Provider:   wearable.NewFileProvider(cfg.DataDir),
		Generator:  gen,
		Cards:      cards.NewEngine(suggester),
		WindowDays: cfg.BaselineWindowDays,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *backfill > 0 {
		written, err := runner.Backfill(ctx, *backfill)
		if err != nil {
			fmt.Fprintf(os.Stderr, "backfill: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("backfilled %d day(s)\n", written)
		return
	}

	runDate := *date
	if runDate == "" {
		runDate = wearable.DateOf(time.Now().UTC())
	}
	if _, err := time.Parse(wearable.DateLayout, runDate); err != nil {
		fmt.Fprintf(os.Stderr, "bad -date %q: want YYYY-MM-DD\n", runDate)
		os.Exit(2)
	}

	if *reset {
		if err := st.DeleteDailyRecord(runDate); err != nil {
			fmt.Fprintf(os.Stderr, "reset %s: %v\n", runDate, err)
			os.Exit(1)
		}
		*force = true
	}

	rec, err := runner.Run(ctx, runDate, orchestrator.Opts{
		Trigger:     logging.TriggerRefresh,
		Force:       *force,
		GoalsManual: *goalsManual,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}
	vit := 0.0
	if rec.Stats.Vitality != nil {
		vit = rec.Stats.Vitality.Vitality
	}
	fmt.Printf("%s: state=%s archetype=%s vitality=%.0f streak=%d\n",
		rec.Date, rec.Stats.State, rec.Stats.Archetype, vit, rec.Stats.Streak)
}

// #endregion main
