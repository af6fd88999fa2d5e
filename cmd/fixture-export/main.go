package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/record"
	"github.com/danielpatrickdp/operator-state/internal/replay"
	"github.com/danielpatrickdp/operator-state/internal/store"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to operator-state.db")
	last := flag.Int("last", 7, "number of most recent days to export as replay days")
	window := flag.Int("window", 30, "how many days of history to export for baselines")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N] [--window N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *window, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath string, last, window int, outPath string) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	tomorrow := wearable.DateOf(time.Now().UTC().AddDate(0, 0, 1))
	recs, err := st.RecentRecords(tomorrow, last+window)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}
	if len(recs) == 0 {
		return fmt.Errorf("no daily records in %s", dbPath)
	}

	// RecentRecords is newest first; flip to chronological.
	days := make([]wearable.Day, 0, len(recs))
	stats := make([]record.Stats, 0, len(recs))
	stims := make([]string, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		r := recs[i]
		days = append(days, dayOf(r))
		stats = append(stats, r.Stats)
		stim := ""
		if r.Directive != nil {
			stim = string(r.Directive.Stimulus)
		}
		stims = append(stims, stim)
	}

	if last > len(days) {
		last = len(days)
	}
	split := len(days) - last

	fixture := replay.Fixture{
		Description: fmt.Sprintf("Export: %d replay days over %d history days from %s", last, split, dbPath),
		Now:         wearable.DateOf(time.Now().UTC()),
		History:     days[:split],
		Days:        days[split:],
	}
	for i := split; i < len(days); i++ {
		exp := replay.ExpectedDay{Date: days[i].Date, State: stats[i].State}
		if stims[i] != "" {
			exp.Stimulus = engine.Stimulus(stims[i])
		}
		fixture.Expected = append(fixture.Expected, exp)
	}

	return writeFixture(fixture, outPath)
}

// dayOf rebuilds the provider-shaped day from a stored record's raw block.
func dayOf(r record.DailyRecord) wearable.Day {
	return wearable.Day{
		Date: r.Date,
		Biometrics: wearable.Biometrics{
			HRV:              r.Raw.HRV,
			RestingHeartRate: r.Raw.RestingHeartRate,
			RespiratoryRate:  r.Raw.RespiratoryRate,
			VO2Max:           r.Raw.VO2Max,
		},
		Activity: wearable.Activity{
			Steps:           r.Raw.Steps,
			ActiveCalories:  r.Raw.ActiveCalories,
			RestingCalories: r.Raw.RestingCalories,
			ExerciseMinutes: r.Raw.ExerciseMinutes,
			MindfulMinutes:  r.Raw.MindfulMinutes,
			Workouts:        r.Raw.Workouts,
		},
		Sleep:    wearable.SleepData{DurationSeconds: r.Raw.SleepSeconds, Source: r.Raw.SleepSource},
		Location: r.Raw.Location,
	}
}

// #endregion extract

// #region output

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Printf("Wrote fixture to %s (%d bytes, %d days)\n", outPath, len(data), len(fixture.Days))
	return nil
}

// #endregion output
