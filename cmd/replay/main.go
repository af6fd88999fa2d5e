package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/replay"
	"github.com/danielpatrickdp/operator-state/internal/store"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to operator-state.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	days := flag.Int("days", 30, "DB mode: how many recent days to replay")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/operator-state.db [--days N]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *days)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results := f.Run()

	expected := make(map[string]replay.ExpectedDay, len(f.Expected))
	for _, e := range f.Expected {
		expected[e.Date] = e
	}

	var refStates, refStimuli []string
	for _, r := range results {
		e, ok := expected[r.Date]
		if !ok {
			refStates = append(refStates, "")
			refStimuli = append(refStimuli, "")
			continue
		}
		refStates = append(refStates, string(e.State))
		refStimuli = append(refStimuli, string(e.Stimulus))
	}
	return printComparison(results, refStates, refStimuli)
}

// #endregion fixture-mode

// #region db-mode

// runDBMode re-derives recent stored days from their raw data and compares
// against what the pipeline persisted: a drift check after rule changes.
func runDBMode(dbPath string, days int) int {
	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	tomorrow := wearable.DateOf(time.Now().UTC().AddDate(0, 0, 1))
	recs, err := st.RecentRecords(tomorrow, days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read records: %v\n", err)
		return 2
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "no records to replay")
		return 2
	}

	// RecentRecords is newest first; replay runs oldest first.
	var history wearable.History
	var replayDays []wearable.Day
	var refStates, refStimuli []string
	for i := len(recs) - 1; i >= 0; i-- {
		r := recs[i]
		day := wearable.Day{
			Date: r.Date,
			Biometrics: wearable.Biometrics{
				HRV:              r.Raw.HRV,
				RestingHeartRate: r.Raw.RestingHeartRate,
			},
			Activity: wearable.Activity{
				Steps:          r.Raw.Steps,
				ActiveCalories: r.Raw.ActiveCalories,
				MindfulMinutes: r.Raw.MindfulMinutes,
				Workouts:       r.Raw.Workouts,
			},
			Sleep: wearable.SleepData{DurationSeconds: r.Raw.SleepSeconds, Source: r.Raw.SleepSource},
		}
		history.Days = append(history.Days, day)
		replayDays = append(replayDays, day)
		refStates = append(refStates, string(r.Stats.State))
		stim := ""
		if r.Directive != nil {
			stim = string(r.Directive.Stimulus)
		}
		refStimuli = append(refStimuli, stim)
	}

	results := replay.Replay(history, replayDays, time.Now().UTC())
	return printComparison(results, refStates, refStimuli)
}

// #endregion db-mode

// #region output

// printComparison outputs a comparison table and returns the exit code:
// 0 when every day matches, 1 on divergence.
func printComparison(results []replay.Result, refStates, refStimuli []string) int {
	fmt.Printf("%-12s| %-20s| %-20s| %-10s| %s\n", "Date", "Expected", "Replayed", "Stimulus", "Match")
	fmt.Printf("%-12s+%-21s+%-21s+%-11s+%s\n",
		"------------", "---------------------", "---------------------", "-----------", "------")

	matches := 0
	total := len(results)
	for i, r := range results {
		expState := ""
		expStim := ""
		if i < len(refStates) {
			expState = refStates[i]
		}
		if i < len(refStimuli) {
			expStim = refStimuli[i]
		}

		match := "DIFF"
		if expState == string(r.State) && (expStim == "" || expStim == string(r.Stimulus)) {
			match = "OK"
			matches++
		}
		fmt.Printf("%-12s| %-20s| %-20s| %-10s| %s\n", r.Date, expState, r.State, r.Stimulus, match)
	}

	sum := replay.Summarize(results)
	fmt.Printf("\nSummary: %d days, %d match, %d diverge, %d scored\n",
		total, matches, total-matches, sum.Available)
	for _, s := range engine.States {
		if n := sum.ByState[s]; n > 0 {
			fmt.Printf("  %-20s %d\n", s, n)
		}
	}

	if matches != total {
		return 1
	}
	return 0
}

// #endregion output
