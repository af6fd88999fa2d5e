package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/danielpatrickdp/operator-state/internal/alignment"
	"github.com/danielpatrickdp/operator-state/internal/baseline"
	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/store"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to operator-state.db")
	last := flag.Int("last", 14, "show N most recent days")
	date := flag.String("date", "", "show single day detail")
	showBaselines := flag.Bool("baselines", false, "dump the stored baselines")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/operator-state.db [--last N] [--date YYYY-MM-DD] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *showBaselines:
		err = runBaselinesMode(st, *jsonOut)
	case *date != "":
		err = runDetailMode(st, *date, *jsonOut)
	default:
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	Date      string            `json:"date"`
	Vitality  float64           `json:"vitality"`
	State     engine.State      `json:"state"`
	Archetype engine.Archetype  `json:"archetype"`
	Alignment alignment.Verdict `json:"alignment"`
	Streak    int               `json:"streak"`
	Rank      alignment.Rank    `json:"rank"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	tomorrow := wearable.DateOf(time.Now().UTC().AddDate(0, 0, 1))
	recs, err := st.RecentRecords(tomorrow, last)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no records")
		return nil
	}

	rows := make([]listRow, 0, len(recs))
	for _, r := range recs {
		row := listRow{
			Date:      r.Date,
			State:     r.Stats.State,
			Archetype: r.Stats.Archetype,
			Alignment: r.Stats.Alignment,
			Streak:    r.Stats.Streak,
			Rank:      r.Stats.Rank,
		}
		if r.Stats.Vitality != nil {
			row.Vitality = r.Stats.Vitality.Vitality
		}
		rows = append(rows, row)
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(rows)
	}

	fmt.Printf("%-12s %8s  %-18s %-20s %-10s %6s  %s\n",
		"DATE", "VITALITY", "STATE", "ARCHETYPE", "ALIGNED", "STREAK", "RANK")
	for _, row := range rows {
		fmt.Printf("%-12s %8.0f  %-18s %-20s %-10s %6d  %s\n",
			row.Date, row.Vitality, colorState(row.State), row.Archetype,
			colorVerdict(row.Alignment), row.Streak, row.Rank)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(st *store.Store, date string, jsonOut bool) error {
	rec, err := st.GetDailyRecord(date)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no record for %s", date)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	bold := color.New(color.Bold)
	bold.Printf("%s\n", rec.Date)
	if v := rec.Stats.Vitality; v != nil {
		fmt.Printf("  vitality   %.0f (%s confidence", v.Vitality, v.Confidence)
		if v.IsEstimated {
			fmt.Print(", estimated")
		}
		fmt.Println(")")
		for _, e := range v.Evidence {
			fmt.Printf("             - %s\n", e)
		}
	}
	if a := rec.Stats.Axes; a != nil {
		fmt.Printf("  axes       met=%.0f mech=%.0f neural=%.0f recovery=%.0f regulation=%.0f\n",
			a.Axes.Metabolic, a.Axes.Mechanical, a.Axes.Neural, a.Axes.Recovery, a.Axes.Regulation)
		fmt.Printf("  trends     recovery=%s load=%s\n", a.RecoveryTrend, a.LoadTrend)
	}
	fmt.Printf("  state      %s (lens: %s)\n", colorState(rec.Stats.State), rec.Stats.Archetype)
	fmt.Printf("  alignment  %s, streak %d, rank %s\n",
		colorVerdict(rec.Stats.Alignment), rec.Stats.Streak, rec.Stats.Rank)

	if d := rec.Directive; d != nil {
		fmt.Printf("  directive  %s / %s", d.Category, d.Stimulus)
		if d.Constraints.LowImpact {
			fmt.Print(", low impact")
		}
		if d.Constraints.HeartRateCap > 0 {
			fmt.Printf(", hr<=%d", d.Constraints.HeartRateCap)
		}
		fmt.Println()
		if d.Content != nil {
			fmt.Printf("  focus      %s\n", d.Content.SessionFocus)
			fmt.Printf("  avoid      %s\n", d.Content.AvoidCue)
			fmt.Printf("  insight    %s [%s]\n", d.Content.InsightSummary, d.Content.Provenance)
		}
	}

	printCards(st, date)
	return nil
}

func printCards(st *store.Store, date string) {
	all, err := st.CardsByDate(date)
	if err != nil || len(all) == 0 {
		return
	}
	fmt.Println("  cards")
	for _, c := range all {
		fmt.Printf("    [%-9s] %s %s\n", c.Status, c.Type, c.SubID)
	}
}

// #endregion detail-mode

// #region baselines-mode

func runBaselinesMode(st *store.Store, jsonOut bool) error {
	b, err := st.GetBaselines()
	if err != nil {
		return err
	}
	if b == nil {
		fmt.Println("no baselines stored")
		return nil
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	fmt.Printf("computed %s over %d days\n", b.ComputedAt.Format(time.RFC3339), b.WindowDays)
	fmt.Printf("%-16s %10s %10s %8s %9s\n", "METRIC", "MEAN", "STDDEV", "SAMPLES", "COVERAGE")
	rows := []struct {
		name string
		m    baseline.Metric
	}{
		{"hrv", b.HRV},
		{"resting_hr", b.RestingHR},
		{"sleep", b.Sleep},
		{"steps", b.Steps},
		{"active_energy", b.ActiveEnergy},
		{"vo2_max", b.VO2Max},
		{"workout_minutes", b.WorkoutMinutes},
	}
	for _, r := range rows {
		fmt.Printf("%-16s %10.1f %10.1f %8d %8.0f%%\n",
			r.name, r.m.Mean, r.m.StdDev, r.m.SampleCount, r.m.Coverage*100)
	}
	return nil
}

// #endregion baselines-mode

// #region color

func colorState(s engine.State) string {
	switch s {
	case engine.StateRecoveryMode, engine.StatePhysicalStrain:
		return color.RedString(string(s))
	case engine.StateHighStrain:
		return color.YellowString(string(s))
	case engine.StateBuildingCapacity, engine.StateReadyForLoad:
		return color.GreenString(string(s))
	default:
		return string(s)
	}
}

func colorVerdict(v alignment.Verdict) string {
	switch v {
	case alignment.VerdictAligned:
		return color.GreenString(string(v))
	case alignment.VerdictOvershot:
		return color.RedString(string(v))
	case alignment.VerdictUndershot:
		return color.YellowString(string(v))
	default:
		return string(v)
	}
}

// #endregion color
