package replay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

var asOf = time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

func historyDays(n int) []wearable.Day {
	var days []wearable.Day
	for i := n; i >= 1; i-- {
		date := wearable.DateOf(asOf.AddDate(0, 0, -i))
		days = append(days, wearable.Day{
			Date: date,
			Biometrics: wearable.Biometrics{
				HRV:              50 + float64(i%5),
				RestingHeartRate: 58 + float64(i%4),
			},
			Activity: wearable.Activity{Steps: 8000 + float64(i%3)*500, ActiveCalories: 450},
			Sleep:    wearable.SleepData{DurationSeconds: float64(6*3600 + (i%4)*1800), Source: wearable.SleepMeasured},
		})
	}
	return days
}

func TestReplayThreadsPreviousAxes(t *testing.T) {
	hist := historyDays(21)
	quiet := wearable.Day{
		Date:       "2026-08-22",
		Biometrics: wearable.Biometrics{HRV: 52, RestingHeartRate: 58},
		Activity:   wearable.Activity{Steps: 2000},
		Sleep:      wearable.SleepData{DurationSeconds: 8 * 3600, Source: wearable.SleepMeasured},
	}
	heavy := quiet
	heavy.Date = "2026-08-23"
	heavy.Activity = wearable.Activity{
		Steps: 14000,
		Workouts: []wearable.Workout{
			{ID: "w1", Type: "running", DurationMinutes: 90},
		},
	}

	results := Replay(wearable.History{Days: hist}, []wearable.Day{quiet, heavy}, asOf)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Vitality <= 0 {
			t.Fatalf("%s: expected scored day, got %+v", r.Date, r)
		}
		if r.State == "" || r.Category == "" || r.Stimulus == "" {
			t.Fatalf("%s: incomplete result %+v", r.Date, r)
		}
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	hist := historyDays(21)
	days := historyDays(7)

	a := Replay(wearable.History{Days: hist}, days, asOf)
	b := Replay(wearable.History{Days: hist}, days, asOf)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("day %s diverged between identical runs: %+v vs %+v", a[i].Date, a[i], b[i])
		}
	}
}

func TestFixtureRoundTrip(t *testing.T) {
	f := Fixture{
		Description: "one quiet day",
		Now:         "2026-08-23",
		History:     historyDays(21),
		Days:        historyDays(1),
		Expected:    []ExpectedDay{{Date: historyDays(1)[0].Date, State: engine.StateReadyForLoad}},
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Description != "one quiet day" || len(loaded.Days) != 1 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if !loaded.AsOf().Equal(asOf) {
		t.Fatalf("as-of: %v", loaded.AsOf())
	}
	results := loaded.Run()
	if len(results) != 1 {
		t.Fatalf("run: %d results", len(results))
	}
}

func TestLoadFixtureRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"description":"nothing"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for fixture with no days")
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Date: "a", Vitality: 60, State: engine.StateReadyForLoad},
		{Date: "b", Vitality: 0, State: engine.StateReadyForLoad},
		{Date: "c", Vitality: 40, State: engine.StateRecoveryMode},
	}
	s := Summarize(results)
	if s.TotalDays != 3 || s.Available != 2 {
		t.Fatalf("summary: %+v", s)
	}
	if s.ByState[engine.StateReadyForLoad] != 2 || s.ByState[engine.StateRecoveryMode] != 1 {
		t.Fatalf("by-state: %+v", s.ByState)
	}
}
