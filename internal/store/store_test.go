package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/baseline"
	"github.com/danielpatrickdp/operator-state/internal/cards"
	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/record"
	"github.com/danielpatrickdp/operator-state/internal/vitality"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMissingKeysReturnAbsentValues(t *testing.T) {
	s := openTestStore(t)

	if rec, err := s.GetDailyRecord("2026-08-23"); err != nil || rec != nil {
		t.Fatalf("missing record: got (%v, %v), want (nil, nil)", rec, err)
	}
	if b, err := s.GetBaselines(); err != nil || b != nil {
		t.Fatalf("missing baselines: got (%v, %v), want (nil, nil)", b, err)
	}
	if g, err := s.GetGoals(); err != nil || g != nil {
		t.Fatalf("missing goals: got (%v, %v), want (nil, nil)", g, err)
	}
	if snap, err := s.GetSnapshot("2026-08-23"); err != nil || snap != nil {
		t.Fatalf("missing snapshot: got (%v, %v), want (nil, nil)", snap, err)
	}
	if c, err := s.GetCard("nope"); err != nil || c != nil {
		t.Fatalf("missing card: got (%v, %v), want (nil, nil)", c, err)
	}
}

func TestDailyRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rec := &record.DailyRecord{
		Date: "2026-08-23",
		Raw:  record.Raw{HRV: 52, Steps: 9000, SleepSeconds: 27000},
		Stats: record.Stats{
			Vitality: &vitality.Result{Availability: vitality.Available, Vitality: 61},
			State:    engine.StateReadyForLoad,
			Streak:   4,
		},
		Directive: &record.Directive{
			Directive: engine.Directive{Category: engine.CategoryMixed, Stimulus: engine.StimulusMaintain},
			Content:   &record.Content{SessionFocus: "steady work", Provenance: "fallback"},
		},
	}
	if err := s.SaveDailyRecord(rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetDailyRecord("2026-08-23")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if got.Raw.HRV != 52 || got.Stats.Streak != 4 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Directive == nil || got.Directive.Content.SessionFocus != "steady work" {
		t.Fatalf("directive lost: %+v", got.Directive)
	}

	// Upsert: same date, derived fields overwritten, still one row.
	rec.Stats.Streak = 5
	if err := s.SaveDailyRecord(rec); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, _ = s.GetDailyRecord("2026-08-23")
	if got.Stats.Streak != 5 {
		t.Fatalf("expected overwritten streak 5, got %d", got.Stats.Streak)
	}
}

func TestRecentRecordsOrderAndExclusion(t *testing.T) {
	s := openTestStore(t)
	for _, d := range []string{"2026-08-20", "2026-08-21", "2026-08-22", "2026-08-23"} {
		if err := s.SaveDailyRecord(&record.DailyRecord{Date: d}); err != nil {
			t.Fatalf("save %s: %v", d, err)
		}
	}
	recs, err := s.RecentRecords("2026-08-23", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 || recs[0].Date != "2026-08-22" || recs[1].Date != "2026-08-21" {
		t.Fatalf("expected [22 21], got %+v", recs)
	}
}

func TestBaselinesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	b := baseline.Baselines{
		HRV:        baseline.Metric{Mean: 50, StdDev: 5, SampleCount: 20, Coverage: 0.66},
		WindowDays: 30,
		ComputedAt: time.Now().UTC(),
	}
	if err := s.SaveBaselines(b); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetBaselines()
	if err != nil || got == nil {
		t.Fatalf("get: (%v, %v)", got, err)
	}
	if got.HRV.Mean != 50 || got.HRV.SampleCount != 20 {
		t.Fatalf("round trip mismatch: %+v", got.HRV)
	}
}

func TestCardRoundTripAndUniqueKey(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()
	c := cards.Card{
		ID: "c1", Date: "2026-08-23", Type: cards.TypeWorkoutLog, SubID: "w1",
		Status: cards.StatusActive, Priority: 80,
		DismissPolicy: cards.PolicyEventResurface,
		Payload:       []byte(`{"workout_id":"w1"}`),
		CreatedAt:     now, UpdatedAt: now,
	}
	if err := s.SaveCard(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetCard("c1")
	if err != nil || got == nil {
		t.Fatalf("get: (%v, %v)", got, err)
	}
	if got.SubID != "w1" || got.Status != cards.StatusActive {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// A second card for the same (date, type, sub_id) violates the key.
	dup := c
	dup.ID = "c2"
	if err := s.SaveCard(dup); err == nil {
		t.Fatal("expected unique(date,type,sub_id) violation")
	}

	byDate, err := s.CardsByDate("2026-08-23")
	if err != nil || len(byDate) != 1 {
		t.Fatalf("cards by date: (%d, %v)", len(byDate), err)
	}

	ok, err := s.HasCardOfType(cards.TypeWorkoutLog)
	if err != nil || !ok {
		t.Fatalf("has card of type: (%v, %v)", ok, err)
	}
}

func TestGoalsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveGoals(Goals{PrimaryGoal: "run a sub-20 5k", Horizon: "12 weeks"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	g, err := s.GetGoals()
	if err != nil || g == nil {
		t.Fatalf("get: (%v, %v)", g, err)
	}
	if g.PrimaryGoal != "run a sub-20 5k" || g.UpdatedAt.IsZero() {
		t.Fatalf("round trip mismatch: %+v", g)
	}
}

func TestSnapshotShapeComparison(t *testing.T) {
	s := openTestStore(t)
	d := engine.Directive{
		Category:    engine.CategoryStrength,
		Stimulus:    engine.StimulusOverload,
		Constraints: engine.Constraints{HeartRateCap: 150, Equipment: []string{"barbell"}},
	}
	snap := SnapshotOf("2026-08-23", d)
	snap.RegenCount = 2
	snap.LastRegenAt = time.Now().UTC()
	if err := s.SaveSnapshot(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetSnapshot("2026-08-23")
	if err != nil || got == nil {
		t.Fatalf("get: (%v, %v)", got, err)
	}
	if got.RegenCount != 2 || !got.SameShape(snap) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	changed := d
	changed.Constraints.HeartRateCap = 140
	if got.SameShape(SnapshotOf("2026-08-23", changed)) {
		t.Fatal("hr cap change must break shape equality")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	s1, err := NewStore(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()
	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("second open must tolerate existing schema: %v", err)
	}
	s2.Close()
}
