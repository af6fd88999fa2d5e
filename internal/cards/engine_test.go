package cards

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/record"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

type stubSuggester struct {
	text string
	err  error
}

func (s stubSuggester) Suggest(ctx context.Context, d engine.Directive) (string, error) {
	return s.text, s.err
}

var testNow = time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)

func baseInput() Input {
	return Input{
		Date: "2026-08-23",
		Now:  testNow,
		Record: &record.DailyRecord{
			Date: "2026-08-23",
			Raw: record.Raw{
				SleepSource: wearable.SleepDerived,
				Workouts: []wearable.Workout{
					{ID: "w1", Type: "running", DurationMinutes: 40},
					{ID: "w2", Type: "strength_training", DurationMinutes: 50},
				},
			},
		},
		State:               engine.StateReadyForLoad,
		Directive:           &engine.Directive{Category: engine.CategoryMixed, Stimulus: engine.StimulusMaintain},
		Goals:               GoalsInfo{},
		LoggedWorkoutsLast7: 5,
		HasPriorRecord:      false,
	}
}

func countType(cs []Card, t Type) int {
	n := 0
	for _, c := range cs {
		if c.Type == t {
			n++
		}
	}
	return n
}

func TestSelectionNeverExceedsTwo(t *testing.T) {
	// Sleep-confirm, two workout-logs, suggestion, goals, and welcome are all
	// eligible at once.
	e := NewEngine(stubSuggester{text: "easy zone-2 spin"})
	d := e.Evaluate(context.Background(), baseInput())

	if len(d.New) < 4 {
		t.Fatalf("expected at least 4 eligible cards, got %d", len(d.New))
	}
	if len(d.Active) != MaxActive {
		t.Fatalf("selection must cap at %d, got %d", MaxActive, len(d.Active))
	}
	// The two highest-priority eligible: sleep-confirm (100), welcome (90).
	if d.Active[0].Type != TypeSleepConfirm || d.Active[1].Type != TypeWelcome {
		t.Fatalf("expected [sleep_confirm welcome], got [%s %s]", d.Active[0].Type, d.Active[1].Type)
	}
}

func TestSelectionTieBrokenByCreationOrder(t *testing.T) {
	older := newCard("2026-08-23", TypeWorkoutLog, "w1", nil, testNow.Add(-time.Hour))
	newer := newCard("2026-08-23", TypeWorkoutLog, "w2", nil, testNow)
	filler := newCard("2026-08-23", TypeGoalsIntake, "", nil, testNow)

	active := selectActive([]Card{newer, filler, older}, Decision{})
	if len(active) != MaxActive {
		t.Fatalf("expected %d active, got %d", MaxActive, len(active))
	}
	if active[0].SubID != "w1" || active[1].SubID != "w2" {
		t.Fatalf("equal priority must keep creation order, got [%s %s]",
			active[0].SubID, active[1].SubID)
	}
}

func TestTwoWorkoutsTwoIndependentCards(t *testing.T) {
	e := NewEngine(nil)
	d := e.Evaluate(context.Background(), baseInput())
	if got := countType(d.New, TypeWorkoutLog); got != 2 {
		t.Fatalf("expected 2 workout-log cards, got %d", got)
	}
	subs := map[string]bool{}
	for _, c := range d.New {
		if c.Type == TypeWorkoutLog {
			subs[c.SubID] = true
		}
	}
	if !subs["w1"] || !subs["w2"] {
		t.Fatalf("expected cards keyed by workout ids, got %v", subs)
	}
}

func TestWorkoutLogDismissalIsEventResurfacing(t *testing.T) {
	in := baseInput()
	dismissedAt := testNow.Add(-48 * time.Hour)
	in.Existing = []Card{
		{ID: "c1", Date: in.Date, Type: TypeWorkoutLog, SubID: "w1", Status: StatusDismissed, DismissedAt: &dismissedAt},
		{ID: "c2", Date: in.Date, Type: TypeWorkoutLog, SubID: "w2", Status: StatusCompleted},
	}
	e := NewEngine(nil)
	d := e.Evaluate(context.Background(), in)

	if got := countType(d.New, TypeWorkoutLog); got != 0 {
		t.Fatalf("no time-based resurfacing for workout-log, got %d new", got)
	}
	if len(d.Resurfaced) != 0 {
		t.Fatalf("dismissed workout-log cards must stay down, got %v", d.Resurfaced)
	}

	// A new workout mints a fresh card under its own key.
	in.Record.Raw.Workouts = append(in.Record.Raw.Workouts, wearable.Workout{ID: "w3", Type: "hiit", DurationMinutes: 20})
	d = e.Evaluate(context.Background(), in)
	if got := countType(d.New, TypeWorkoutLog); got != 1 {
		t.Fatalf("new workout must re-trigger exactly one card, got %d", got)
	}
}

func TestSleepConfirmTimeBoxedResurface(t *testing.T) {
	in := baseInput()
	in.Record.Raw.Workouts = nil

	recent := testNow.Add(-time.Hour)
	in.Existing = []Card{{ID: "sc", Date: in.Date, Type: TypeSleepConfirm, Status: StatusDismissed, DismissedAt: &recent}}
	e := NewEngine(nil)
	if d := e.Evaluate(context.Background(), in); len(d.Resurfaced) != 0 {
		t.Fatal("dismissed an hour ago must stay suppressed")
	}

	old := testNow.Add(-13 * time.Hour)
	in.Existing[0].DismissedAt = &old
	d := e.Evaluate(context.Background(), in)
	if len(d.Resurfaced) != 1 || d.Resurfaced[0] != "sc" {
		t.Fatalf("expected resurface after 12h, got %v", d.Resurfaced)
	}
}

func TestSleepConfirmTerminalOnceCompleted(t *testing.T) {
	in := baseInput()
	in.Existing = []Card{{ID: "sc", Date: in.Date, Type: TypeSleepConfirm, Status: StatusCompleted}}
	d := NewEngine(nil).Evaluate(context.Background(), in)
	if countType(d.New, TypeSleepConfirm) != 0 || len(d.Resurfaced) != 0 {
		t.Fatal("completed sleep-confirm is terminal for the day")
	}
}

func TestSleepConfirmNotEligibleForMeasuredSleep(t *testing.T) {
	in := baseInput()
	in.Record.Raw.SleepSource = wearable.SleepMeasured
	d := NewEngine(nil).Evaluate(context.Background(), in)
	if countType(d.New, TypeSleepConfirm) != 0 {
		t.Fatal("measured sleep must not trigger a confirm card")
	}
}

func TestSuggestionGates(t *testing.T) {
	e := NewEngine(stubSuggester{text: "tempo run"})

	in := baseInput()
	in.LoggedWorkoutsLast7 = 2
	if d := e.Evaluate(context.Background(), in); countType(d.New, TypeWorkoutSuggestion) != 0 {
		t.Fatal("below the 7-day workout floor there is no suggestion")
	}

	in = baseInput()
	in.State = engine.StateRecoveryMode
	if d := e.Evaluate(context.Background(), in); countType(d.New, TypeWorkoutSuggestion) != 0 {
		t.Fatal("recovery_mode must suppress suggestions")
	}

	in = baseInput()
	in.Existing = []Card{{ID: "s", Date: in.Date, Type: TypeWorkoutSuggestion, Status: StatusDismissed}}
	if d := e.Evaluate(context.Background(), in); countType(d.New, TypeWorkoutSuggestion) != 0 {
		t.Fatal("one suggestion per day regardless of status")
	}
}

func TestSuggestionFailureYieldsNoCard(t *testing.T) {
	e := NewEngine(stubSuggester{err: errors.New("service down")})
	d := e.Evaluate(context.Background(), baseInput())
	if countType(d.New, TypeWorkoutSuggestion) != 0 {
		t.Fatal("external failure must degrade to no card, not an error")
	}
}

func TestGoalsIntakeTriggers(t *testing.T) {
	e := NewEngine(nil)

	in := baseInput()
	in.Goals = GoalsInfo{Exists: true, UpdatedAt: testNow.Add(-24 * time.Hour)}
	if d := e.Evaluate(context.Background(), in); countType(d.New, TypeGoalsIntake) != 0 {
		t.Fatal("fresh goals must not trigger intake")
	}

	in.Goals.UpdatedAt = testNow.Add(-31 * 24 * time.Hour)
	if d := e.Evaluate(context.Background(), in); countType(d.New, TypeGoalsIntake) != 1 {
		t.Fatal("stale goals must trigger intake")
	}

	// Completed today gates the automatic trigger but not the manual one.
	in.Existing = []Card{{ID: "g", Date: in.Date, Type: TypeGoalsIntake, Status: StatusCompleted}}
	d := e.Evaluate(context.Background(), in)
	if countType(d.New, TypeGoalsIntake) != 0 || len(d.Resurfaced) != 0 {
		t.Fatal("daily-completed gate must hold")
	}

	// The manual bypass reopens the day's card rather than minting a second
	// one under the same (date, type, sub_id) key.
	in.GoalsManualTrigger = true
	d = e.Evaluate(context.Background(), in)
	if countType(d.New, TypeGoalsIntake) != 0 {
		t.Fatal("manual trigger must not mint a duplicate goals card")
	}
	if len(d.Resurfaced) != 1 || d.Resurfaced[0] != "g" {
		t.Fatalf("manual trigger must reopen the existing card, got %v", d.Resurfaced)
	}
}

func TestWelcomeOnlyBeforeFirstRecord(t *testing.T) {
	e := NewEngine(nil)

	in := baseInput()
	if d := e.Evaluate(context.Background(), in); countType(d.New, TypeWelcome) != 1 {
		t.Fatal("first run must mint a welcome card")
	}

	in.HasPriorRecord = true
	if d := e.Evaluate(context.Background(), in); countType(d.New, TypeWelcome) != 0 {
		t.Fatal("prior records suppress welcome")
	}

	in.HasPriorRecord = false
	in.EverWelcomed = true
	if d := e.Evaluate(context.Background(), in); countType(d.New, TypeWelcome) != 0 {
		t.Fatal("welcome fires at most once ever")
	}
}

func TestLifecycleTransitions(t *testing.T) {
	c := newCard("2026-08-23", TypeSleepConfirm, "", nil, testNow)

	if err := Dismiss(&c, testNow); err != nil {
		t.Fatalf("dismiss active: %v", err)
	}
	if err := Dismiss(&c, testNow); err == nil {
		t.Fatal("double dismiss must fail")
	}
	if err := Resurface(&c, testNow); err != nil {
		t.Fatalf("resurface dismissed: %v", err)
	}
	if err := Complete(&c, nil, testNow); err != nil {
		t.Fatalf("complete active: %v", err)
	}
	if err := Complete(&c, nil, testNow); err == nil {
		t.Fatal("completed is terminal")
	}
	if err := Dismiss(&c, testNow); err == nil {
		t.Fatal("completed cards cannot be dismissed")
	}
}
