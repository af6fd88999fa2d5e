package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/record"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// MaxActive caps how many cards surface at once: an admission-control limit
// on operator interruptions.
const MaxActive = 2

// SuggestionMinWorkouts is the trailing-7-day logged-workout floor for the
// workout-suggestion trigger.
const SuggestionMinWorkouts = 3

// GoalsStaleAfter triggers a goals-intake refresh.
const GoalsStaleAfter = 30 * 24 * time.Hour

// #region suggester

// Suggester is the external workout-suggestion call. Failure yields no card,
// never an error for the run.
type Suggester interface {
	Suggest(ctx context.Context, d engine.Directive) (string, error)
}

// #endregion suggester

// #region input

// GoalsInfo is the slice of operator goals the triggers read.
type GoalsInfo struct {
	Exists    bool
	UpdatedAt time.Time
}

// Input bundles everything the five triggers read.
type Input struct {
	Date                string
	Now                 time.Time
	Record              *record.DailyRecord
	State               engine.State
	Directive           *engine.Directive
	Goals               GoalsInfo
	GoalsManualTrigger  bool // explicit re-intake request, bypasses the daily gate
	LoggedWorkoutsLast7 int
	HasPriorRecord      bool
	EverWelcomed        bool // a welcome card exists for any date
	Existing            []Card // this date's cards, any status
}

// #endregion input

// #region decision

// Decision is the engine output: cards to mint, dismissed cards to bring
// back, and the capped active selection.
type Decision struct {
	New        []Card
	Resurfaced []string // IDs to flip back to active
	Active     []Card   // ≤ MaxActive, highest priority first
}

// #endregion decision

// #region engine

// Engine evaluates the five independent eligibility triggers and applies the
// priority cap. Pure except for the external suggestion call.
type Engine struct {
	suggester Suggester // may be nil: suggestion trigger simply never fires
}

// NewEngine creates a card engine. suggester may be nil.
func NewEngine(suggester Suggester) *Engine {
	return &Engine{suggester: suggester}
}

// Evaluate runs every trigger, unions the results, and keeps the top two by
// fixed priority.
func (e *Engine) Evaluate(ctx context.Context, in Input) Decision {
	var d Decision

	e.sleepConfirm(in, &d)
	e.workoutLog(in, &d)
	e.workoutSuggestion(ctx, in, &d)
	e.goalsIntake(in, &d)
	e.welcome(in, &d)

	d.Active = selectActive(in.Existing, d)
	return d
}

// #endregion engine

// #region sleep-confirm

// sleepConfirm fires when sleep was not a direct measurement. Dismissal is
// time-boxed: 12h of quiet, then re-offered. Completing it is terminal for
// the day.
func (e *Engine) sleepConfirm(in Input, d *Decision) {
	if in.Record == nil || in.Record.Raw.SleepSource == wearable.SleepMeasured {
		return
	}
	for _, c := range in.Existing {
		if c.Type != TypeSleepConfirm {
			continue
		}
		switch c.Status {
		case StatusCompleted, StatusActive:
			return // terminal today, or already offered
		case StatusDismissed:
			if c.DismissedAt != nil && in.Now.Sub(*c.DismissedAt) >= SleepConfirmResurfaceAfter {
				d.Resurfaced = append(d.Resurfaced, c.ID)
			}
			return
		}
	}
	d.New = append(d.New, newCard(in.Date, TypeSleepConfirm, "", nil, in.Now))
}

// #endregion sleep-confirm

// #region workout-log

// workoutLog mints one card per unlogged workout, keyed by workout id, so N
// workouts yield N independently dismissible cards. A dismissed card stays
// down; only a new workout (new sub-id) re-triggers.
func (e *Engine) workoutLog(in Input, d *Decision) {
	if in.Record == nil {
		return
	}
	existing := map[string]bool{}
	for _, c := range in.Existing {
		if c.Type == TypeWorkoutLog {
			existing[c.SubID] = true
		}
	}
	for _, w := range in.Record.Raw.Workouts {
		if w.Logged || w.ID == "" || existing[w.ID] {
			continue
		}
		payload, _ := json.Marshal(map[string]any{
			"workout_id":       w.ID,
			"workout_type":     w.Type,
			"duration_minutes": w.DurationMinutes,
		})
		d.New = append(d.New, newCard(in.Date, TypeWorkoutLog, w.ID, payload, in.Now))
	}
}

// #endregion workout-log

// #region workout-suggestion

// workoutSuggestion needs a training habit (≥3 logged workouts in 7 days), a
// state that tolerates more load, and at most one card per day. The external
// suggestion call failing means no card, not an error.
func (e *Engine) workoutSuggestion(ctx context.Context, in Input, d *Decision) {
	if e.suggester == nil || in.Directive == nil {
		return
	}
	if in.LoggedWorkoutsLast7 < SuggestionMinWorkouts {
		return
	}
	if in.State == engine.StateRecoveryMode || in.State == engine.StatePhysicalStrain {
		return
	}
	for _, c := range in.Existing {
		if c.Type == TypeWorkoutSuggestion {
			return // ≤1/day regardless of status
		}
	}

	text, err := e.suggester.Suggest(ctx, *in.Directive)
	if err != nil || text == "" {
		log.Printf("[CARDS] suggestion call failed, skipping card: %v", err)
		return
	}
	payload, _ := json.Marshal(map[string]string{"suggestion": text})
	d.New = append(d.New, newCard(in.Date, TypeWorkoutSuggestion, "", payload, in.Now))
}

// #endregion workout-suggestion

// #region goals-intake

// goalsIntake fires when goals are absent or stale (>30 days), or on an
// explicit manual trigger, which bypasses the daily-completed gate.
func (e *Engine) goalsIntake(in Input, d *Decision) {
	stale := !in.Goals.Exists || in.Now.Sub(in.Goals.UpdatedAt) > GoalsStaleAfter
	if !stale && !in.GoalsManualTrigger {
		return
	}
	for _, c := range in.Existing {
		if c.Type != TypeGoalsIntake {
			continue
		}
		if c.Status == StatusActive {
			return
		}
		if !in.GoalsManualTrigger {
			return // completed or dismissed today gates the automatic trigger
		}
		// Manual re-intake reopens the day's card: the (date, type, sub_id)
		// key admits only one goals card per day.
		d.Resurfaced = append(d.Resurfaced, c.ID)
		return
	}
	d.New = append(d.New, newCard(in.Date, TypeGoalsIntake, "", nil, in.Now))
}

// #endregion goals-intake

// #region welcome

// welcome fires exactly once, before any daily record exists.
func (e *Engine) welcome(in Input, d *Decision) {
	if in.HasPriorRecord || in.EverWelcomed {
		return
	}
	for _, c := range in.Existing {
		if c.Type == TypeWelcome {
			return
		}
	}
	d.New = append(d.New, newCard(in.Date, TypeWelcome, "", nil, in.Now))
}

// #endregion welcome

// #region selection

// selectActive unions kept, resurfaced, and new active cards, sorts by fixed
// priority (creation time breaks ties), and keeps the top two.
func selectActive(existing []Card, d Decision) []Card {
	resurfaced := map[string]bool{}
	for _, id := range d.Resurfaced {
		resurfaced[id] = true
	}

	var pool []Card
	for _, c := range existing {
		if c.Status == StatusActive || resurfaced[c.ID] {
			c.Status = StatusActive
			pool = append(pool, c)
		}
	}
	pool = append(pool, d.New...)

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Priority != pool[j].Priority {
			return pool[i].Priority > pool[j].Priority
		}
		return pool[i].CreatedAt.Before(pool[j].CreatedAt)
	})

	if len(pool) > MaxActive {
		pool = pool[:MaxActive]
	}
	return pool
}

// #endregion selection

// #region mint

func newCard(date string, t Type, subID string, payload json.RawMessage, now time.Time) Card {
	return Card{
		ID:            uuid.New().String(),
		Date:          date,
		Type:          t,
		SubID:         subID,
		Status:        StatusActive,
		Priority:      Priorities[t],
		DismissPolicy: policyFor(t),
		Payload:       payload,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
}

// MintInsight creates a workout-insight card from a completed workout-log
// card and its effort payload.
func MintInsight(logCard Card, insight string, now time.Time) Card {
	payload, _ := json.Marshal(map[string]string{
		"workout_id": logCard.SubID,
		"insight":    insight,
	})
	c := newCard(logCard.Date, TypeWorkoutInsight, logCard.SubID, payload, now)
	return c
}

// #endregion mint

// #region lifecycle

// Complete moves an active card to its terminal completed state.
func Complete(c *Card, payload json.RawMessage, now time.Time) error {
	if c.Status != StatusActive {
		return fmt.Errorf("card %s is %s, only active cards complete", c.ID, c.Status)
	}
	if payload != nil {
		c.Payload = payload
	}
	ts := now.UTC()
	c.Status = StatusCompleted
	c.CompletedAt = &ts
	c.UpdatedAt = ts
	return nil
}

// Dismiss moves an active card down; whether it can come back is the card's
// dismiss policy.
func Dismiss(c *Card, now time.Time) error {
	if c.Status != StatusActive {
		return fmt.Errorf("card %s is %s, only active cards dismiss", c.ID, c.Status)
	}
	ts := now.UTC()
	c.Status = StatusDismissed
	c.DismissedAt = &ts
	c.UpdatedAt = ts
	return nil
}

// Resurface reopens a dismissed or completed card. Which statuses may come
// back is the trigger's call; this is only the mechanism.
func Resurface(c *Card, now time.Time) error {
	if c.Status == StatusActive {
		return fmt.Errorf("card %s is already active", c.ID)
	}
	c.Status = StatusActive
	c.UpdatedAt = now.UTC()
	return nil
}

// #endregion lifecycle
