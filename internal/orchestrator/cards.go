package orchestrator

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/operator-state/internal/alignment"
	"github.com/danielpatrickdp/operator-state/internal/cards"
	"github.com/danielpatrickdp/operator-state/internal/logging"
	"github.com/danielpatrickdp/operator-state/internal/record"
	"github.com/danielpatrickdp/operator-state/internal/store"
	"github.com/danielpatrickdp/operator-state/internal/telemetry"
)

// #endregion

// #region evaluate

// evaluateCards runs the card triggers for the (not yet persisted) record
// and persists the resulting mints and resurfacings.
func (r *Runner) evaluateCards(ctx context.Context, rec *record.DailyRecord, opts Opts) error {
	if r.Cards == nil {
		return nil
	}

	existing, err := r.Store.CardsByDate(rec.Date)
	if err != nil {
		return fmt.Errorf("cards for %s: %w", rec.Date, err)
	}
	hasPrior, err := r.Store.HasAnyRecord()
	if err != nil {
		return fmt.Errorf("prior record check: %w", err)
	}
	welcomed, err := r.Store.HasCardOfType(cards.TypeWelcome)
	if err != nil {
		return fmt.Errorf("welcome check: %w", err)
	}

	in := cards.Input{
		Date:                rec.Date,
		Now:                 r.now(),
		Record:              rec,
		State:               rec.Stats.State,
		Directive:           &rec.Directive.Directive,
		GoalsManualTrigger:  opts.GoalsManual,
		LoggedWorkoutsLast7: r.loggedWorkoutsLast7(rec),
		HasPriorRecord:      hasPrior,
		EverWelcomed:        welcomed,
		Existing:            existing,
	}
	if g, err := r.Store.GetGoals(); err == nil && g != nil {
		in.Goals = cards.GoalsInfo{Exists: true, UpdatedAt: g.UpdatedAt}
	}

	decision := r.Cards.Evaluate(ctx, in)

	for _, c := range decision.New {
		if err := r.Store.SaveCard(c); err != nil {
			return fmt.Errorf("save card: %w", err)
		}
		telemetry.RecordCardIssued(string(c.Type))
	}
	for _, id := range decision.Resurfaced {
		c, err := r.Store.GetCard(id)
		if err != nil || c == nil {
			continue
		}
		if err := cards.Resurface(c, r.now()); err != nil {
			continue
		}
		if err := r.Store.SaveCard(*c); err != nil {
			return fmt.Errorf("resurface card: %w", err)
		}
	}
	return nil
}

// loggedWorkoutsLast7 counts confirmed workouts over the trailing week,
// including today's.
func (r *Runner) loggedWorkoutsLast7(rec *record.DailyRecord) int {
	n := 0
	for _, w := range rec.Raw.Workouts {
		if w.Logged {
			n++
		}
	}
	recs, err := r.Store.RecentRecords(rec.Date, 7)
	if err != nil {
		return n
	}
	for _, prev := range recs {
		for _, w := range prev.Raw.Workouts {
			if w.Logged {
				n++
			}
		}
	}
	return n
}

// #endregion evaluate

// #region card-ops

// ActiveCards returns the capped active selection for a date, highest
// priority first.
func (r *Runner) ActiveCards(date string) ([]cards.Card, error) {
	all, err := r.Store.CardsByDate(date)
	if err != nil {
		return nil, err
	}
	var active []cards.Card
	for _, c := range all {
		if c.Status == cards.StatusActive {
			active = append(active, c)
		}
	}
	return active, nil
}

// CompleteCard completes an active card. Completing a workout-log card with
// an effort payload marks the workout logged and mints an insight card.
func (r *Runner) CompleteCard(ctx context.Context, id string, payload json.RawMessage) (*cards.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.Store.GetCard(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("card %s: not found", id)
	}
	if err := cards.Complete(c, payload, r.now()); err != nil {
		return nil, err
	}
	if err := r.Store.SaveCard(*c); err != nil {
		return nil, err
	}
	r.logDecision(c.Date, logging.TriggerCardOp, "card_completed", string(c.Type))

	if c.Type == cards.TypeWorkoutLog {
		if err := r.onWorkoutLogged(ctx, c, payload); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DismissCard dismisses an active card; its dismiss policy decides whether
// anything brings it back.
func (r *Runner) DismissCard(id string) (*cards.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.Store.GetCard(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("card %s: not found", id)
	}
	if err := cards.Dismiss(c, r.now()); err != nil {
		return nil, err
	}
	if err := r.Store.SaveCard(*c); err != nil {
		return nil, err
	}
	r.logDecision(c.Date, logging.TriggerCardOp, "card_dismissed", string(c.Type))
	return c, nil
}

// effortPayload is the completion payload of a workout-log card.
type effortPayload struct {
	PerceivedEffort int    `json:"perceived_effort"`
	Notes           string `json:"notes"`
}

// onWorkoutLogged flips the workout's logged flag on the daily record and
// mints the follow-up insight card.
func (r *Runner) onWorkoutLogged(ctx context.Context, c *cards.Card, payload json.RawMessage) error {
	rec, err := r.Store.GetDailyRecord(c.Date)
	if err != nil || rec == nil {
		return err
	}
	for i := range rec.Raw.Workouts {
		if rec.Raw.Workouts[i].ID == c.SubID {
			rec.Raw.Workouts[i].Logged = true
		}
	}

	var effort effortPayload
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &effort)
	}
	if rec.Session == nil && effort.PerceivedEffort > 0 {
		rec.Session = &record.Session{
			WorkoutID:       c.SubID,
			PerceivedEffort: effort.PerceivedEffort,
			Notes:           effort.Notes,
			LoggedAt:        r.now(),
		}
	}
	if err := r.Store.SaveDailyRecord(rec); err != nil {
		return err
	}

	insight := r.workoutInsight(rec, effort)
	ic := cards.MintInsight(*c, insight, r.now())
	if err := r.Store.SaveCard(ic); err != nil {
		return err
	}
	telemetry.RecordCardIssued(string(ic.Type))
	return nil
}

// workoutInsight builds the one-line insight for a just-logged workout.
func (r *Runner) workoutInsight(rec *record.DailyRecord, effort effortPayload) string {
	verdict := rec.Stats.Alignment
	switch {
	case effort.PerceivedEffort >= 8 && rec.Stats.Axes != nil && rec.Stats.Axes.Axes.Recovery < 40:
		return "That was a hard session on low recovery; watch tomorrow's numbers and keep the next one easy."
	case verdict == alignment.VerdictAligned:
		return "Session matched today's directive; this is the kind of day that builds the streak."
	case verdict == alignment.VerdictOvershot:
		return "You went harder than today called for; expect elevated load gauges tomorrow."
	case verdict == alignment.VerdictUndershot:
		return "Lighter than prescribed; fine occasionally, but the stimulus only works if it lands."
	default:
		return "Logged. Effort noted against today's load picture."
	}
}

// #endregion card-ops

// #region goals

// SetGoals persists the operator's goals and writes the provenance row.
func (r *Runner) SetGoals(g store.Goals) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Store.SaveGoals(g); err != nil {
		return err
	}
	r.logDecision("", logging.TriggerGoalsEdit, "goals_saved", "")
	return nil
}

// #endregion goals
