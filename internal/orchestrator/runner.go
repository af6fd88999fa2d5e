// Package orchestrator drives the daily pipeline: fetch raw data, score,
// classify, derive the directive, regenerate content when the directive
// shape moved, evaluate cards, persist. One logical writer per process.
package orchestrator

// #region imports
import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/alignment"
	"github.com/danielpatrickdp/operator-state/internal/axes"
	"github.com/danielpatrickdp/operator-state/internal/baseline"
	"github.com/danielpatrickdp/operator-state/internal/cards"
	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/generator"
	"github.com/danielpatrickdp/operator-state/internal/logging"
	"github.com/danielpatrickdp/operator-state/internal/record"
	"github.com/danielpatrickdp/operator-state/internal/store"
	"github.com/danielpatrickdp/operator-state/internal/telemetry"
	"github.com/danielpatrickdp/operator-state/internal/vitality"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #endregion

// #region runner

// StreakWindow is how far back the alignment fold looks.
const StreakWindow = 30

// Runner owns the per-date pipeline. Generator may be nil (generation
// disabled): content always comes from the fallback then.
type Runner struct {
	Store      *store.Store
	Provider   wearable.Provider
	Generator  generator.Generator
	Fallback   generator.Fallback
	Cards      *cards.Engine
	WindowDays int
	Now        func() time.Time

	mu sync.Mutex // single logical writer per date
}

// Opts qualifies one run.
type Opts struct {
	Trigger     string // logging.TriggerDailyRun | TriggerRefresh | TriggerBackfill
	Force       bool   // bypass the run-level cache
	GoalsManual bool   // explicit goals re-intake request
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// #endregion runner

// #region run

// Run executes the full pipeline for one date. Provider failures are
// terminal: nothing is persisted. Generator failures are not: the fallback
// content stands in and the run completes.
func (r *Runner) Run(ctx context.Context, date string, opts Opts) (*record.DailyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := r.now()
	if opts.Trigger == "" {
		opts.Trigger = logging.TriggerDailyRun
	}

	existing, err := r.Store.GetDailyRecord(date)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", date, err)
	}

	if !opts.Force && cacheValid(existing) {
		log.Printf("[RUN] %s cache hit, skipping", date)
		telemetry.RecordRun(opts.Trigger, "cache_hit")
		r.logDecision(date, opts.Trigger, "cache_hit", "vitality, directive and content all present")
		return existing, nil
	}

	b, err := r.baselines(ctx)
	if err != nil {
		telemetry.RecordRun(opts.Trigger, "failed")
		return nil, err
	}

	raw, err := r.fetchRaw(ctx, date, existing)
	if err != nil {
		telemetry.RecordRun(opts.Trigger, "failed")
		return nil, err
	}

	rec := r.derive(ctx, date, raw, existing, b)

	if err := r.regenerate(ctx, rec, existing); err != nil {
		telemetry.RecordRun(opts.Trigger, "failed")
		return nil, err
	}

	if err := r.evaluateCards(ctx, rec, opts); err != nil {
		telemetry.RecordRun(opts.Trigger, "failed")
		return nil, err
	}

	if err := r.Store.SaveDailyRecord(rec); err != nil {
		telemetry.RecordRun(opts.Trigger, "failed")
		return nil, fmt.Errorf("run %s: %w", date, err)
	}

	telemetry.RecordRun(opts.Trigger, "completed")
	telemetry.RecordRunDuration(r.now().Sub(started).Seconds())
	r.logDecision(date, opts.Trigger, "recompute",
		fmt.Sprintf("state=%s archetype=%s", rec.Stats.State, rec.Stats.Archetype))
	log.Printf("[RUN] %s complete: state=%s vitality=%.0f", date, rec.Stats.State, vitalityOf(rec))
	return rec, nil
}

// cacheValid: a run already produced a score, a directive and content.
func cacheValid(rec *record.DailyRecord) bool {
	return rec != nil &&
		rec.Stats.Vitality != nil && rec.Stats.Vitality.Vitality > 0 &&
		rec.Directive != nil && rec.Directive.Content != nil
}

func vitalityOf(rec *record.DailyRecord) float64 {
	if rec.Stats.Vitality == nil {
		return 0
	}
	return rec.Stats.Vitality.Vitality
}

// #endregion run

// #region baselines

// baselines loads the stored baselines, recomputing from the provider's
// trailing window when absent or stale.
func (r *Runner) baselines(ctx context.Context) (baseline.Baselines, error) {
	stored, err := r.Store.GetBaselines()
	if err != nil {
		return baseline.Baselines{}, fmt.Errorf("load baselines: %w", err)
	}
	if stored != nil && !stored.Stale() {
		return *stored, nil
	}

	days := r.WindowDays
	if days <= 0 {
		days = 30
	}
	history, err := r.Provider.Historical(ctx, days)
	if err != nil {
		return baseline.Baselines{}, fmt.Errorf("historical fetch for baselines: %w", err)
	}
	b := baseline.Compute(history, r.now())
	if err := r.Store.SaveBaselines(b); err != nil {
		return baseline.Baselines{}, fmt.Errorf("save baselines: %w", err)
	}
	log.Printf("[RUN] baselines recomputed over %d days (hrv n=%d)", days, b.HRV.SampleCount)
	return b, nil
}

// #endregion baselines

// #region fetch

// fetchRaw pulls today's data and merges it over the existing record.
// Biometric and sleep fields are immutable once set; activity is refreshed
// every run; logged flags on workouts survive the refresh.
func (r *Runner) fetchRaw(ctx context.Context, date string, existing *record.DailyRecord) (record.Raw, error) {
	bio, err := r.Provider.Biometrics(ctx, date)
	if err != nil {
		return record.Raw{}, fmt.Errorf("biometrics fetch %s: %w", date, err)
	}
	act, err := r.Provider.Activity(ctx, date)
	if err != nil {
		return record.Raw{}, fmt.Errorf("activity fetch %s: %w", date, err)
	}
	sleep, err := r.Provider.Sleep(ctx, date)
	if err != nil {
		return record.Raw{}, fmt.Errorf("sleep fetch %s: %w", date, err)
	}

	raw := record.Raw{
		HRV:              bio.HRV,
		RestingHeartRate: bio.RestingHeartRate,
		RespiratoryRate:  bio.RespiratoryRate,
		VO2Max:           bio.VO2Max,
		OxygenSaturation: bio.OxygenSaturation,
		BloodGlucose:     bio.BloodGlucose,
		Steps:            act.Steps,
		ActiveCalories:   act.ActiveCalories,
		RestingCalories:  act.RestingCalories,
		ExerciseMinutes:  act.ExerciseMinutes,
		MindfulMinutes:   act.MindfulMinutes,
		SleepSeconds:     sleep.DurationSeconds,
		SleepSource:      sleep.Source,
		Workouts:         act.Workouts,
	}

	if lp, ok := r.Provider.(interface {
		LocationOf(ctx context.Context, date string) (string, error)
	}); ok {
		if loc, err := lp.LocationOf(ctx, date); err == nil {
			raw.Location = loc
		}
	}

	if existing != nil {
		if existing.Raw.HRV != 0 {
			raw.HRV = existing.Raw.HRV
		}
		if existing.Raw.RestingHeartRate != 0 {
			raw.RestingHeartRate = existing.Raw.RestingHeartRate
		}
		if existing.Raw.RespiratoryRate != 0 {
			raw.RespiratoryRate = existing.Raw.RespiratoryRate
		}
		if existing.Raw.VO2Max != 0 {
			raw.VO2Max = existing.Raw.VO2Max
		}
		if existing.Raw.SleepSeconds != 0 {
			raw.SleepSeconds = existing.Raw.SleepSeconds
			raw.SleepSource = existing.Raw.SleepSource
		}
		logged := map[string]bool{}
		for _, w := range existing.Raw.Workouts {
			if w.Logged {
				logged[w.ID] = true
			}
		}
		for i := range raw.Workouts {
			if logged[raw.Workouts[i].ID] {
				raw.Workouts[i].Logged = true
			}
		}
	}
	return raw, nil
}

// #endregion fetch

// #region derive

// derive computes the full stats block and directive for a raw day.
func (r *Runner) derive(ctx context.Context, date string, raw record.Raw, existing *record.DailyRecord, b baseline.Baselines) *record.DailyRecord {
	sleepMean := 0.0
	if raw.SleepSeconds == 0 {
		if h, err := r.Provider.Historical(ctx, 7); err == nil {
			sleepMean = baseline.Recent7Mean(h)
		}
	}

	vit := vitality.Score(vitality.Inputs{
		HRV:              raw.HRV,
		RestingHeartRate: raw.RestingHeartRate,
		SleepSeconds:     raw.SleepSeconds,
		SleepSource:      raw.SleepSource,
		Sleep7DayMean:    sleepMean,
	}, b)

	// Sleep substitutions feed back into the raw record so downstream
	// consumers (cards, axes) see the same value the scorer used.
	if raw.SleepSeconds == 0 && vit.SleepUsed != wearable.SleepNone {
		switch vit.SleepUsed {
		case wearable.SleepBaseline:
			raw.SleepSeconds = sleepMean
		case wearable.SleepDefault:
			raw.SleepSeconds = vitality.DefaultSleepSeconds
		}
		raw.SleepSource = vit.SleepUsed
	}

	prev := r.previousAxes(date)
	axesResult := axes.Calculate(axes.Inputs{
		Steps:          raw.Steps,
		ActiveCalories: raw.ActiveCalories,
		MindfulMinutes: raw.MindfulMinutes,
		HRV:            raw.HRV,
		RestingHR:      raw.RestingHeartRate,
		SleepSeconds:   raw.SleepSeconds,
		Workouts:       raw.Workouts,
	}, b, prev)

	state := engine.ClassifyState(axesResult.Axes)
	archetype := engine.ClassifyArchetype(axesResult.Axes, engine.Context{
		SleepSeconds:    raw.SleepSeconds,
		Steps:           raw.Steps,
		RehabWorkout:    hasRehabWorkout(raw.Workouts),
		LocationChanged: r.locationChanged(date, raw.Location),
	})
	directive := engine.DeriveDirective(state, archetype)

	verdict := alignment.Judge(directive, &axesResult.Axes)
	streak := r.streakThrough(date, verdict)

	rec := &record.DailyRecord{Date: date, Raw: raw}
	if existing != nil {
		rec.Session = existing.Session
		rec.CreatedAt = existing.CreatedAt
		if existing.Directive != nil {
			rec.Directive = &record.Directive{Directive: directive, Content: existing.Directive.Content}
		}
	}
	if rec.Directive == nil {
		rec.Directive = &record.Directive{Directive: directive}
	} else {
		rec.Directive.Directive = directive
	}
	rec.Stats = record.Stats{
		Vitality:  &vit,
		Axes:      &axesResult,
		State:     state,
		Archetype: archetype,
		Alignment: verdict,
		Streak:    streak,
		Rank:      alignment.RankFor(streak),
	}
	return rec
}

func hasRehabWorkout(ws []wearable.Workout) bool {
	for _, w := range ws {
		if w.RehabTag {
			return true
		}
	}
	return false
}

// previousAxes returns yesterday's axes for trend computation, nil when
// there is no usable yesterday.
func (r *Runner) previousAxes(date string) *axes.Axes {
	recs, err := r.Store.RecentRecords(date, 1)
	if err != nil || len(recs) == 0 || recs[0].Stats.Axes == nil {
		return nil
	}
	if recs[0].Date != previousDate(date) {
		return nil // a gap breaks the trend chain
	}
	a := recs[0].Stats.Axes.Axes
	return &a
}

func (r *Runner) locationChanged(date, location string) bool {
	if location == "" {
		return false
	}
	recs, err := r.Store.RecentRecords(date, 1)
	if err != nil || len(recs) == 0 || recs[0].Raw.Location == "" {
		return false
	}
	return recs[0].Raw.Location != location
}

// streakThrough folds the alignment streak ending at today's verdict.
func (r *Runner) streakThrough(date string, today alignment.Verdict) int {
	verdicts := []alignment.Verdict{today}
	recs, err := r.Store.RecentRecords(date, StreakWindow)
	if err == nil {
		for _, rec := range recs {
			verdicts = append(verdicts, rec.Stats.Alignment)
		}
	}
	return alignment.FoldStreak(verdicts)
}

func previousDate(date string) string {
	t, err := time.Parse(wearable.DateLayout, date)
	if err != nil {
		return ""
	}
	return wearable.DateOf(t.AddDate(0, 0, -1))
}

// #endregion derive

// #region provenance

func (r *Runner) logDecision(date, trigger, decision, reason string) {
	err := logging.LogDecision(r.Store.DB(), logging.ProvenanceEntry{
		Date:        date,
		TriggerType: trigger,
		Decision:    decision,
		Reason:      reason,
		CreatedAt:   r.now(),
	})
	if err != nil {
		log.Printf("[RUN] provenance write failed: %v", err)
	}
}

// #endregion provenance
