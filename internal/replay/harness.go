// Package replay re-runs the pure pipeline over recorded days and compares
// the outcomes against a reference: a regression harness for the scorer,
// the axes, and the classifier. Entirely in-memory, no store, no network.
package replay

import (
	"time"

	"github.com/danielpatrickdp/operator-state/internal/axes"
	"github.com/danielpatrickdp/operator-state/internal/baseline"
	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/vitality"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #region types

// Result captures the replayed outcome for one day.
type Result struct {
	Date      string
	Vitality  float64
	State     engine.State
	Archetype engine.Archetype
	Category  engine.Category
	Stimulus  engine.Stimulus
}

// Summary aggregates a replay run.
type Summary struct {
	TotalDays int
	Available int // days with a usable vitality score
	ByState   map[engine.State]int
}

// #endregion types

// #region replay

// Replay runs the pure pipeline over days in order, threading the previous
// day's axes for trends. Baselines are computed once from history, exactly
// like a fresh daily run would.
func Replay(history wearable.History, days []wearable.Day, now time.Time) []Result {
	b := baseline.Compute(history, now)
	sleepMean := baseline.Recent7Mean(history)

	results := make([]Result, 0, len(days))
	var prev *axes.Axes

	for _, day := range days {
		vit := vitality.Score(vitality.Inputs{
			HRV:              day.Biometrics.HRV,
			RestingHeartRate: day.Biometrics.RestingHeartRate,
			SleepSeconds:     day.Sleep.DurationSeconds,
			SleepSource:      day.Sleep.Source,
			Sleep7DayMean:    sleepMean,
		}, b)

		sleepSeconds := day.Sleep.DurationSeconds
		if sleepSeconds == 0 {
			switch vit.SleepUsed {
			case wearable.SleepBaseline:
				sleepSeconds = sleepMean
			case wearable.SleepDefault:
				sleepSeconds = vitality.DefaultSleepSeconds
			}
		}

		axesResult := axes.Calculate(axes.Inputs{
			Steps:          day.Activity.Steps,
			ActiveCalories: day.Activity.ActiveCalories,
			MindfulMinutes: day.Activity.MindfulMinutes,
			HRV:            day.Biometrics.HRV,
			RestingHR:      day.Biometrics.RestingHeartRate,
			SleepSeconds:   sleepSeconds,
			Workouts:       day.Activity.Workouts,
		}, b, prev)

		state := engine.ClassifyState(axesResult.Axes)
		archetype := engine.ClassifyArchetype(axesResult.Axes, engine.Context{
			SleepSeconds: sleepSeconds,
			Steps:        day.Activity.Steps,
			RehabWorkout: hasRehab(day.Activity.Workouts),
		})
		directive := engine.DeriveDirective(state, archetype)

		results = append(results, Result{
			Date:      day.Date,
			Vitality:  vit.Vitality,
			State:     state,
			Archetype: archetype,
			Category:  directive.Category,
			Stimulus:  directive.Stimulus,
		})

		a := axesResult.Axes
		prev = &a
	}
	return results
}

func hasRehab(ws []wearable.Workout) bool {
	for _, w := range ws {
		if w.RehabTag {
			return true
		}
	}
	return false
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{TotalDays: len(results), ByState: map[engine.State]int{}}
	for _, r := range results {
		if r.Vitality > 0 {
			s.Available++
		}
		s.ByState[r.State]++
	}
	return s
}

// #endregion replay
