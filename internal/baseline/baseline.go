package baseline

import (
	"math"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #region metric

// Metric is a rolling aggregate for one measurement over the trailing window.
type Metric struct {
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	SampleCount int     `json:"sample_count"`
	Coverage    float64 `json:"coverage"` // fraction of window days with data
}

// Usable reports whether the metric can anchor a z-score.
func (m Metric) Usable() bool {
	return m.SampleCount >= 2 && m.StdDev > 0
}

// #endregion metric

// #region baselines

// Baselines is the single process-wide aggregate record. It is recomputed
// wholesale from history, never incrementally.
type Baselines struct {
	HRV            Metric    `json:"hrv"`
	RestingHR      Metric    `json:"resting_hr"`
	Sleep          Metric    `json:"sleep"` // seconds
	Steps          Metric    `json:"steps"`
	ActiveEnergy   Metric    `json:"active_energy"`
	VO2Max         Metric    `json:"vo2_max"`
	WorkoutMinutes Metric    `json:"workout_minutes"`
	WindowDays     int       `json:"window_days"`
	ComputedAt     time.Time `json:"computed_at"`
}

// Stale reports whether the record predates the fields added over time and
// needs a wholesale recompute: missing workout-minutes, VO2max, or an HRV
// sample count of zero.
func (b Baselines) Stale() bool {
	if b.WorkoutMinutes.SampleCount == 0 && b.WorkoutMinutes.Mean == 0 {
		return true
	}
	if b.VO2Max.SampleCount == 0 && b.VO2Max.Mean == 0 {
		return true
	}
	return b.HRV.SampleCount == 0
}

// #endregion baselines

// #region defaults

// Defaults returns the fixed fallback aggregates used by the axes calculator
// when no baselines exist yet.
func Defaults() Baselines {
	return Baselines{
		HRV:            Metric{Mean: 50, StdDev: 10},
		RestingHR:      Metric{Mean: 60, StdDev: 5},
		Sleep:          Metric{Mean: 7 * 3600, StdDev: 3600},
		Steps:          Metric{Mean: 8000, StdDev: 2500},
		ActiveEnergy:   Metric{Mean: 500, StdDev: 150},
		VO2Max:         Metric{Mean: 40, StdDev: 4},
		WorkoutMinutes: Metric{Mean: 30, StdDev: 20},
		WindowDays:     0,
	}
}

// #endregion defaults

// #region compute

// Compute builds Baselines wholesale from a trailing history window.
// Zero readings are treated as absent and excluded from each aggregate.
func Compute(h wearable.History, now time.Time) Baselines {
	window := len(h.Days)

	var hrv, rhr, sleep, steps, energy, vo2, workoutMin []float64
	for _, d := range h.Days {
		appendIfPresent(&hrv, d.Biometrics.HRV)
		appendIfPresent(&rhr, d.Biometrics.RestingHeartRate)
		appendIfPresent(&vo2, d.Biometrics.VO2Max)
		appendIfPresent(&steps, d.Activity.Steps)
		appendIfPresent(&energy, d.Activity.ActiveCalories)
		if d.Sleep.DurationSeconds > 0 && d.Sleep.Source != wearable.SleepNone {
			sleep = append(sleep, d.Sleep.DurationSeconds)
		}
		var minutes float64
		for _, w := range d.Activity.Workouts {
			minutes += w.DurationMinutes
		}
		appendIfPresent(&workoutMin, minutes)
	}

	return Baselines{
		HRV:            aggregate(hrv, window),
		RestingHR:      aggregate(rhr, window),
		Sleep:          aggregate(sleep, window),
		Steps:          aggregate(steps, window),
		ActiveEnergy:   aggregate(energy, window),
		VO2Max:         aggregate(vo2, window),
		WorkoutMinutes: aggregate(workoutMin, window),
		WindowDays:     window,
		ComputedAt:     now.UTC(),
	}
}

// Recent7Mean returns the mean of the last seven present sleep readings,
// used by the vitality sleep fallback chain. Zero when none exist.
func Recent7Mean(h wearable.History) float64 {
	var vals []float64
	for i := len(h.Days) - 1; i >= 0 && len(vals) < 7; i-- {
		d := h.Days[i]
		if d.Sleep.DurationSeconds > 0 && d.Sleep.Source != wearable.SleepNone {
			vals = append(vals, d.Sleep.DurationSeconds)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// #endregion compute

// #region helpers

func appendIfPresent(dst *[]float64, v float64) {
	if v > 0 {
		*dst = append(*dst, v)
	}
}

// aggregate computes mean and population stddev over the present samples.
func aggregate(vals []float64, window int) Metric {
	n := len(vals)
	if n == 0 {
		return Metric{}
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(n))

	coverage := 0.0
	if window > 0 {
		coverage = float64(n) / float64(window)
	}
	return Metric{Mean: mean, StdDev: std, SampleCount: n, Coverage: coverage}
}

// #endregion helpers
