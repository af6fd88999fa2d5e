package axes

import (
	"github.com/danielpatrickdp/operator-state/internal/baseline"
)

// Design constants for the load model.
const (
	gaugeSensitivity    = 2.5
	mechanicalCeiling   = 3000 // weight-minutes saturating mechanical load
	neuralCeiling       = 2000 // weight-minutes saturating neural load
	regulationCeiling   = 2000 // weight-minutes saturating regulation load
	hrvSuppressionRatio = 0.85 // today's HRV below this fraction of baseline
	hrvSuppressionBoost = 1.3
	mindfulTargetMin    = 30
	mindfulCeilingScore = 60 // hitting the mindful target alone contributes this much

	recoveryTrendBand = 5
	loadTrendBand     = 10
)

// #region calculate

// Calculate computes the five load axes from today's record and the stored
// baselines (callers substitute baseline.Defaults() when none exist), plus
// day-over-day trends against yesterday's axes when available.
func Calculate(in Inputs, b baseline.Baselines, prev *Axes) Result {
	if b.ActiveEnergy.Mean <= 0 {
		b.ActiveEnergy = baseline.Defaults().ActiveEnergy
	}
	if b.Steps.Mean <= 0 {
		b.Steps = baseline.Defaults().Steps
	}
	if b.Sleep.Mean <= 0 {
		b.Sleep = baseline.Defaults().Sleep
	}

	a := Axes{
		Metabolic:  gauge(in.ActiveCalories, b.ActiveEnergy.Mean, gaugeSensitivity),
		Mechanical: mechanical(in, b),
		Neural:     neural(in, b),
		Recovery:   recovery(in, b),
		Regulation: regulation(in),
	}

	return Result{
		Axes:          a,
		RecoveryTrend: recoveryTrend(a, prev),
		LoadTrend:     loadTrend(a, prev),
	}
}

// #endregion calculate

// #region gauge

// gauge scales a reading against twice its baseline, then amplifies by the
// sensitivity and clamps back to the axis band.
func gauge(value, baselineMean, sensitivity float64) float64 {
	if baselineMean <= 0 {
		return 0
	}
	raw := clamp(value/(baselineMean*2)*100, 0, 100)
	return clamp(raw*sensitivity, 0, 100)
}

// #endregion gauge

// #region mechanical

func mechanical(in Inputs, b baseline.Baselines) float64 {
	stepsGauge := gauge(in.Steps, b.Steps.Mean, gaugeSensitivity)

	var weighted float64
	for _, w := range in.Workouts {
		weighted += weightTable[w.Family()].mechanical * w.DurationMinutes
	}
	workoutLoad := clamp(weighted/mechanicalCeiling, 0, 1) * 100

	return clamp(0.4*stepsGauge+0.6*workoutLoad, 0, 100)
}

// #endregion mechanical

// #region neural

func neural(in Inputs, b baseline.Baselines) float64 {
	var weighted float64
	for _, w := range in.Workouts {
		weighted += weightTable[w.Family()].neural * w.DurationMinutes
	}
	load := clamp(weighted/neuralCeiling, 0, 1) * 100

	// A suppressed HRV amplifies perceived neural load.
	if in.HRV > 0 && b.HRV.Mean > 0 && in.HRV < hrvSuppressionRatio*b.HRV.Mean {
		load *= hrvSuppressionBoost
	}
	return clamp(load, 0, 100)
}

// #endregion neural

// #region recovery

func recovery(in Inputs, b baseline.Baselines) float64 {
	sleepScore := 50.0
	if in.SleepSeconds > 0 {
		sleepScore = clamp(in.SleepSeconds/b.Sleep.Mean*100, 0, 100)
	}

	rhrScore := rhrStep(in.RestingHR, b.RestingHR.Mean)

	hrvRatio := 1.0
	if in.HRV > 0 && b.HRV.Mean > 0 {
		hrvRatio = clamp(in.HRV/b.HRV.Mean, 0, 1.5)
	}

	return clamp(0.5*sleepScore+0.3*rhrScore+0.2*hrvRatio*100, 0, 100)
}

// rhrStep penalizes an elevated resting heart rate in two bands. Missing
// readings score the neutral middle band.
func rhrStep(today, baselineMean float64) float64 {
	if today <= 0 || baselineMean <= 0 {
		return 60
	}
	switch {
	case today > baselineMean*1.10:
		return 30
	case today > baselineMean*1.05:
		return 60
	default:
		return 100
	}
}

// #endregion recovery

// #region regulation

func regulation(in Inputs) float64 {
	mindful := clamp(in.MindfulMinutes/mindfulTargetMin, 0, 1) * mindfulCeilingScore

	var weighted float64
	for _, w := range in.Workouts {
		weighted += weightTable[w.Family()].regulation * w.DurationMinutes
	}
	workoutLoad := clamp(weighted/regulationCeiling, 0, 1) * 100

	return clamp(mindful+workoutLoad, 0, 100)
}

// #endregion regulation

// #region trends

func recoveryTrend(a Axes, prev *Axes) Trend {
	if prev == nil {
		return TrendStable
	}
	delta := a.Recovery - prev.Recovery
	switch {
	case delta > recoveryTrendBand:
		return TrendRising
	case delta < -recoveryTrendBand:
		return TrendFalling
	default:
		return TrendStable
	}
}

// loadTrend looks at the largest swing across the three load dimensions.
func loadTrend(a Axes, prev *Axes) Trend {
	if prev == nil {
		return TrendStable
	}
	deltas := []float64{
		a.Metabolic - prev.Metabolic,
		a.Mechanical - prev.Mechanical,
		a.Neural - prev.Neural,
	}
	dominant := 0.0
	for _, d := range deltas {
		if abs(d) > abs(dominant) {
			dominant = d
		}
	}
	switch {
	case dominant > loadTrendBand:
		return TrendRising
	case dominant < -loadTrendBand:
		return TrendFalling
	default:
		return TrendStable
	}
}

// #endregion trends

// #region helpers

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// #endregion helpers
