package axes

import "github.com/danielpatrickdp/operator-state/internal/wearable"

// #region axes

// Axes is the five-dimension 0-100 load vector.
type Axes struct {
	Metabolic  float64 `json:"metabolic"`
	Mechanical float64 `json:"mechanical"`
	Neural     float64 `json:"neural"`
	Recovery   float64 `json:"recovery"`
	Regulation float64 `json:"regulation"`
}

// MaxLoad returns the highest of the three load dimensions.
func (a Axes) MaxLoad() float64 {
	m := a.Metabolic
	if a.Mechanical > m {
		m = a.Mechanical
	}
	if a.Neural > m {
		m = a.Neural
	}
	return m
}

// #endregion axes

// #region trend

// Trend is a day-over-day verdict for recovery and load.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// #endregion trend

// #region result

// Result bundles the computed axes with their trend verdicts.
type Result struct {
	Axes          Axes  `json:"axes"`
	RecoveryTrend Trend `json:"recovery_trend"`
	LoadTrend     Trend `json:"load_trend"`
}

// #endregion result

// #region inputs

// Inputs is today's record slice the calculator needs.
type Inputs struct {
	Steps          float64
	ActiveCalories float64
	MindfulMinutes float64
	HRV            float64
	RestingHR      float64
	SleepSeconds   float64
	Workouts       []wearable.Workout
}

// #endregion inputs

// #region weights

// familyWeights is the per-minute load contribution of one workout family.
type familyWeights struct {
	mechanical float64
	neural     float64
	regulation float64
}

// weightTable is a design constant: each family maps to a fixed per-axis
// weight vector.
var weightTable = map[wearable.WorkoutFamily]familyWeights{
	wearable.FamilyEndurance:    {mechanical: 8, neural: 5, regulation: 2},
	wearable.FamilyStrength:     {mechanical: 10, neural: 6, regulation: 1},
	wearable.FamilyHIIT:         {mechanical: 9, neural: 9, regulation: 1},
	wearable.FamilyMindBody:     {mechanical: 2, neural: 1, regulation: 8},
	wearable.FamilyUnclassified: {mechanical: 5, neural: 4, regulation: 2},
}

// #endregion weights
