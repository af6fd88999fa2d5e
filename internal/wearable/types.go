package wearable

import "time"

// #region date

// DateLayout is the canonical civil-date format used as a record key.
const DateLayout = "2006-01-02"

// DateOf truncates a timestamp to its civil date string.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// #endregion date

// #region biometrics

// Biometrics holds one day's biometric readings. Zero means absent;
// consumers never assume presence.
type Biometrics struct {
	HRV              float64 `json:"hrv"` // SDNN, milliseconds
	RestingHeartRate float64 `json:"resting_heart_rate"`
	RespiratoryRate  float64 `json:"respiratory_rate"`
	VO2Max           float64 `json:"vo2_max"`
	OxygenSaturation float64 `json:"oxygen_saturation"`
	BloodGlucose     float64 `json:"blood_glucose"`
}

// #endregion biometrics

// #region workout

// WorkoutFamily buckets workout types into fixed load-weight families.
type WorkoutFamily string

const (
	FamilyEndurance    WorkoutFamily = "endurance"
	FamilyStrength     WorkoutFamily = "strength"
	FamilyHIIT         WorkoutFamily = "hiit"
	FamilyMindBody     WorkoutFamily = "mind_body"
	FamilyUnclassified WorkoutFamily = "unclassified"
)

// Workout is a single recorded session from the provider.
type Workout struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"` // provider type string, e.g. "running"
	StartedAt       time.Time `json:"started_at"`
	DurationMinutes float64   `json:"duration_minutes"`
	RehabTag        bool      `json:"rehab_tag"` // operator marked this as rehab work
	Logged          bool      `json:"logged"`    // operator confirmed it in the log
}

// Family maps a provider workout type string to its weight family.
func (w Workout) Family() WorkoutFamily {
	switch w.Type {
	case "running", "cycling", "swimming", "rowing", "hiking", "walking":
		return FamilyEndurance
	case "strength_training", "functional_strength", "core_training":
		return FamilyStrength
	case "hiit", "interval_training", "crossfit", "sprint":
		return FamilyHIIT
	case "yoga", "pilates", "breathwork", "mobility", "stretching", "tai_chi":
		return FamilyMindBody
	default:
		return FamilyUnclassified
	}
}

// #endregion workout

// #region activity

// Activity holds one day's movement totals.
type Activity struct {
	Steps           float64   `json:"steps"`
	ActiveCalories  float64   `json:"active_calories"`
	RestingCalories float64   `json:"resting_calories"`
	ExerciseMinutes float64   `json:"exercise_minutes"`
	MindfulMinutes  float64   `json:"mindful_minutes"`
	Workouts        []Workout `json:"workouts"`
}

// #endregion activity

// #region sleep

// SleepSource tags how a sleep duration was obtained.
type SleepSource string

const (
	SleepMeasured SleepSource = "measured"  // direct device measurement
	SleepDerived  SleepSource = "derived"   // inferred (phone motion, manual entry)
	SleepBaseline SleepSource = "baseline"  // substituted from the 7-day baseline
	SleepDefault  SleepSource = "default"   // fixed 6-hour default
	SleepNone     SleepSource = "none"      // nothing available
)

// SleepData is one day's sleep duration plus its source tag.
type SleepData struct {
	DurationSeconds float64     `json:"duration_seconds"`
	Source          SleepSource `json:"source"`
}

// #endregion sleep

// #region day

// Day bundles everything the provider knows about one date.
type Day struct {
	Date       string     `json:"date"`
	Biometrics Biometrics `json:"biometrics"`
	Activity   Activity   `json:"activity"`
	Sleep      SleepData  `json:"sleep"`
	Location   string     `json:"location"` // coarse location label, may be empty
}

// History is a trailing window of days, oldest first.
type History struct {
	Days []Day `json:"days"`
}

// #endregion day
