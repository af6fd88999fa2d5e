// Package record defines the persisted per-date operator record. One record
// per date; raw fields are written only from provider fetches, derived fields
// are overwritten by later same-day runs.
package record

import (
	"time"

	"github.com/danielpatrickdp/operator-state/internal/alignment"
	"github.com/danielpatrickdp/operator-state/internal/axes"
	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/vitality"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #region raw

// Raw is the day's measurements as fetched. Biometric and sleep fields are
// immutable once set; activity fields accumulate and are refreshed each run.
type Raw struct {
	HRV              float64              `json:"hrv"`
	RestingHeartRate float64              `json:"resting_heart_rate"`
	RespiratoryRate  float64              `json:"respiratory_rate"`
	VO2Max           float64              `json:"vo2_max"`
	OxygenSaturation float64              `json:"oxygen_saturation"`
	BloodGlucose     float64              `json:"blood_glucose"`
	Steps            float64              `json:"steps"`
	ActiveCalories   float64              `json:"active_calories"`
	RestingCalories  float64              `json:"resting_calories"`
	ExerciseMinutes  float64              `json:"exercise_minutes"`
	MindfulMinutes   float64              `json:"mindful_minutes"`
	SleepSeconds     float64              `json:"sleep_seconds"`
	SleepSource      wearable.SleepSource `json:"sleep_source"`
	Workouts         []wearable.Workout   `json:"workouts"`
	Location         string               `json:"location"`
}

// #endregion raw

// #region stats

// Stats is the derived block, recomputed on every run.
type Stats struct {
	Vitality  *vitality.Result  `json:"vitality,omitempty"`
	Axes      *axes.Result      `json:"axes,omitempty"`
	State     engine.State      `json:"state,omitempty"`
	Archetype engine.Archetype  `json:"archetype,omitempty"`
	Alignment alignment.Verdict `json:"alignment,omitempty"`
	Streak    int               `json:"streak"`
	Rank      alignment.Rank    `json:"rank,omitempty"`
}

// #endregion stats

// #region content

// Provenance values for directive content.
const (
	ProvenanceGenerated = "generated"
	ProvenanceFallback  = "fallback"
)

// Content is the generated (or fallback) directive text plus provenance.
type Content struct {
	SessionFocus   string    `json:"session_focus"`
	AvoidCue       string    `json:"avoid_cue"`
	InsightSummary string    `json:"insight_summary"`
	InsightDetail  string    `json:"insight_detail,omitempty"`
	Provenance     string    `json:"provenance"` // "generated" | "fallback"
	GeneratedAt    time.Time `json:"generated_at"`
}

// Directive is the persisted directive block: the engine output plus the
// content attached to it.
type Directive struct {
	engine.Directive
	Content *Content `json:"content,omitempty"`
}

// #endregion content

// #region session

// Session is an optional logged training session attached to the day.
type Session struct {
	ID              string    `json:"id"`
	WorkoutID       string    `json:"workout_id,omitempty"`
	PerceivedEffort int       `json:"perceived_effort"` // RPE 1-10
	Notes           string    `json:"notes,omitempty"`
	LoggedAt        time.Time `json:"logged_at"`
}

// #endregion session

// #region daily-record

// DailyRecord is the one-per-date persisted unit.
type DailyRecord struct {
	Date      string     `json:"date"`
	Raw       Raw        `json:"raw"`
	Stats     Stats      `json:"stats"`
	Directive *Directive `json:"directive,omitempty"`
	Session   *Session   `json:"session,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// #endregion daily-record
