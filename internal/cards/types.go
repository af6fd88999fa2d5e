package cards

import (
	"encoding/json"
	"time"
)

// #region type

// Type enumerates the card kinds.
type Type string

const (
	TypeSleepConfirm      Type = "sleep_confirm"
	TypeWorkoutLog        Type = "workout_log"
	TypeWorkoutSuggestion Type = "workout_suggestion"
	TypeGoalsIntake       Type = "goals_intake"
	TypeWelcome           Type = "welcome"
	TypeWorkoutInsight    Type = "workout_insight"
)

// Fixed selection priorities, highest first. Welcome and insight sit in the
// bands between the trigger-driven types.
var Priorities = map[Type]int{
	TypeSleepConfirm:      100,
	TypeWelcome:           90,
	TypeWorkoutLog:        80,
	TypeWorkoutInsight:    70,
	TypeWorkoutSuggestion: 60,
	TypeGoalsIntake:       50,
}

// #endregion type

// #region status

// Status is the lifecycle state. ACTIVE may move to DISMISSED or COMPLETED;
// DISMISSED returns to ACTIVE only under type-specific time-boxed
// resurfacing; COMPLETED is terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusDismissed Status = "dismissed"
	StatusCompleted Status = "completed"
)

// #endregion status

// #region dismiss-policy

// DismissPolicy says what can bring a dismissed card back.
type DismissPolicy string

const (
	// PolicyTimeBoxed re-offers after a fixed interval (sleep-confirm: 12h).
	PolicyTimeBoxed DismissPolicy = "time_boxed"
	// PolicyEventResurface never returns on its own; only a new triggering
	// event (a new workout) mints a fresh card.
	PolicyEventResurface DismissPolicy = "event_resurface"
	// PolicyTerminal stays dismissed.
	PolicyTerminal DismissPolicy = "terminal"
)

// policyFor is the per-type dismissal behavior.
func policyFor(t Type) DismissPolicy {
	switch t {
	case TypeSleepConfirm:
		return PolicyTimeBoxed
	case TypeWorkoutLog:
		return PolicyEventResurface
	default:
		return PolicyTerminal
	}
}

// SleepConfirmResurfaceAfter is the time-boxed re-offer interval.
const SleepConfirmResurfaceAfter = 12 * time.Hour

// #endregion dismiss-policy

// #region card

// Card is a transient, typed, eligibility-triggered prompt with persisted
// lifecycle state. Keyed by (date, type, sub-id); never hard-deleted.
type Card struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Type          Type            `json:"type"`
	SubID         string          `json:"sub_id,omitempty"` // workout id for workout-log cards
	Status        Status          `json:"status"`
	Priority      int             `json:"priority"`
	DismissPolicy DismissPolicy   `json:"dismiss_policy"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DismissedAt   *time.Time      `json:"dismissed_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// #endregion card
