package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// #region goals

// Goals is the operator's free-text goal record. Single row, not per-date.
type Goals struct {
	PrimaryGoal string    `json:"primary_goal"`
	Horizon     string    `json:"horizon,omitempty"`
	Constraints string    `json:"constraints,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetGoals reads the goals record, (nil, nil) when the operator has never
// set any.
func (s *Store) GetGoals() (*Goals, error) {
	var g Goals
	var horizon, constraints sql.NullString
	var updatedStr string

	err := s.db.QueryRow(
		`SELECT primary_goal, horizon, constraints, updated_at FROM operator_goals WHERE id = 1`,
	).Scan(&g.PrimaryGoal, &horizon, &constraints, &updatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goals: %w", err)
	}
	if horizon.Valid {
		g.Horizon = horizon.String
	}
	if constraints.Valid {
		g.Constraints = constraints.String
	}
	g.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return &g, nil
}

// SaveGoals replaces the goals record and stamps the update time.
func (s *Store) SaveGoals(g Goals) error {
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO operator_goals (id, primary_goal, horizon, constraints, updated_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   primary_goal = excluded.primary_goal,
		   horizon = excluded.horizon,
		   constraints = excluded.constraints,
		   updated_at = excluded.updated_at`,
		g.PrimaryGoal, nullIfEmpty(g.Horizon), nullIfEmpty(g.Constraints),
		g.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// #endregion goals
