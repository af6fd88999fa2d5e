// Package logging writes run provenance rows: every pipeline decision
// (cache hit, recompute, regeneration, backfill) leaves a row explaining
// itself.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region entry

// Trigger types for provenance rows.
const (
	TriggerDailyRun  = "daily_run"
	TriggerRefresh   = "manual_refresh"
	TriggerBackfill  = "backfill"
	TriggerCardOp    = "card_op"
	TriggerGoalsEdit = "goals_edit"
)

// ProvenanceEntry is one decision row.
type ProvenanceEntry struct {
	Date        string
	TriggerType string
	Decision    string // e.g. "cache_hit" | "recompute" | "regenerate" | "skip_regen"
	Reason      string
	DetailsJSON string
	CreatedAt   time.Time
}

// #endregion entry

// #region log-decision

// LogDecision writes a provenance entry. Callers treat failures as
// non-fatal: a missing provenance row never fails a run.
func LogDecision(db *sql.DB, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO provenance_log (date, trigger_type, decision, reason, details_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Date,
		entry.TriggerType,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.DetailsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
