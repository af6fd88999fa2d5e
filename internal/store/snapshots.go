package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/engine"
)

// #region snapshot

// ContentSnapshot is the per-date regeneration snapshot: the directive shape
// the last generated text was built from, plus the regeneration budget state.
type ContentSnapshot struct {
	Date        string          `json:"date"`
	Category    engine.Category `json:"category"`
	Stimulus    engine.Stimulus `json:"stimulus"`
	LowImpact   bool            `json:"low_impact"`
	HRCap       int             `json:"hr_cap"`
	Equipment   []string        `json:"equipment"`
	RegenCount  int             `json:"regen_count"`
	LastRegenAt time.Time       `json:"last_regen_at"`
}

// SnapshotOf captures the regeneration-relevant shape of a directive.
func SnapshotOf(date string, d engine.Directive) ContentSnapshot {
	return ContentSnapshot{
		Date:      date,
		Category:  d.Category,
		Stimulus:  d.Stimulus,
		LowImpact: d.Constraints.LowImpact,
		HRCap:     d.Constraints.HeartRateCap,
		Equipment: append([]string(nil), d.Constraints.Equipment...),
	}
}

// SameShape compares only the regeneration-relevant fields, not the full
// directive contract.
func (c ContentSnapshot) SameShape(o ContentSnapshot) bool {
	if c.Category != o.Category || c.Stimulus != o.Stimulus ||
		c.LowImpact != o.LowImpact || c.HRCap != o.HRCap {
		return false
	}
	if len(c.Equipment) != len(o.Equipment) {
		return false
	}
	for i := range c.Equipment {
		if c.Equipment[i] != o.Equipment[i] {
			return false
		}
	}
	return true
}

// #endregion snapshot

// #region snapshot-io

// GetSnapshot reads the snapshot for a date, (nil, nil) when absent.
func (s *Store) GetSnapshot(date string) (*ContentSnapshot, error) {
	var snap ContentSnapshot
	var equipment, lastRegen sql.NullString
	var lowImpact int

	err := s.db.QueryRow(
		`SELECT category, stimulus, low_impact, hr_cap, equipment, regen_count, last_regen_at
		 FROM content_snapshots WHERE date = ?`, date,
	).Scan(&snap.Category, &snap.Stimulus, &lowImpact, &snap.HRCap, &equipment,
		&snap.RegenCount, &lastRegen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", date, err)
	}

	snap.Date = date
	snap.LowImpact = lowImpact != 0
	if equipment.Valid {
		if err := json.Unmarshal([]byte(equipment.String), &snap.Equipment); err != nil {
			return nil, fmt.Errorf("unmarshal equipment %s: %w", date, err)
		}
	}
	if lastRegen.Valid {
		snap.LastRegenAt, _ = time.Parse(time.RFC3339Nano, lastRegen.String)
	}
	return &snap, nil
}

// SaveSnapshot upserts the snapshot row.
func (s *Store) SaveSnapshot(snap ContentSnapshot) error {
	equipment, err := json.Marshal(snap.Equipment)
	if err != nil {
		return fmt.Errorf("marshal equipment: %w", err)
	}
	lowImpact := 0
	if snap.LowImpact {
		lowImpact = 1
	}
	var lastRegenPtr interface{}
	if !snap.LastRegenAt.IsZero() {
		lastRegenPtr = snap.LastRegenAt.Format(time.RFC3339Nano)
	}

	_, err = s.db.Exec(
		`INSERT INTO content_snapshots (date, category, stimulus, low_impact, hr_cap, equipment, regen_count, last_regen_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   category = excluded.category,
		   stimulus = excluded.stimulus,
		   low_impact = excluded.low_impact,
		   hr_cap = excluded.hr_cap,
		   equipment = excluded.equipment,
		   regen_count = excluded.regen_count,
		   last_regen_at = excluded.last_regen_at`,
		snap.Date, string(snap.Category), string(snap.Stimulus), lowImpact,
		snap.HRCap, string(equipment), snap.RegenCount, lastRegenPtr,
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.Date, err)
	}
	return nil
}

// #endregion snapshot-io
