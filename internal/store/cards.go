package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/cards"
)

// #region card-io

const cardColumns = `id, date, type, sub_id, status, priority, dismiss_policy,
	payload_json, created_at, updated_at, dismissed_at, completed_at`

func scanCard(row interface{ Scan(...any) error }) (cards.Card, error) {
	var c cards.Card
	var payload, dismissedAt, completedAt sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(&c.ID, &c.Date, &c.Type, &c.SubID, &c.Status, &c.Priority,
		&c.DismissPolicy, &payload, &createdStr, &updatedStr, &dismissedAt, &completedAt)
	if err != nil {
		return cards.Card{}, err
	}
	if payload.Valid {
		c.Payload = []byte(payload.String)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	c.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	if dismissedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, dismissedAt.String)
		c.DismissedAt = &t
	}
	if completedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, completedAt.String)
		c.CompletedAt = &t
	}
	return c, nil
}

// #endregion card-io

// #region card-queries

// GetCard reads one card by ID, (nil, nil) when absent.
func (s *Store) GetCard(id string) (*cards.Card, error) {
	row := s.db.QueryRow(`SELECT `+cardColumns+` FROM smart_cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card %s: %w", id, err)
	}
	return &c, nil
}

// CardsByDate returns all cards for a date, any status.
func (s *Store) CardsByDate(date string) ([]cards.Card, error) {
	rows, err := s.db.Query(
		`SELECT `+cardColumns+` FROM smart_cards WHERE date = ? ORDER BY created_at`, date)
	if err != nil {
		return nil, fmt.Errorf("cards by date: %w", err)
	}
	defer rows.Close()

	var out []cards.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// HasCardOfType reports whether any card of the given type exists, any date.
func (s *Store) HasCardOfType(t cards.Type) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM smart_cards WHERE type = ?`, t).Scan(&n); err != nil {
		return false, fmt.Errorf("count cards: %w", err)
	}
	return n > 0, nil
}

// #endregion card-queries

// #region card-save

// SaveCard upserts a card row. Cards are never hard-deleted.
func (s *Store) SaveCard(c cards.Card) error {
	var payloadPtr interface{}
	if len(c.Payload) > 0 {
		payloadPtr = string(c.Payload)
	}
	var dismissedPtr, completedPtr interface{}
	if c.DismissedAt != nil {
		dismissedPtr = c.DismissedAt.Format(time.RFC3339Nano)
	}
	if c.CompletedAt != nil {
		completedPtr = c.CompletedAt.Format(time.RFC3339Nano)
	}

	_, err := s.db.Exec(
		`INSERT INTO smart_cards (id, date, type, sub_id, status, priority, dismiss_policy,
		   payload_json, created_at, updated_at, dismissed_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status = excluded.status,
		   payload_json = excluded.payload_json,
		   updated_at = excluded.updated_at,
		   dismissed_at = excluded.dismissed_at,
		   completed_at = excluded.completed_at`,
		c.ID, c.Date, string(c.Type), c.SubID, string(c.Status), c.Priority,
		string(c.DismissPolicy), payloadPtr,
		c.CreatedAt.Format(time.RFC3339Nano), c.UpdatedAt.Format(time.RFC3339Nano),
		dismissedPtr, completedPtr,
	)
	if err != nil {
		return fmt.Errorf("save card %s: %w", c.ID, err)
	}
	return nil
}

// #endregion card-save
