package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/baseline"
	"github.com/danielpatrickdp/operator-state/internal/record"
)

// #region daily-record

// GetDailyRecord reads one record. A missing date returns (nil, nil).
func (s *Store) GetDailyRecord(date string) (*record.DailyRecord, error) {
	var rawJSON string
	var statsJSON, directiveJSON, sessionJSON sql.NullString
	var createdStr, updatedStr string

	err := s.db.QueryRow(
		`SELECT raw_json, stats_json, directive_json, session_json, created_at, updated_at
		 FROM daily_records WHERE date = ?`, date,
	).Scan(&rawJSON, &statsJSON, &directiveJSON, &sessionJSON, &createdStr, &updatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", date, err)
	}

	rec := &record.DailyRecord{Date: date}
	if err := json.Unmarshal([]byte(rawJSON), &rec.Raw); err != nil {
		return nil, fmt.Errorf("unmarshal raw %s: %w", date, err)
	}
	if statsJSON.Valid {
		if err := json.Unmarshal([]byte(statsJSON.String), &rec.Stats); err != nil {
			return nil, fmt.Errorf("unmarshal stats %s: %w", date, err)
		}
	}
	if directiveJSON.Valid {
		rec.Directive = &record.Directive{}
		if err := json.Unmarshal([]byte(directiveJSON.String), rec.Directive); err != nil {
			return nil, fmt.Errorf("unmarshal directive %s: %w", date, err)
		}
	}
	if sessionJSON.Valid {
		rec.Session = &record.Session{}
		if err := json.Unmarshal([]byte(sessionJSON.String), rec.Session); err != nil {
			return nil, fmt.Errorf("unmarshal session %s: %w", date, err)
		}
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return rec, nil
}

// SaveDailyRecord upserts a record. Last write wins.
func (s *Store) SaveDailyRecord(rec *record.DailyRecord) error {
	rawJSON, err := json.Marshal(rec.Raw)
	if err != nil {
		return fmt.Errorf("marshal raw: %w", err)
	}
	statsJSON, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	var directivePtr, sessionPtr interface{}
	if rec.Directive != nil {
		b, err := json.Marshal(rec.Directive)
		if err != nil {
			return fmt.Errorf("marshal directive: %w", err)
		}
		directivePtr = string(b)
	}
	if rec.Session != nil {
		b, err := json.Marshal(rec.Session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		sessionPtr = string(b)
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err = s.db.Exec(
		`INSERT INTO daily_records (date, raw_json, stats_json, directive_json, session_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   raw_json = excluded.raw_json,
		   stats_json = excluded.stats_json,
		   directive_json = excluded.directive_json,
		   session_json = excluded.session_json,
		   updated_at = excluded.updated_at`,
		rec.Date, string(rawJSON), string(statsJSON), directivePtr, sessionPtr,
		rec.CreatedAt.Format(time.RFC3339Nano), rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.Date, err)
	}
	return nil
}

// RecentRecords returns up to limit records before (and excluding) date,
// most recent first.
func (s *Store) RecentRecords(before string, limit int) ([]record.DailyRecord, error) {
	rows, err := s.db.Query(
		`SELECT date FROM daily_records WHERE date < ? ORDER BY date DESC LIMIT ?`,
		before, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent records: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var recs []record.DailyRecord
	for _, d := range dates {
		rec, err := s.GetDailyRecord(d)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

// HasAnyRecord reports whether any daily record exists.
func (s *Store) HasAnyRecord() (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM daily_records`).Scan(&n); err != nil {
		return false, fmt.Errorf("count records: %w", err)
	}
	return n > 0, nil
}

// DeleteDailyRecord removes a record. Only explicit resets call this.
func (s *Store) DeleteDailyRecord(date string) error {
	if _, err := s.db.Exec(`DELETE FROM daily_records WHERE date = ?`, date); err != nil {
		return fmt.Errorf("delete record %s: %w", date, err)
	}
	return nil
}

// #endregion daily-record

// #region baselines

// GetBaselines reads the process-wide baseline record, (nil, nil) when none
// has been computed yet.
func (s *Store) GetBaselines() (*baseline.Baselines, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM baselines WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get baselines: %w", err)
	}
	var b baseline.Baselines
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		return nil, fmt.Errorf("unmarshal baselines: %w", err)
	}
	return &b, nil
}

// SaveBaselines replaces the singleton baseline record wholesale.
func (s *Store) SaveBaselines(b baseline.Baselines) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal baselines: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO baselines (id, payload, computed_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, computed_at = excluded.computed_at`,
		string(payload), b.ComputedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save baselines: %w", err)
	}
	return nil
}

// #endregion baselines
