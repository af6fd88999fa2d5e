package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture. History
// seeds the baselines; Days are replayed in order; Expected holds the
// reference outcomes to compare against.
type Fixture struct {
	Description string          `json:"description"`
	Now         string          `json:"now"` // date the baselines are computed "as of"
	History     []wearable.Day  `json:"history"`
	Days        []wearable.Day  `json:"days"`
	Expected    []ExpectedDay   `json:"expected"`
}

// ExpectedDay captures the reference outcome per replayed day.
type ExpectedDay struct {
	Date     string          `json:"date"`
	State    engine.State    `json:"state"`
	Stimulus engine.Stimulus `json:"stimulus"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Days) == 0 {
		return nil, fmt.Errorf("fixture %s: no days to replay", path)
	}
	return &f, nil
}

// AsOf resolves the fixture's baseline reference time, defaulting to the
// day after the last replayed day.
func (f *Fixture) AsOf() time.Time {
	if f.Now != "" {
		if t, err := time.Parse(wearable.DateLayout, f.Now); err == nil {
			return t
		}
	}
	last := f.Days[len(f.Days)-1].Date
	t, err := time.Parse(wearable.DateLayout, last)
	if err != nil {
		return time.Now().UTC()
	}
	return t.AddDate(0, 0, 1)
}

// Run replays the fixture and returns the per-day results.
func (f *Fixture) Run() []Result {
	return Replay(wearable.History{Days: f.History}, f.Days, f.AsOf())
}

// #endregion fixture-loader
