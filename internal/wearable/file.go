package wearable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// #region file-provider

// FileProvider reads per-day JSON export files from a directory.
// Each file is named <date>.json and contains a Day. A missing file is not an
// error: the day simply has no data, and every metric reads as zero.
type FileProvider struct {
	Dir string
	Now func() time.Time // nil means time.Now
}

// NewFileProvider creates a FileProvider rooted at dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: dir}
}

func (p *FileProvider) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// #endregion file-provider

// #region load-day

// loadDay reads one day file. Absent files yield an empty Day with the date
// set; malformed files are a provider failure.
func (p *FileProvider) loadDay(date string) (Day, error) {
	path := filepath.Join(p.Dir, date+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Day{Date: date, Sleep: SleepData{Source: SleepNone}}, nil
	}
	if err != nil {
		return Day{}, fmt.Errorf("read day %s: %w", date, err)
	}
	var d Day
	if err := json.Unmarshal(data, &d); err != nil {
		return Day{}, fmt.Errorf("parse day %s: %w", date, err)
	}
	if d.Date == "" {
		d.Date = date
	}
	if d.Sleep.Source == "" {
		d.Sleep.Source = SleepNone
	}
	return d, nil
}

// #endregion load-day

// #region provider-methods

// Biometrics returns the biometric readings for date.
func (p *FileProvider) Biometrics(ctx context.Context, date string) (Biometrics, error) {
	if err := ctx.Err(); err != nil {
		return Biometrics{}, err
	}
	d, err := p.loadDay(date)
	if err != nil {
		return Biometrics{}, err
	}
	return d.Biometrics, nil
}

// Activity returns the movement totals for date.
func (p *FileProvider) Activity(ctx context.Context, date string) (Activity, error) {
	if err := ctx.Err(); err != nil {
		return Activity{}, err
	}
	d, err := p.loadDay(date)
	if err != nil {
		return Activity{}, err
	}
	return d.Activity, nil
}

// Sleep returns the sleep record for date.
func (p *FileProvider) Sleep(ctx context.Context, date string) (SleepData, error) {
	if err := ctx.Err(); err != nil {
		return SleepData{}, err
	}
	d, err := p.loadDay(date)
	if err != nil {
		return SleepData{}, err
	}
	return d.Sleep, nil
}

// Historical returns the trailing window ending yesterday, oldest first.
func (p *FileProvider) Historical(ctx context.Context, days int) (History, error) {
	var h History
	today := p.now()
	for i := days; i >= 1; i-- {
		if err := ctx.Err(); err != nil {
			return History{}, err
		}
		date := DateOf(today.AddDate(0, 0, -i))
		d, err := p.loadDay(date)
		if err != nil {
			return History{}, err
		}
		h.Days = append(h.Days, d)
	}
	return h, nil
}

// #endregion provider-methods

// #region location

// LocationOf returns the location label for date, empty when unknown.
func (p *FileProvider) LocationOf(ctx context.Context, date string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d, err := p.loadDay(date)
	if err != nil {
		return "", err
	}
	return d.Location, nil
}

// #endregion location
