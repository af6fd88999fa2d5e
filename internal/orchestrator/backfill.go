package orchestrator

// #region imports
import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/operator-state/internal/generator"
	"github.com/danielpatrickdp/operator-state/internal/logging"
	"github.com/danielpatrickdp/operator-state/internal/record"
	"github.com/danielpatrickdp/operator-state/internal/telemetry"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #endregion

// BackfillConcurrency bounds simultaneous provider reads during backfill.
const BackfillConcurrency = 7

// #region backfill

// Backfill fills in past daily records: concurrent reads, then strictly
// chronological derivation and writes so each day's trends can see the day
// before. Backfilled days get fallback content and no cards; dates that
// already have a record are left alone.
func (r *Runner) Backfill(ctx context.Context, days int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if days <= 0 {
		return 0, nil
	}

	b, err := r.baselines(ctx)
	if err != nil {
		return 0, err
	}

	today := wearable.DateOf(r.now())
	dates := make([]string, 0, days)
	for i := days; i >= 1; i-- {
		t, _ := time.Parse(wearable.DateLayout, today)
		dates = append(dates, wearable.DateOf(t.AddDate(0, 0, -i)))
	}

	raws := make([]record.Raw, len(dates))
	skip := make([]bool, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(BackfillConcurrency)
	for i, date := range dates {
		g.Go(func() error {
			existing, err := r.Store.GetDailyRecord(date)
			if err != nil {
				return err
			}
			if existing != nil {
				skip[i] = true
				return nil
			}
			raw, err := r.fetchRaw(gctx, date, nil)
			if err != nil {
				return err
			}
			raws[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("backfill reads: %w", err)
	}

	written := 0
	for i, date := range dates {
		if skip[i] {
			continue
		}
		rec := r.derive(ctx, date, raws[i], nil, b)
		content, _ := r.Fallback.Generate(ctx, generator.Request{
			Date:      date,
			State:     rec.Stats.State,
			Archetype: rec.Stats.Archetype,
			Directive: rec.Directive.Directive,
		})
		rec.Directive.Content = content
		if err := r.Store.SaveDailyRecord(rec); err != nil {
			return written, fmt.Errorf("backfill write %s: %w", date, err)
		}
		written++
	}

	telemetry.RecordRun(logging.TriggerBackfill, "completed")
	r.logDecision(today, logging.TriggerBackfill, "backfill",
		fmt.Sprintf("%d of %d days written", written, days))
	log.Printf("[RUN] backfill wrote %d/%d days", written, days)
	return written, nil
}

// #endregion backfill
