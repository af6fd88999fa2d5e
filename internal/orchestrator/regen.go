package orchestrator

// #region imports
import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/generator"
	"github.com/danielpatrickdp/operator-state/internal/logging"
	"github.com/danielpatrickdp/operator-state/internal/record"
	"github.com/danielpatrickdp/operator-state/internal/store"
	"github.com/danielpatrickdp/operator-state/internal/telemetry"
)

// #endregion

// #region policy

// Regeneration budget. Critical transitions bypass both limits.
const (
	RegenCooldown = 2 * time.Hour
	RegenDailyCap = 3
)

// criticalTransition: the directive moved in a way the operator must see
// immediately, regardless of cooldown and cap. That is any move into or out
// of the regulation category, and a flush/overload swap in either direction.
func criticalTransition(prev, next store.ContentSnapshot) bool {
	if (prev.Category == engine.CategoryRegulation) != (next.Category == engine.CategoryRegulation) {
		return true
	}
	if prev.Stimulus == engine.StimulusFlush && next.Stimulus == engine.StimulusOverload {
		return true
	}
	if prev.Stimulus == engine.StimulusOverload && next.Stimulus == engine.StimulusFlush {
		return true
	}
	return false
}

// #endregion policy

// #region regenerate

// regenerate decides whether the directive content must be (re)built and
// attaches it to the record. Generator failures degrade to fallback content;
// they never fail the run.
func (r *Runner) regenerate(ctx context.Context, rec *record.DailyRecord, existing *record.DailyRecord) error {
	next := store.SnapshotOf(rec.Date, rec.Directive.Directive)
	prev, err := r.Store.GetSnapshot(rec.Date)
	if err != nil {
		return fmt.Errorf("regen snapshot %s: %w", rec.Date, err)
	}

	hasContent := existing != nil && existing.Directive != nil && existing.Directive.Content != nil

	if prev != nil && hasContent {
		if prev.SameShape(next) {
			telemetry.RecordRegeneration("skipped_same_shape")
			rec.Directive.Content = existing.Directive.Content
			return nil
		}
		critical := criticalTransition(*prev, next)
		if !critical {
			if elapsed := r.now().Sub(prev.LastRegenAt); elapsed < RegenCooldown {
				telemetry.RecordRegeneration("skipped_cooldown")
				r.logDecision(rec.Date, logging.TriggerDailyRun, "skip_regen",
					fmt.Sprintf("cooldown: %s since last regen", elapsed.Round(time.Minute)))
				rec.Directive.Content = existing.Directive.Content
				return nil
			}
			if prev.RegenCount >= RegenDailyCap {
				telemetry.RecordRegeneration("skipped_cap")
				r.logDecision(rec.Date, logging.TriggerDailyRun, "skip_regen", "daily regeneration cap reached")
				rec.Directive.Content = existing.Directive.Content
				return nil
			}
		} else {
			log.Printf("[REGEN] %s critical transition %s/%s -> %s/%s, bypassing budget",
				rec.Date, prev.Category, prev.Stimulus, next.Category, next.Stimulus)
		}
	}
	if prev != nil {
		// Regenerating with lost content still spends the day's budget.
		next.RegenCount = prev.RegenCount + 1
	}

	content := r.buildContent(ctx, rec)
	rec.Directive.Content = content
	next.LastRegenAt = content.GeneratedAt

	if err := r.Store.SaveSnapshot(next); err != nil {
		return fmt.Errorf("save regen snapshot %s: %w", rec.Date, err)
	}
	telemetry.RecordRegeneration("regenerated")
	if hasContent {
		r.logDecision(rec.Date, logging.TriggerDailyRun, "regenerate",
			fmt.Sprintf("shape changed to %s/%s", next.Category, next.Stimulus))
	}
	return nil
}

// buildContent calls the live generator when configured, falling back to the
// template content on any failure.
func (r *Runner) buildContent(ctx context.Context, rec *record.DailyRecord) *record.Content {
	req := generator.Request{
		Date:      rec.Date,
		State:     rec.Stats.State,
		Archetype: rec.Stats.Archetype,
		Directive: rec.Directive.Directive,
		Vitality:  vitalityOf(rec),
	}
	if rec.Stats.Axes != nil {
		req.MaxLoad = rec.Stats.Axes.Axes.MaxLoad()
		req.Recovery = rec.Stats.Axes.Axes.Recovery
	}
	if g, err := r.Store.GetGoals(); err == nil && g != nil {
		req.Goals = g.PrimaryGoal
	}

	if r.Generator != nil {
		content, err := r.Generator.Generate(ctx, req)
		if err == nil {
			return content
		}
		telemetry.RecordGeneratorFailure()
		log.Printf("[REGEN] %s generation failed, using fallback: %v", rec.Date, err)
	}

	content, _ := r.Fallback.Generate(ctx, req)
	return content
}

// #endregion regenerate
