// Package generator produces the human-readable directive content: a session
// focus line, an avoid cue, and a short insight. The Anthropic implementation
// calls the Messages API; Fallback builds deterministic text from the
// directive alone so a run never fails for lack of content.
package generator

import (
	"context"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/record"
)

// #region request

// Request is everything the generator may reference when writing content.
type Request struct {
	Date      string
	State     engine.State
	Archetype engine.Archetype
	Directive engine.Directive
	Vitality  float64
	MaxLoad   float64
	Recovery  float64
	Goals     string // free text, empty when the operator never set goals
}

// Generator writes directive content for a day.
type Generator interface {
	Generate(ctx context.Context, req Request) (*record.Content, error)
}

// #endregion request

// #region fallback

// Fallback builds directive content from fixed per-stimulus templates. It is
// used when no API key is configured and when the live generator errors.
type Fallback struct {
	Now func() time.Time
}

var fallbackFocus = map[engine.Stimulus]string{
	engine.StimulusOverload: "Push a hard session today: the load gauges have room and recovery is behind you.",
	engine.StimulusFlush:    "Keep today easy and circulatory: light movement, long exhales, nothing that spikes heart rate.",
	engine.StimulusMaintain: "Hold the line: a normal session at familiar intensity, no new stress.",
	engine.StimulusDeload:   "Back off volume today: short, controlled work well under your usual effort.",
	engine.StimulusPrime:    "Wake the system up: short sharp efforts with full rest between them.",
}

var fallbackAvoid = map[engine.Stimulus]string{
	engine.StimulusOverload: "Avoid junk volume; make the hard work count and stop when quality drops.",
	engine.StimulusFlush:    "Avoid anything above conversational pace.",
	engine.StimulusMaintain: "Avoid turning a maintenance day into a test day.",
	engine.StimulusDeload:   "Avoid adding sets because the first ones felt easy.",
	engine.StimulusPrime:    "Avoid grinding reps; this is about speed, not fatigue.",
}

func (f Fallback) Generate(_ context.Context, req Request) (*record.Content, error) {
	now := time.Now().UTC()
	if f.Now != nil {
		now = f.Now()
	}
	focus := fallbackFocus[req.Directive.Stimulus]
	if focus == "" {
		focus = fallbackFocus[engine.StimulusMaintain]
	}
	avoid := fallbackAvoid[req.Directive.Stimulus]
	if avoid == "" {
		avoid = fallbackAvoid[engine.StimulusMaintain]
	}
	if req.Directive.Constraints.LowImpact {
		avoid = "Stay low impact: no jumping, no running, no loaded spinal flexion. " + avoid
	}
	return &record.Content{
		SessionFocus:   focus,
		AvoidCue:       avoid,
		InsightSummary: fallbackInsight(req),
		Provenance:     record.ProvenanceFallback,
		GeneratedAt:    now,
	}, nil
}

func fallbackInsight(req Request) string {
	switch req.State {
	case engine.StateRecoveryMode:
		return "Vitality is suppressed while load stays high; the priority is regulation, not training."
	case engine.StatePhysicalStrain:
		return "The body is carrying real strain today; treat movement as recovery work."
	case engine.StateHighStrain:
		return "Load is elevated but vitality is holding; skill work keeps you moving without digging deeper."
	case engine.StateBuildingCapacity:
		return "Recovery and vitality are both strong; today is a day to add load."
	case engine.StateNeedsStimulation:
		return "You are well rested and under-stimulated; a priming session restores readiness."
	default:
		return "Signals are in the normal band; a standard session keeps the streak moving."
	}
}

// #endregion fallback
