package generator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/engine"
	"github.com/danielpatrickdp/operator-state/internal/record"
)

func TestFallbackAlwaysProducesContent(t *testing.T) {
	fixed := time.Date(2026, 8, 23, 6, 0, 0, 0, time.UTC)
	f := Fallback{Now: func() time.Time { return fixed }}

	for _, stim := range []engine.Stimulus{
		engine.StimulusOverload, engine.StimulusFlush, engine.StimulusMaintain,
		engine.StimulusDeload, engine.StimulusPrime,
	} {
		c, err := f.Generate(context.Background(), Request{
			Date:      "2026-08-23",
			State:     engine.StateReadyForLoad,
			Directive: engine.Directive{Stimulus: stim},
		})
		if err != nil {
			t.Fatalf("%s: %v", stim, err)
		}
		if c.SessionFocus == "" || c.AvoidCue == "" || c.InsightSummary == "" {
			t.Fatalf("%s: incomplete content: %+v", stim, c)
		}
		if c.Provenance != record.ProvenanceFallback {
			t.Fatalf("%s: provenance %q", stim, c.Provenance)
		}
		if !c.GeneratedAt.Equal(fixed) {
			t.Fatalf("%s: timestamp not injected", stim)
		}
	}
}

func TestFallbackLowImpactPrependsAvoidCue(t *testing.T) {
	c, err := Fallback{}.Generate(context.Background(), Request{
		Directive: engine.Directive{
			Stimulus:    engine.StimulusFlush,
			Constraints: engine.Constraints{LowImpact: true},
		},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(c.AvoidCue, "Stay low impact") {
		t.Fatalf("expected low-impact cue first, got %q", c.AvoidCue)
	}
}

func TestParseContentToleratesFencesAndProse(t *testing.T) {
	text := "Here you go:\n```json\n{\"session_focus\":\"lift heavy\",\"avoid_cue\":\"skip cardio\",\"insight\":\"recovery is high\"}\n```\nDone."
	parsed, err := parseContent(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.SessionFocus != "lift heavy" || parsed.Insight != "recovery is high" {
		t.Fatalf("parse mismatch: %+v", parsed)
	}
}

func TestParseContentRejectsIncomplete(t *testing.T) {
	if _, err := parseContent(`{"session_focus":"x","avoid_cue":""}`); err == nil {
		t.Fatal("expected incomplete response error")
	}
	if _, err := parseContent("no json here"); err == nil {
		t.Fatal("expected no-object error")
	}
}
