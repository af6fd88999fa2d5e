package engine

import (
	"testing"

	"github.com/danielpatrickdp/operator-state/internal/axes"
)

func TestRuleOnePrecedence(t *testing.T) {
	// Regression: regulation past 80 must win even when the mechanical rule
	// would also fire.
	a := axes.Axes{Regulation: 85, Mechanical: 90, Recovery: 20}
	if got := ClassifyState(a); got != StateRecoveryMode {
		t.Fatalf("expected recovery_mode, got %s", got)
	}
}

func TestStateDecisionList(t *testing.T) {
	cases := []struct {
		name string
		a    axes.Axes
		want State
	}{
		{"collapsed recovery under load", axes.Axes{Recovery: 25, Mechanical: 55}, StateRecoveryMode},
		{"mechanical strain", axes.Axes{Mechanical: 90, Recovery: 45}, StatePhysicalStrain},
		{"neural spike", axes.Axes{Neural: 90, Recovery: 55}, StateHighStrain},
		{"any axis redlined", axes.Axes{Metabolic: 95, Recovery: 55}, StateHighStrain},
		{"adaptation window", axes.Axes{Recovery: 70, Metabolic: 65}, StateBuildingCapacity},
		{"fresh but idle", axes.Axes{Recovery: 80}, StateNeedsStimulation},
		{"default", axes.Axes{Recovery: 50, Mechanical: 40}, StateReadyForLoad},
	}
	for _, c := range cases {
		if got := ClassifyState(c.a); got != c.want {
			t.Fatalf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestExactlyOneStateForAnyVector(t *testing.T) {
	known := map[State]bool{}
	for _, s := range States {
		known[s] = true
	}
	for m := 0.0; m <= 100; m += 20 {
		for r := 0.0; r <= 100; r += 20 {
			for g := 0.0; g <= 100; g += 20 {
				s := ClassifyState(axes.Axes{Mechanical: m, Recovery: r, Regulation: g})
				if !known[s] {
					t.Fatalf("unknown state %q for mech=%v rec=%v reg=%v", s, m, r, g)
				}
			}
		}
	}
}

func TestArchetypeContextOverridesFirst(t *testing.T) {
	a := axes.Axes{Metabolic: 90, Mechanical: 85} // would otherwise be redline
	lens := ClassifyArchetype(a, Context{SleepSeconds: 5 * 3600, Steps: 15000})
	if lens != ArchetypeShortSleepGrinder {
		t.Fatalf("expected short_sleep_grinder override, got %s", lens)
	}
	if got := ClassifyArchetype(a, Context{RehabWorkout: true}); got != ArchetypeRehab {
		t.Fatalf("expected rehab override, got %s", got)
	}
	if got := ClassifyArchetype(a, Context{LocationChanged: true}); got != ArchetypeNomad {
		t.Fatalf("expected nomad override, got %s", got)
	}
}

func TestArchetypeDominanceOrder(t *testing.T) {
	// Metabolic and mechanical tied above the floor: metabolic wins only if
	// it clears the margin, otherwise the fixed order keeps looking.
	a := axes.Axes{Metabolic: 70, Mechanical: 40, Neural: 40, Recovery: 50}
	if got := ClassifyArchetype(a, Context{}); got != ArchetypeFurnace {
		t.Fatalf("expected furnace, got %s", got)
	}

	a = axes.Axes{Mechanical: 70, Neural: 40, Recovery: 50}
	if got := ClassifyArchetype(a, Context{}); got != ArchetypeWorkhorse {
		t.Fatalf("expected workhorse, got %s", got)
	}

	a = axes.Axes{Recovery: 50}
	if got := ClassifyArchetype(a, Context{}); got != ArchetypeSteadyState {
		t.Fatalf("expected steady_state, got %s", got)
	}
}

func TestArchetypeComposites(t *testing.T) {
	if got := ClassifyArchetype(axes.Axes{Metabolic: 85, Neural: 85, Recovery: 50}, Context{}); got != ArchetypeRedline {
		t.Fatalf("expected redline, got %s", got)
	}
	if got := ClassifyArchetype(axes.Axes{Recovery: 80}, Context{}); got != ArchetypeCoiledSpring {
		t.Fatalf("expected coiled_spring, got %s", got)
	}
	if got := ClassifyArchetype(axes.Axes{Recovery: 20, Mechanical: 40}, Context{}); got != ArchetypeGlass {
		t.Fatalf("expected glass, got %s", got)
	}
}

func TestDirectiveTableTotal(t *testing.T) {
	for _, s := range States {
		d := DeriveDirective(s, ArchetypeSteadyState)
		if d.Category == "" || d.Stimulus == "" {
			t.Fatalf("state %s produced incomplete directive %+v", s, d)
		}
	}
}

func TestDirectiveArchetypeAdjustments(t *testing.T) {
	d := DeriveDirective(StateBuildingCapacity, ArchetypeRehab)
	if !d.Constraints.LowImpact {
		t.Fatal("rehab lens must force low impact")
	}
	if d.Stimulus == StimulusOverload {
		t.Fatal("rehab lens must not prescribe overload")
	}

	d = DeriveDirective(StateReadyForLoad, ArchetypeNomad)
	if len(d.Constraints.Equipment) != 1 || d.Constraints.Equipment[0] != "bodyweight" {
		t.Fatalf("nomad lens must constrain equipment to bodyweight, got %v", d.Constraints.Equipment)
	}

	d = DeriveDirective(StateRecoveryMode, ArchetypeGlass)
	if d.Constraints.HeartRateCap != 120 {
		t.Fatalf("tighter existing cap must stand, got %d", d.Constraints.HeartRateCap)
	}
}

func TestDirectiveTableDoesNotAlias(t *testing.T) {
	d := DeriveDirective(StateRecoveryMode, ArchetypeNomad)
	d.Constraints.Equipment[0] = "mutated"
	if got := DeriveDirective(StateRecoveryMode, ArchetypeSteadyState); got.Constraints.Equipment[0] != "mat" {
		t.Fatalf("directive table was mutated: %v", got.Constraints.Equipment)
	}
}
