package engine

import "github.com/danielpatrickdp/operator-state/internal/axes"

// Archetype lens thresholds.
const (
	lowSleepSeconds   = 6 * 3600
	highStepsFloor    = 12000
	dominanceFloor    = 50 // an axis must clear this to dominate
	dominanceMargin   = 10 // and lead the runner-up by this much
	redlineFloor      = 80
	glassRecoveryCap  = 30
	springLoadCap     = 30
	springRecoveryMin = 70
)

// #region classify-state

// ClassifyState runs the ordered decision list over the axes vector.
// First match wins; the order is the precedence contract.
func ClassifyState(a axes.Axes) State {
	maxLoad := a.MaxLoad()

	// 1. Deliberate regulation work, or collapsed recovery under real load.
	if a.Regulation > 80 || (a.Recovery < 30 && maxLoad > 50) {
		return StateRecoveryMode
	}
	// 2. Mechanically wrecked without the recovery to absorb it.
	if a.Mechanical > 85 && a.Recovery < 50 {
		return StatePhysicalStrain
	}
	// 3. Systemic strain: neural spike or any axis redlined, recovery lagging.
	if (a.Neural > 85 || maxLoad > 90) && a.Recovery < 60 {
		return StateHighStrain
	}
	// 4. Recovered and loading: adaptation window.
	if a.Recovery > 60 && (a.Metabolic > 60 || a.Mechanical > 60) {
		return StateBuildingCapacity
	}
	// 5. Fresh but idle.
	if maxLoad < 30 && a.Recovery > 70 {
		return StateNeedsStimulation
	}
	return StateReadyForLoad
}

// #endregion classify-state

// #region classify-archetype

// ClassifyArchetype picks the lens: context overrides first, then composite
// profiles, then axis dominance tie-broken in fixed order (metabolic,
// mechanical, neural, regulation).
func ClassifyArchetype(a axes.Axes, ctx Context) Archetype {
	// Context overrides.
	if ctx.SleepSeconds > 0 && ctx.SleepSeconds < lowSleepSeconds && ctx.Steps > highStepsFloor {
		return ArchetypeShortSleepGrinder
	}
	if ctx.RehabWorkout {
		return ArchetypeRehab
	}
	if ctx.LocationChanged {
		return ArchetypeNomad
	}

	// Composite profiles.
	over := 0
	for _, v := range []float64{a.Metabolic, a.Mechanical, a.Neural} {
		if v > redlineFloor {
			over++
		}
	}
	if over >= 2 {
		return ArchetypeRedline
	}
	if a.MaxLoad() < springLoadCap && a.Recovery > springRecoveryMin {
		return ArchetypeCoiledSpring
	}
	if a.Recovery < glassRecoveryCap {
		return ArchetypeGlass
	}

	// Axis dominance in fixed order.
	ordered := []struct {
		value float64
		lens  Archetype
	}{
		{a.Metabolic, ArchetypeFurnace},
		{a.Mechanical, ArchetypeWorkhorse},
		{a.Neural, ArchetypeLiveWire},
		{a.Regulation, ArchetypeMonk},
	}
	for i, cand := range ordered {
		if cand.value <= dominanceFloor {
			continue
		}
		dominant := true
		for j, other := range ordered {
			if j != i && cand.value < other.value+dominanceMargin {
				dominant = false
				break
			}
		}
		if dominant {
			return cand.lens
		}
	}

	return ArchetypeSteadyState
}

// #endregion classify-archetype
