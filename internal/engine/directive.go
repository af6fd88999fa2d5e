package engine

// #region directive-table

// directiveTable is the fixed state → directive mapping. Archetype
// adjustments are layered on afterwards; both are design constants.
var directiveTable = map[State]Directive{
	StateRecoveryMode: {
		Category: CategoryRegulation,
		Stimulus: StimulusFlush,
		Constraints: Constraints{
			LowImpact:    true,
			HeartRateCap: 120,
			Equipment:    []string{"mat", "foam_roller"},
		},
	},
	StatePhysicalStrain: {
		Category: CategoryRegulation,
		Stimulus: StimulusDeload,
		Constraints: Constraints{
			LowImpact:    true,
			HeartRateCap: 130,
			Equipment:    []string{"mat"},
		},
	},
	StateHighStrain: {
		Category: CategorySkill,
		Stimulus: StimulusDeload,
		Constraints: Constraints{
			HeartRateCap: 140,
		},
	},
	StateBuildingCapacity: {
		Category: CategoryStrength,
		Stimulus: StimulusOverload,
		Constraints: Constraints{
			Equipment: []string{"barbell", "dumbbells"},
		},
	},
	StateNeedsStimulation: {
		Category: CategoryConditioning,
		Stimulus: StimulusPrime,
		Constraints: Constraints{
			Equipment: []string{"bike", "rower"},
		},
	},
	StateReadyForLoad: {
		Category: CategoryMixed,
		Stimulus: StimulusMaintain,
	},
}

// #endregion directive-table

// #region derive

// DeriveDirective maps a classified state through the fixed table, then
// applies archetype constraint adjustments. Pure and total over States.
func DeriveDirective(state State, lens Archetype) Directive {
	d := directiveTable[state]
	// Copy the equipment slice so adjustments never alias the table.
	d.Constraints.Equipment = append([]string(nil), d.Constraints.Equipment...)

	switch lens {
	case ArchetypeRehab:
		d.Constraints.LowImpact = true
		if d.Stimulus == StimulusOverload {
			d.Stimulus = StimulusMaintain
		}
	case ArchetypeGlass:
		d.Constraints.LowImpact = true
		d.Constraints.HeartRateCap = capMin(d.Constraints.HeartRateCap, 140)
	case ArchetypeShortSleepGrinder:
		d.Constraints.HeartRateCap = capMin(d.Constraints.HeartRateCap, 150)
	case ArchetypeNomad:
		d.Constraints.Equipment = []string{"bodyweight"}
	}
	return d
}

// capMin tightens a heart-rate cap, treating zero as uncapped.
func capMin(current, cap int) int {
	if current == 0 || cap < current {
		return cap
	}
	return current
}

// #endregion derive
