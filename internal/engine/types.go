package engine

// #region state

// State is one of the six canonical operator states.
type State string

const (
	StateRecoveryMode     State = "recovery_mode"
	StatePhysicalStrain   State = "physical_strain"
	StateHighStrain       State = "high_strain"
	StateBuildingCapacity State = "building_capacity"
	StateNeedsStimulation State = "needs_stimulation"
	StateReadyForLoad     State = "ready_for_load"
)

// States lists the canonical states in classifier precedence order.
var States = []State{
	StateRecoveryMode,
	StatePhysicalStrain,
	StateHighStrain,
	StateBuildingCapacity,
	StateNeedsStimulation,
	StateReadyForLoad,
}

// #endregion state

// #region archetype

// Archetype is a lens over the state: it does not change the state verdict,
// only how the directive is framed and constrained.
type Archetype string

const (
	// Context overrides, checked first in this order.
	ArchetypeShortSleepGrinder Archetype = "short_sleep_grinder" // low sleep + high steps
	ArchetypeRehab             Archetype = "rehab"               // rehab-tagged workout today
	ArchetypeNomad             Archetype = "nomad"               // location changed

	// Composite profiles.
	ArchetypeRedline      Archetype = "redline"       // two or more load axes past 80
	ArchetypeCoiledSpring Archetype = "coiled_spring" // all load low, recovery high
	ArchetypeGlass        Archetype = "glass"         // recovery collapsed

	// Axis dominance, tie-broken in fixed order.
	ArchetypeFurnace   Archetype = "furnace"   // metabolic dominant
	ArchetypeWorkhorse Archetype = "workhorse" // mechanical dominant
	ArchetypeLiveWire  Archetype = "live_wire" // neural dominant
	ArchetypeMonk      Archetype = "monk"      // regulation dominant

	ArchetypeSteadyState Archetype = "steady_state"
)

// Context carries the light situational inputs the archetype lens reads.
type Context struct {
	SleepSeconds    float64
	Steps           float64
	RehabWorkout    bool
	LocationChanged bool
}

// #endregion archetype

// #region directive

// Category is the day's prescribed training category.
type Category string

const (
	CategoryConditioning Category = "conditioning"
	CategoryStrength     Category = "strength"
	CategoryRegulation   Category = "regulation"
	CategoryMixed        Category = "mixed"
	CategorySkill        Category = "skill"
)

// Stimulus is the intended dose-response of the session.
type Stimulus string

const (
	StimulusOverload Stimulus = "overload"
	StimulusFlush    Stimulus = "flush"
	StimulusMaintain Stimulus = "maintain"
	StimulusDeload   Stimulus = "deload"
	StimulusPrime    Stimulus = "prime"
)

// Constraints bound how the directive may be executed.
type Constraints struct {
	LowImpact    bool     `json:"low_impact"`
	HeartRateCap int      `json:"heart_rate_cap"` // bpm, 0 = uncapped
	Equipment    []string `json:"equipment"`
}

// Directive is the actionable output of the state engine.
type Directive struct {
	Category    Category    `json:"category"`
	Stimulus    Stimulus    `json:"stimulus"`
	Constraints Constraints `json:"constraints"`
}

// #endregion directive
