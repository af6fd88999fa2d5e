// Package alignment judges each day's actual load against its directive and
// folds the verdicts into a streak and rank.
package alignment

import (
	"github.com/danielpatrickdp/operator-state/internal/axes"
	"github.com/danielpatrickdp/operator-state/internal/engine"
)

// #region verdict

// Verdict is the actual-vs-directive outcome for one day.
type Verdict string

const (
	VerdictAligned   Verdict = "aligned"
	VerdictOvershot  Verdict = "overshot"
	VerdictUndershot Verdict = "undershot"
	VerdictUnknown   Verdict = "unknown"
)

// #endregion verdict

// #region rank

// Rank is the progression tier derived from the streak.
type Rank string

const (
	RankRecruit     Rank = "recruit"
	RankConsistent  Rank = "consistent"
	RankDisciplined Rank = "disciplined"
	RankElite       Rank = "elite"
)

// Streak floors for each rank.
const (
	streakConsistent  = 3
	streakDisciplined = 7
	streakElite       = 14
)

// #endregion rank

// Load bands a stimulus prescribes.
const (
	quietLoadCeiling  = 40 // flush/deload sessions must stay under this
	activeLoadFloor   = 50 // overload/prime sessions must reach this
	maintainLoadFloor = 25
	maintainLoadCeil  = 75
)

// #region judge

// Judge compares the day's realized load against what the directive asked
// for. A missing axes vector reads unknown, never an error.
func Judge(d engine.Directive, a *axes.Axes) Verdict {
	if a == nil {
		return VerdictUnknown
	}
	load := a.MaxLoad()

	switch d.Stimulus {
	case engine.StimulusFlush, engine.StimulusDeload:
		if load <= quietLoadCeiling {
			return VerdictAligned
		}
		return VerdictOvershot
	case engine.StimulusOverload, engine.StimulusPrime:
		if load >= activeLoadFloor {
			return VerdictAligned
		}
		return VerdictUndershot
	case engine.StimulusMaintain:
		switch {
		case load > maintainLoadCeil:
			return VerdictOvershot
		case load < maintainLoadFloor:
			return VerdictUndershot
		default:
			return VerdictAligned
		}
	default:
		return VerdictUnknown
	}
}

// #endregion judge

// #region streak

// FoldStreak counts consecutive aligned days. verdicts are ordered most
// recent first; anything other than aligned ends the streak.
func FoldStreak(verdicts []Verdict) int {
	streak := 0
	for _, v := range verdicts {
		if v != VerdictAligned {
			break
		}
		streak++
	}
	return streak
}

// RankFor maps a streak onto its progression tier.
func RankFor(streak int) Rank {
	switch {
	case streak >= streakElite:
		return RankElite
	case streak >= streakDisciplined:
		return RankDisciplined
	case streak >= streakConsistent:
		return RankConsistent
	default:
		return RankRecruit
	}
}

// #endregion streak
