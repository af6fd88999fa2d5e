package vitality

import "github.com/danielpatrickdp/operator-state/internal/wearable"

// #region availability

// Availability says whether a score could be produced at all.
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
)

// #endregion availability

// #region confidence

// Confidence grades how much baseline evidence backs the score.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Sample-count band endpoints for the confidence grades. The floor of 2 is
// also the availability gate; 21 is the point at which the trailing window
// saturates.
const (
	SamplesLow    = 2
	SamplesMedium = 14
	SamplesHigh   = 21
)

// #endregion confidence

// #region reason

// ReasonCode explains an unavailable result.
type ReasonCode string

const (
	ReasonNone                 ReasonCode = ""
	ReasonInsufficientBaseline ReasonCode = "insufficient_baseline"
	ReasonInsufficientData     ReasonCode = "insufficient_data"
)

// #endregion reason

// #region inputs

// Inputs is today's raw readings plus the 7-day sleep mean for the fallback
// chain. Zero means absent.
type Inputs struct {
	HRV              float64
	RestingHeartRate float64
	SleepSeconds     float64
	SleepSource      wearable.SleepSource
	Sleep7DayMean    float64
}

// #endregion inputs

// #region result

// SubScores are the per-metric 1-100 components.
type SubScores struct {
	Sleep float64 `json:"sleep"`
	HRV   float64 `json:"hrv"`
	RHR   float64 `json:"rhr"`
}

// ZScores are the per-metric baseline deviations actually used.
type ZScores struct {
	Sleep float64 `json:"sleep"`
	HRV   float64 `json:"hrv"`
	RHR   float64 `json:"rhr"`
}

// Result is the full scorer output. Evidence is a contract output consumed
// downstream by the content generator, not a log.
type Result struct {
	Availability Availability        `json:"availability"`
	Vitality     float64             `json:"vitality"` // 1-100, 0 when unavailable
	SubScores    SubScores           `json:"sub_scores"`
	ZScores      ZScores             `json:"z_scores"`
	Confidence   Confidence          `json:"confidence"`
	IsEstimated  bool                `json:"is_estimated"`
	ReasonCode   ReasonCode          `json:"reason_code"`
	Evidence     []string            `json:"evidence"`
	SleepUsed    wearable.SleepSource `json:"sleep_used"` // source after the fallback chain
}

// #endregion result
