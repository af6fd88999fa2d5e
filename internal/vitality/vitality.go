package vitality

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/operator-state/internal/baseline"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// DefaultSleepSeconds is the fixed fallback when neither a measurement nor a
// 7-day baseline mean exists.
const DefaultSleepSeconds = 6 * 3600

// #region score

// Score computes today's confidence-gated vitality from raw readings and the
// stored baselines. Missing data is modeled as values and reason codes; the
// two UNAVAILABLE branches are the only early exits.
func Score(in Inputs, b baseline.Baselines) Result {
	// Availability floor: the minimum sample count across contributing
	// metrics must reach 2. HRV and RHR always contribute; sleep contributes
	// only when its own baseline is usable, otherwise the fallback chain
	// covers it and it drops out of the floor.
	minSamples := minInt(b.HRV.SampleCount, b.RestingHR.SampleCount)
	if b.Sleep.SampleCount >= SamplesLow {
		minSamples = minInt(minSamples, b.Sleep.SampleCount)
	}
	if minSamples < SamplesLow {
		return Result{
			Availability: Unavailable,
			ReasonCode:   ReasonInsufficientBaseline,
			Confidence:   ConfidenceLow,
		}
	}

	confidence := ceilingFor(minSamples)
	var evidence []string
	estimated := false

	// Sleep fallback chain: measured -> 7-day baseline mean -> fixed default.
	sleepVal := in.SleepSeconds
	sleepUsed := in.SleepSource
	switch {
	case in.SleepSeconds > 0 && in.SleepSource != wearable.SleepNone:
		// keep the measurement
	case in.Sleep7DayMean > 0:
		sleepVal = in.Sleep7DayMean
		sleepUsed = wearable.SleepBaseline
		estimated = true
		evidence = append(evidence, "sleep missing, substituted 7-day baseline average")
	default:
		sleepVal = DefaultSleepSeconds
		sleepUsed = wearable.SleepDefault
		estimated = true
		evidence = append(evidence, "sleep missing, substituted 6h default")
	}

	var z ZScores
	var sub SubScores

	// Sleep z only against a real baseline; otherwise neutral.
	if b.Sleep.Usable() {
		z.Sleep = (sleepVal - b.Sleep.Mean) / b.Sleep.StdDev
		sub.Sleep = zScoreToScore(z.Sleep)
	} else {
		sub.Sleep = 50
		estimated = true
		evidence = append(evidence, "sleep baseline unusable, neutral sub-score")
	}

	hrvPresent := in.HRV > 0
	if hrvPresent {
		if b.HRV.Usable() {
			z.HRV = (in.HRV - b.HRV.Mean) / b.HRV.StdDev
		}
		sub.HRV = zScoreToScore(z.HRV)
	} else {
		// HRV is the primary signal: without it the score is an estimate at
		// best, regardless of the other metrics.
		confidence = ConfidenceLow
		estimated = true
		evidence = append(evidence, "hrv missing, confidence capped at low")
	}

	rhrPresent := in.RestingHeartRate > 0
	if rhrPresent {
		if b.RestingHR.Usable() {
			// Inverted: a resting heart rate below baseline is better.
			z.RHR = (b.RestingHR.Mean - in.RestingHeartRate) / b.RestingHR.StdDev
		}
		sub.RHR = zScoreToScore(z.RHR)
	} else {
		sub.RHR = 50
		estimated = true
		if confidence == ConfidenceHigh {
			confidence = ConfidenceMedium
		}
		evidence = append(evidence, "resting heart rate missing, confidence capped at medium")
	}

	var composite float64
	switch {
	case hrvPresent:
		composite = 0.4*sub.Sleep + 0.4*sub.HRV + 0.2*sub.RHR
	case rhrPresent:
		composite = 0.95 * (0.6*sub.Sleep + 0.4*sub.RHR)
	default:
		return Result{
			Availability: Unavailable,
			ReasonCode:   ReasonInsufficientData,
			Confidence:   ConfidenceLow,
			Evidence:     evidence,
		}
	}

	evidence = append(evidence, deviationEvidence("sleep", z.Sleep)...)
	if hrvPresent {
		evidence = append(evidence, deviationEvidence("hrv", z.HRV)...)
	}
	if rhrPresent {
		// The RHR z is inverted (lower is better); flip it back so the
		// evidence string reads in measurement terms.
		evidence = append(evidence, deviationEvidence("resting heart rate", -z.RHR)...)
	}

	return Result{
		Availability: Available,
		Vitality:     clamp(composite, 1, 100),
		SubScores:    sub,
		ZScores:      z,
		Confidence:   confidence,
		IsEstimated:  estimated,
		ReasonCode:   ReasonNone,
		Evidence:     evidence,
		SleepUsed:    sleepUsed,
	}
}

// #endregion score

// #region z-to-score

// zScoreToScore maps a baseline deviation onto the 1-100 band. Monotonic
// non-decreasing, zScoreToScore(0) = 50.
func zScoreToScore(z float64) float64 {
	return clamp((z+2)*25, 1, 100)
}

// #endregion z-to-score

// #region helpers

// ceilingFor grades the baseline depth. The sample constants are band
// endpoints: at the floor of 2 the score is low-confidence, through 14 it is
// medium, and beyond that high (the window saturates at 21 days).
func ceilingFor(minSamples int) Confidence {
	switch {
	case minSamples > SamplesMedium:
		return ConfidenceHigh
	case minSamples > SamplesLow:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// deviationEvidence records deviations beyond half a standard deviation.
func deviationEvidence(name string, z float64) []string {
	if math.Abs(z) <= 0.5 {
		return nil
	}
	direction := "above"
	if z < 0 {
		direction = "below"
	}
	return []string{fmt.Sprintf("%s %.1fσ %s baseline", name, math.Abs(z), direction)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// #endregion helpers
