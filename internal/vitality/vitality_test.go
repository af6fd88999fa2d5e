package vitality

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/operator-state/internal/baseline"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

func fullBaselines(n int) baseline.Baselines {
	return baseline.Baselines{
		HRV:       baseline.Metric{Mean: 50, StdDev: 5, SampleCount: n},
		RestingHR: baseline.Metric{Mean: 60, StdDev: 5, SampleCount: n},
		Sleep:     baseline.Metric{Mean: 28800, StdDev: 3600, SampleCount: n},
	}
}

func measuredInputs() Inputs {
	return Inputs{
		HRV:              50,
		RestingHeartRate: 60,
		SleepSeconds:     28800,
		SleepSource:      wearable.SleepMeasured,
	}
}

func TestUnavailableBelowBaselineFloor(t *testing.T) {
	for _, n := range []int{0, 1} {
		r := Score(measuredInputs(), fullBaselines(n))
		if r.Availability != Unavailable {
			t.Fatalf("n=%d: expected unavailable, got %s", n, r.Availability)
		}
		if r.ReasonCode != ReasonInsufficientBaseline {
			t.Fatalf("n=%d: expected insufficient_baseline, got %s", n, r.ReasonCode)
		}
		if r.Vitality != 0 {
			t.Fatalf("n=%d: unavailable result must carry no score, got %.2f", n, r.Vitality)
		}
	}
}

func TestNeutralReadingsScoreFifty(t *testing.T) {
	r := Score(measuredInputs(), fullBaselines(20))
	if r.Availability != Available {
		t.Fatalf("expected available, got %s (%s)", r.Availability, r.ReasonCode)
	}
	if math.Abs(r.Vitality-50) > 1 {
		t.Fatalf("expected vitality ≈50, got %.2f", r.Vitality)
	}
	if r.Confidence != ConfidenceHigh {
		t.Fatalf("expected high confidence at 20 samples, got %s", r.Confidence)
	}
	for _, z := range []float64{r.ZScores.Sleep, r.ZScores.HRV, r.ZScores.RHR} {
		if math.Abs(z) > 0.01 {
			t.Fatalf("expected all z ≈ 0, got %+v", r.ZScores)
		}
	}
}

func TestConfidenceBands(t *testing.T) {
	cases := []struct {
		samples int
		want    Confidence
	}{
		{2, ConfidenceLow},
		{3, ConfidenceMedium},
		{14, ConfidenceMedium},
		{15, ConfidenceHigh},
		{21, ConfidenceHigh},
		{30, ConfidenceHigh},
	}
	for _, c := range cases {
		r := Score(measuredInputs(), fullBaselines(c.samples))
		if r.Confidence != c.want {
			t.Fatalf("samples=%d: confidence %s, want %s", c.samples, r.Confidence, c.want)
		}
	}
	if r := Score(measuredInputs(), fullBaselines(21)); r.IsEstimated {
		t.Fatal("fully measured inputs should not be flagged estimated")
	}
}

func TestMissingHRVForcesLowConfidence(t *testing.T) {
	in := measuredInputs()
	in.HRV = 0
	r := Score(in, fullBaselines(30))
	if r.Availability != Available {
		t.Fatalf("expected available, got %s", r.Availability)
	}
	if r.Confidence != ConfidenceLow {
		t.Fatalf("missing hrv must force low confidence, got %s", r.Confidence)
	}
	// 0.95 * (0.6*50 + 0.4*50) = 47.5
	if math.Abs(r.Vitality-47.5) > 0.01 {
		t.Fatalf("expected discounted composite 47.5, got %.2f", r.Vitality)
	}
}

func TestMissingRHRCapsConfidenceMedium(t *testing.T) {
	in := measuredInputs()
	in.RestingHeartRate = 0
	r := Score(in, fullBaselines(30))
	if r.Confidence != ConfidenceMedium {
		t.Fatalf("missing rhr must cap confidence at medium, got %s", r.Confidence)
	}
	if !r.IsEstimated {
		t.Fatal("missing rhr should flag the result estimated")
	}
}

func TestNoHRVAndNoRHRIsInsufficientData(t *testing.T) {
	in := measuredInputs()
	in.HRV = 0
	in.RestingHeartRate = 0
	r := Score(in, fullBaselines(30))
	if r.Availability != Unavailable {
		t.Fatalf("expected unavailable, got %s", r.Availability)
	}
	if r.ReasonCode != ReasonInsufficientData {
		t.Fatalf("expected insufficient_data, got %s", r.ReasonCode)
	}
}

func TestSleepFallbackChain(t *testing.T) {
	b := fullBaselines(20)

	in := measuredInputs()
	in.SleepSeconds = 0
	in.SleepSource = wearable.SleepNone
	in.Sleep7DayMean = 27000

	r := Score(in, b)
	if r.SleepUsed != wearable.SleepBaseline {
		t.Fatalf("expected 7-day baseline substitution, got %s", r.SleepUsed)
	}
	if !r.IsEstimated {
		t.Fatal("fallback sleep should flag the result estimated")
	}

	in.Sleep7DayMean = 0
	r = Score(in, b)
	if r.SleepUsed != wearable.SleepDefault {
		t.Fatalf("expected 6h default substitution, got %s", r.SleepUsed)
	}
	// 21600s against mean 28800 σ 3600 → z = -2 → sub-score 1
	if math.Abs(r.ZScores.Sleep-(-2)) > 0.01 {
		t.Fatalf("expected sleep z -2, got %.2f", r.ZScores.Sleep)
	}
}

func TestSleepBaselineBelowFloorStillAvailable(t *testing.T) {
	b := fullBaselines(20)
	b.Sleep.SampleCount = 1 // unusable on its own, but not a hard stop

	r := Score(measuredInputs(), b)
	if r.Availability != Available {
		t.Fatalf("sleep baseline below floor must not gate availability, got %s (%s)",
			r.Availability, r.ReasonCode)
	}
	if r.SubScores.Sleep != 50 {
		t.Fatalf("expected neutral sleep sub-score, got %.2f", r.SubScores.Sleep)
	}
	if !r.IsEstimated {
		t.Fatal("neutral sleep sub-score should flag the result estimated")
	}
}

func TestZScoreToScoreShape(t *testing.T) {
	if got := zScoreToScore(0); got != 50 {
		t.Fatalf("zScoreToScore(0) = %.2f, want 50", got)
	}
	prev := -1.0
	for z := -4.0; z <= 4.0; z += 0.25 {
		s := zScoreToScore(z)
		if s < 1 || s > 100 {
			t.Fatalf("zScoreToScore(%.2f) = %.2f out of bounds", z, s)
		}
		if s < prev {
			t.Fatalf("zScoreToScore not monotonic at z=%.2f", z)
		}
		prev = s
	}
}

func TestRHRInversion(t *testing.T) {
	in := measuredInputs()
	in.RestingHeartRate = 70 // 2σ above baseline mean of 60
	r := Score(in, fullBaselines(20))
	if math.Abs(r.ZScores.RHR-(-2)) > 0.01 {
		t.Fatalf("expected inverted rhr z -2, got %.2f", r.ZScores.RHR)
	}
	if r.SubScores.RHR != 1 {
		t.Fatalf("expected floor sub-score 1, got %.2f", r.SubScores.RHR)
	}
}

func TestEvidenceRecordedForDeviations(t *testing.T) {
	in := measuredInputs()
	in.HRV = 40 // 2σ below baseline
	r := Score(in, fullBaselines(20))
	found := false
	for _, e := range r.Evidence {
		if e == "hrv 2.0σ below baseline" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected hrv deviation evidence, got %v", r.Evidence)
	}
}
