package scoring

import (
	"math"
	"time"
)

// FreshnessScorer converts a scheme's last-updated date into the
// freshness signal F in [0,1] using exponential half-life decay.
// The half-life is an injectable tuning knob, not a hidden constant.
type FreshnessScorer struct {
	halfLifeDays float64
	neutral      float64
}

// NewFreshnessScorer creates a FreshnessScorer. neutral is returned
// for schemes with no last-updated metadata: absence of metadata
// should not unfairly penalize older-but-valid programs.
func NewFreshnessScorer(halfLifeDays, neutral float64) *FreshnessScorer {
	return &FreshnessScorer{halfLifeDays: halfLifeDays, neutral: neutral}
}

// Score returns 0.5^(days/halfLife) for the elapsed days since
// lastUpdated, clamped to [0,1]. Dates in the future score 1.0.
func (s *FreshnessScorer) Score(lastUpdated *time.Time, now time.Time) float64 {
	if lastUpdated == nil || lastUpdated.IsZero() {
		return clamp01(s.neutral)
	}
	days := now.Sub(*lastUpdated).Hours() / 24
	if days <= 0 {
		return 1.0
	}
	return clamp01(math.Pow(0.5, days/s.halfLifeDays))
}
