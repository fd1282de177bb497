package scoring

import (
	"fmt"
	"math"
)

// RuleWeights defines the relative importance of required versus
// optional rule buckets inside R. They must sum to 1.0 (±0.001
// tolerance).
type RuleWeights struct {
	Required float64
	Optional float64
}

// DefaultRuleWeights returns the default bucket weights. Required
// criteria dominate because failing them materially means
// ineligibility, even though low-scoring schemes are still surfaced.
func DefaultRuleWeights() RuleWeights {
	return RuleWeights{Required: 0.75, Optional: 0.25}
}

// Validate checks that bucket weights are non-negative and sum to 1.0.
func (w RuleWeights) Validate() error {
	if w.Required < 0 || w.Optional < 0 {
		return fmt.Errorf("negative rule weight: required=%f optional=%f", w.Required, w.Optional)
	}
	if sum := w.Required + w.Optional; math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("rule weights sum to %.4f, must sum to 1.0", sum)
	}
	return nil
}
