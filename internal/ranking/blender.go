package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/schemesetu/matchengine/internal/scoring"
)

// BlendWeights defines the mix of the three ranking signals. They must
// be non-negative and sum to 1.0 (±0.001 tolerance); they are external
// tuning knobs, not derived values.
type BlendWeights struct {
	Rules     float64
	Semantic  float64
	Freshness float64
}

// DefaultBlendWeights returns the default signal mix.
func DefaultBlendWeights() BlendWeights {
	return BlendWeights{Rules: 0.5, Semantic: 0.3, Freshness: 0.2}
}

// Validate checks that blend weights are non-negative and sum to 1.0.
func (w BlendWeights) Validate() error {
	for _, v := range []float64{w.Rules, w.Semantic, w.Freshness} {
		if v < 0 {
			return fmt.Errorf("negative blend weight: %f", v)
		}
	}
	if sum := w.Rules + w.Semantic + w.Freshness; math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("blend weights sum to %.4f, must sum to 1.0", sum)
	}
	return nil
}

// SchemeResult is the final per-scheme output: the three signals, the
// blended score, and the full rule breakdown so a presentation layer
// can render verdicts and provenance without re-deriving them.
// Never mutated after construction.
type SchemeResult struct {
	SchemeID     string            `json:"scheme_id"`
	SchemeName   string            `json:"scheme_name"`
	R            float64           `json:"R"`
	S            float64           `json:"S"`
	F            float64           `json:"F"`
	FinalScore   float64           `json:"final_score"`
	PercentMatch int               `json:"percent_match"`
	Breakdown    scoring.Breakdown `json:"rule_breakdown"`
	Description  string            `json:"description,omitempty"`
	SourceURL    string            `json:"source_url,omitempty"`
	GenderBucket string            `json:"gender_bucket,omitempty"`
}

// Blend combines the rule score R, semantic score S, and freshness F
// into a final score and a percent match. S arrives already normalized
// to [0,1] and is not renormalized here.
func (w BlendWeights) Blend(r, s, f float64) (float64, int) {
	final := clamp01(w.Rules*r + w.Semantic*s + w.Freshness*f)
	return final, int(math.Round(final * 100))
}

// sortResults orders by final score descending, breaking ties by
// ascending scheme ID. Identical inputs must always yield identical
// ordering.
func sortResults(results []SchemeResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].SchemeID < results[j].SchemeID
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
