package scoring

import (
	"github.com/schemesetu/matchengine/internal/profile"
	"github.com/schemesetu/matchengine/internal/rules"
)

// BucketSummary counts verdicts inside one rule bucket. Malformed
// rules appear in the counts and the clause list but not in Ratio.
type BucketSummary struct {
	Total      int     `json:"total"`
	Matched    int     `json:"matched"`
	Mismatched int     `json:"mismatched"`
	Unknown    int     `json:"unknown"`
	Malformed  int     `json:"malformed"`
	Ratio      float64 `json:"ratio"`
}

// Breakdown is the human-readable evaluation trail for one scheme:
// every rule in original order, partitioned required/optional, with
// per-bucket verdict counts. It is a pure computed value, safe to
// serialize for audit.
type Breakdown struct {
	Required        []rules.ScoredRule `json:"required"`
	Optional        []rules.ScoredRule `json:"optional"`
	RequiredSummary BucketSummary      `json:"required_summary"`
	OptionalSummary BucketSummary      `json:"optional_summary"`
}

// EligibilityScorer aggregates a scheme's rule lists into the single
// rule-match score R plus a breakdown.
type EligibilityScorer struct {
	eval    *rules.Evaluator
	weights RuleWeights
}

// NewEligibilityScorer creates an EligibilityScorer.
func NewEligibilityScorer(eval *rules.Evaluator, weights RuleWeights) *EligibilityScorer {
	return &EligibilityScorer{eval: eval, weights: weights}
}

// Score evaluates every rule independently and blends the bucket
// ratios into R in [0,1].
//
// A failed required rule down-weights the scheme instead of excluding
// it: near-miss schemes must stay visible with their mismatches on
// display. Bucket weights are renormalized over the buckets that
// actually contain well-formed rules, so a scheme with only required
// rules scores exactly its required ratio. A scheme with no rules at
// all gets the stated default R = w_req*1.0 + w_opt*neutral.
func (s *EligibilityScorer) Score(elig rules.EligibilityStructured, p *profile.Profile) (float64, Breakdown) {
	neutral := s.eval.Neutral()

	reqClauses, reqSummary := s.scoreBucket(elig.Required, rules.ScopeRequired, p, 1.0)
	optClauses, optSummary := s.scoreBucket(elig.Optional, rules.ScopeOptional, p, neutral)

	bd := Breakdown{
		Required:        reqClauses,
		Optional:        optClauses,
		RequiredSummary: reqSummary,
		OptionalSummary: optSummary,
	}

	reqValid := reqSummary.Total - reqSummary.Malformed
	optValid := optSummary.Total - optSummary.Malformed

	var r float64
	switch {
	case reqValid == 0 && optValid == 0:
		r = s.weights.Required*1.0 + s.weights.Optional*neutral
	case optValid == 0:
		r = reqSummary.Ratio
	case reqValid == 0:
		r = optSummary.Ratio
	default:
		r = s.weights.Required*reqSummary.Ratio + s.weights.Optional*optSummary.Ratio
	}
	return clamp01(r), bd
}

// scoreBucket evaluates one rule list, preserving order. emptyRatio is
// the ratio reported when the bucket has no well-formed rules.
func (s *EligibilityScorer) scoreBucket(bucket []rules.Rule, scope string, p *profile.Profile, emptyRatio float64) ([]rules.ScoredRule, BucketSummary) {
	clauses := make([]rules.ScoredRule, 0, len(bucket))
	summary := BucketSummary{}

	var sum float64
	var valid int
	for _, rule := range bucket {
		sr := s.eval.Evaluate(rule, p)
		sr.Scope = scope
		clauses = append(clauses, sr)

		summary.Total++
		if sr.Malformed {
			summary.Malformed++
			continue
		}
		switch sr.Verdict {
		case rules.VerdictMatch:
			summary.Matched++
		case rules.VerdictMismatch:
			summary.Mismatched++
		default:
			summary.Unknown++
		}
		sum += sr.Contribution
		valid++
	}

	if valid == 0 {
		summary.Ratio = emptyRatio
	} else {
		summary.Ratio = sum / float64(valid)
	}
	return clauses, summary
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
