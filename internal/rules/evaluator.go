package rules

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/schemesetu/matchengine/internal/profile"
)

// Evaluator scores individual rules against a profile. It is pure and
// stateless across calls: identical inputs always yield identical
// ScoredRules.
type Evaluator struct {
	mapper  *FieldMapper
	neutral float64
	logger  *slog.Logger
}

// NewEvaluator creates an Evaluator. neutral is the contribution
// assigned to unknown verdicts (0.5 unless configured otherwise).
func NewEvaluator(mapper *FieldMapper, neutral float64, logger *slog.Logger) *Evaluator {
	return &Evaluator{mapper: mapper, neutral: neutral, logger: logger}
}

// Neutral returns the configured unknown-verdict contribution.
func (e *Evaluator) Neutral() float64 {
	return e.neutral
}

// Evaluate applies one rule to one profile. Unresolvable fields,
// missing profile values, and uncoercible type mismatches all degrade
// to an unknown verdict with the neutral contribution; only
// structurally broken rules (no field, unsupported operator) come back
// malformed, and those are logged and excluded from aggregation by the
// caller.
func (e *Evaluator) Evaluate(rule Rule, p *profile.Profile) ScoredRule {
	sr := ScoredRule{Rule: rule}

	if strings.TrimSpace(rule.Field) == "" {
		sr.Malformed = true
		sr.Verdict = VerdictUnknown
		sr.Contribution = e.neutral
		sr.Reason = "missing_field"
		e.logger.Warn("malformed rule: missing field", "operator", rule.Operator)
		return sr
	}
	if !supportedOperator(rule.Operator) {
		sr.Malformed = true
		sr.Verdict = VerdictUnknown
		sr.Contribution = e.neutral
		sr.Reason = "unsupported_operator"
		e.logger.Warn("malformed rule: unsupported operator", "field", rule.Field, "operator", rule.Operator)
		return sr
	}

	canonical, ok := e.mapper.Resolve(rule.Field)
	if !ok {
		return e.unknown(sr, "field_unmapped")
	}
	sr.CanonicalField = canonical

	val, ok := p.Value(canonical)
	if !ok {
		return e.unknown(sr, "missing_profile_value")
	}
	sr.ProfileValue = val

	verdict, reason := applyOperator(rule.Operator, val, rule.Value)
	sr.Verdict = verdict
	sr.Reason = reason
	sr.Contribution = e.contribution(verdict, rule.Confidence)
	return sr
}

func (e *Evaluator) unknown(sr ScoredRule, reason string) ScoredRule {
	sr.Verdict = VerdictUnknown
	sr.Reason = reason
	sr.Contribution = e.contribution(VerdictUnknown, sr.Rule.Confidence)
	return sr
}

// contribution maps a verdict to its raw value and blends it toward
// neutral in proportion to (1 - confidence), so low-confidence
// extracted rules influence the score less. Absent confidence counts
// as full confidence.
func (e *Evaluator) contribution(v Verdict, confidence *float64) float64 {
	var raw float64
	switch v {
	case VerdictMatch:
		raw = 1.0
	case VerdictMismatch:
		raw = 0.0
	default:
		raw = e.neutral
	}

	conf := 1.0
	if confidence != nil {
		conf = clamp(*confidence, 0, 1)
	}
	return e.neutral + conf*(raw-e.neutral)
}

func supportedOperator(op string) bool {
	switch op {
	case OpEqual, OpEqualLegacy, OpNotEqual,
		OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
		OpIn, OpNotIn:
		return true
	}
	return false
}

// applyOperator compares a present profile value against the rule
// value. A comparison that cannot be made (non-numeric operand on a
// numeric operator, and so on) yields unknown, never a panic.
func applyOperator(op string, profileVal, ruleVal interface{}) (Verdict, string) {
	switch op {
	case OpEqual, OpEqualLegacy:
		return boolVerdict(looseEqual(profileVal, ruleVal)), "equality"
	case OpNotEqual:
		return boolVerdict(!looseEqual(profileVal, ruleVal)), "equality"
	case OpIn:
		return boolVerdict(member(profileVal, ruleVal)), "membership"
	case OpNotIn:
		return boolVerdict(!member(profileVal, ruleVal)), "membership"
	}

	left, lok := toNumber(profileVal)
	right, rok := toNumber(ruleVal)
	if !lok || !rok {
		return VerdictUnknown, "not_numeric"
	}
	switch op {
	case OpGreater:
		return boolVerdict(left > right), "numeric_compare"
	case OpGreaterEqual:
		return boolVerdict(left >= right), "numeric_compare"
	case OpLess:
		return boolVerdict(left < right), "numeric_compare"
	case OpLessEqual:
		return boolVerdict(left <= right), "numeric_compare"
	}
	return VerdictUnknown, "unsupported_operator"
}

func boolVerdict(matched bool) Verdict {
	if matched {
		return VerdictMatch
	}
	return VerdictMismatch
}

// member builds a set from the rule value (wrapping a scalar into a
// singleton) and tests loose membership.
func member(profileVal, ruleVal interface{}) bool {
	items, ok := ruleVal.([]interface{})
	if !ok {
		items = []interface{}{ruleVal}
	}
	for _, item := range items {
		if looseEqual(profileVal, item) {
			return true
		}
	}
	return false
}

// looseEqual compares numerically when both sides coerce to numbers,
// and case-insensitively on the stringified values otherwise. Booleans
// stringify to "true"/"false", so flag comparisons against extracted
// string values still work.
func looseEqual(a, b interface{}) bool {
	an, aok := toNumber(a)
	bn, bok := toNumber(b)
	if aok && bok {
		return an == bn
	}
	return strings.EqualFold(stringify(a), stringify(b))
}

// toNumber coerces numeric types and numeric-looking strings.
// Thousands separators are stripped, so "1,00,000" coerces.
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%v", v)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
