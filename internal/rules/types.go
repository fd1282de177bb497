package rules

// Operators accepted on extracted rules. "=" survives as an alias for
// "==" because older extraction runs emitted it.
const (
	OpEqual        = "=="
	OpEqualLegacy  = "="
	OpNotEqual     = "!="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpLess         = "<"
	OpLessEqual    = "<="
	OpIn           = "in"
	OpNotIn        = "not in"
)

// Verdict is the tri-state outcome of evaluating one rule against one
// profile. Unknown means "no information", never failure.
type Verdict string

const (
	VerdictMatch    Verdict = "match"
	VerdictMismatch Verdict = "mismatch"
	VerdictUnknown  Verdict = "unknown"
)

// Rule is one structured eligibility predicate as extracted from a
// scheme document. Field is free text and not guaranteed canonical;
// Value is a scalar, or a list when Operator is "in"/"not in".
type Rule struct {
	Field      string      `json:"field"`
	Operator   string      `json:"operator"`
	Value      interface{} `json:"value"`
	Confidence *float64    `json:"confidence,omitempty"`
	Source     string      `json:"source,omitempty"`
	TextSpan   string      `json:"text_span,omitempty"`
}

// EligibilityStructured holds a scheme's extracted rule lists.
// Required rules gate true eligibility; optional rules are bonus
// signals.
type EligibilityStructured struct {
	Required   []Rule `json:"required"`
	Optional   []Rule `json:"optional"`
	Notes      string `json:"notes,omitempty"`
	SourceText string `json:"source_text,omitempty"`
}

// Scope tags on a scored rule, preserved in the breakdown so a
// consumer can render required and optional criteria separately.
const (
	ScopeRequired = "required"
	ScopeOptional = "optional"
)

// ScoredRule is the evaluator output for a single rule. Malformed
// rules (missing field, unsupported operator) are carried in the
// breakdown for display but excluded from aggregation.
type ScoredRule struct {
	Rule           Rule        `json:"rule"`
	Scope          string      `json:"scope,omitempty"`
	CanonicalField string      `json:"canonical_field,omitempty"`
	ProfileValue   interface{} `json:"profile_value,omitempty"`
	Verdict        Verdict     `json:"verdict"`
	Contribution   float64     `json:"contribution"`
	Malformed      bool        `json:"malformed,omitempty"`
	Reason         string      `json:"reason"`
}
