package catalog

import (
	"regexp"
	"strings"

	"github.com/schemesetu/matchengine/internal/rules"
)

// Gender buckets a scheme can be tagged with. An empty bucket means
// the scheme is not gender-restricted as far as detection can tell.
const (
	BucketFemale = "female"
	BucketMale   = "male"
)

var femaleTitleRe = regexp.MustCompile(`(?i)\b(mahila|mahilas|women|women's|ladki|beti|samridhi|majhi\s+ladki|mahila\s+kisan)\b`)
var maleTitleRe = regexp.MustCompile(`(?i)\b(shetkari|shetkari\s+purush|male|man)\b`)

// DetectGenderBucket tags a scheme with its target gender, if any.
// A required gender clause is the strongest signal; title keywords are
// heuristic; eligibility prose is the weakest fallback. Returns the
// bucket, a confidence in [0,1], and the signal source.
func DetectGenderBucket(elig rules.EligibilityStructured, title string) (string, float64, string) {
	if bucket := genderFromRequiredClauses(elig.Required); bucket != "" {
		return bucket, 0.95, "required_clause"
	}
	if bucket := genderFromText(title); bucket != "" {
		return bucket, 0.85, "title_heuristic"
	}
	if bucket := genderFromText(elig.SourceText); bucket != "" {
		return bucket, 0.80, "raw_text_heuristic"
	}
	return "", 0, "none"
}

func genderFromRequiredClauses(required []rules.Rule) string {
	for _, r := range required {
		if !strings.EqualFold(strings.TrimSpace(r.Field), "gender") {
			continue
		}
		val, ok := r.Value.(string)
		if !ok || val == "" {
			continue
		}
		v := strings.ToLower(strings.TrimSpace(val))
		switch {
		case strings.HasPrefix(v, "f") || strings.Contains(v, "woman"):
			return BucketFemale
		case strings.HasPrefix(v, "m") || strings.Contains(v, "man"):
			return BucketMale
		}
	}
	return ""
}

func genderFromText(text string) string {
	if text == "" {
		return ""
	}
	if femaleTitleRe.MatchString(text) {
		return BucketFemale
	}
	if maleTitleRe.MatchString(text) {
		return BucketMale
	}
	return ""
}
