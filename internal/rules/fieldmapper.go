package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// fieldOther is the sink for rule fields the offline mapping builder
// could not place. Rules on such fields evaluate as unknown.
const fieldOther = "other"

// baseMapping mirrors the synonym table the offline mapping builder
// seeds from. Keys are pre-normalized.
var baseMapping = map[string]string{
	"age":      "age",
	"state":    "state",
	"district": "district",
	"pincode":  "pincode",
	"gender":   "gender",
	"category": "category",

	"occupation":      "occupation",
	"education":       "education_level",
	"education_level": "education_level",
	"qualification":   "education_level",

	"farmer":      "farmer",
	"land":        "land_area",
	"land_area":   "land_area",
	"landholding": "land_area",

	"disability":    "disability",
	"business":      "business_type",
	"business_type": "business_type",

	"income":           "income_annual",
	"income_annual":    "income_annual",
	"annual_income":    "income_annual",
	"yearly_income":    "income_annual",
	"family_income":    "income_annual",
	"household_income": "income_annual",
	"monthly_income":   "monthly_income",
	"income_per_month": "monthly_income",

	"state_of_residence": "state",
	"residing_state":     "state",
	"residence_state":    "state",
	"location_state":     "state",

	"caste":           "category",
	"social_category": "category",

	"woman":  "gender",
	"women":  "gender",
	"female": "gender",

	"other": fieldOther,
}

// FieldMapper resolves raw, free-text rule field names to canonical
// profile attribute names. The table is loaded once and read-only
// afterwards.
type FieldMapper struct {
	table map[string]string
}

// NewFieldMapper builds a mapper from the built-in synonym table
// overlaid with extra entries (typically the persisted mapping
// artifact). Extra keys win on collision.
func NewFieldMapper(extra map[string]string) *FieldMapper {
	table := make(map[string]string, len(baseMapping)+len(extra))
	for k, v := range baseMapping {
		table[k] = v
	}
	for k, v := range extra {
		table[NormalizeFieldKey(k)] = strings.TrimSpace(v)
	}
	return &FieldMapper{table: table}
}

// LoadMappingFile reads a persisted field-mapping artifact
// (raw field name -> canonical attribute) and returns a mapper built
// on top of the defaults. An empty path yields the defaults alone.
func LoadMappingFile(path string) (*FieldMapper, error) {
	if path == "" {
		return NewFieldMapper(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field mapping: %w", err)
	}
	var extra map[string]string
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse field mapping: %w", err)
	}
	return NewFieldMapper(extra), nil
}

// Resolve maps a raw rule field to a canonical profile attribute.
// Misses and fields mapped to "other" both return ok=false; this is an
// expected outcome for noisy extraction, not an error.
func (m *FieldMapper) Resolve(raw string) (string, bool) {
	key := NormalizeFieldKey(raw)
	if key == "" {
		return "", false
	}
	mapped, ok := m.table[key]
	if !ok || mapped == fieldOther || mapped == "" {
		return "", false
	}
	return mapped, true
}

// Size reports the number of entries in the mapping table.
func (m *FieldMapper) Size() int {
	return len(m.table)
}

// NormalizeFieldKey lowercases a raw field name and collapses runs of
// whitespace, underscores, and hyphens to single underscores, so
// "Monthly Income" and "monthly_income" look up the same entry.
func NormalizeFieldKey(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return ""
	}
	parts := strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	})
	return strings.Join(parts, "_")
}
