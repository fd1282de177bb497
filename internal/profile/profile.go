package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Gender values accepted on a profile. Anything else is passed through
// untouched; rule evaluation compares case-insensitively.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Profile is the validated requester profile handed in by the
// normalization stage. Every field is optional: empty strings and nil
// pointers mean "unknown", which is distinct from false/zero and must
// never be treated as failing a criterion.
type Profile struct {
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Pincode  string `json:"pincode,omitempty"`

	Age      *int   `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Category string `json:"category,omitempty"`

	IncomeAnnual   *float64 `json:"income_annual,omitempty"`
	MonthlyIncome  *float64 `json:"monthly_income,omitempty"`
	Occupation     string   `json:"occupation,omitempty"`
	EducationLevel string   `json:"education_level,omitempty"`

	Farmer   *bool    `json:"farmer,omitempty"`
	LandArea *float64 `json:"land_area,omitempty"`

	Disability   string `json:"disability,omitempty"`
	BusinessType string `json:"business_type,omitempty"`

	// ExtraFlags carries attributes not covered by the fixed fields
	// (boolean or scalar). Consulted after the fixed fields.
	ExtraFlags map[string]interface{} `json:"extra_flags,omitempty"`
}

// Value resolves a canonical attribute name to its profile value.
// Fixed fields are consulted first, then ExtraFlags. The second return
// is false when the attribute is absent or unset.
func (p *Profile) Value(field string) (interface{}, bool) {
	if v, ok := p.fixedValue(field); ok {
		return v, true
	}
	if p.ExtraFlags != nil {
		if v, ok := p.ExtraFlags[field]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (p *Profile) fixedValue(field string) (interface{}, bool) {
	switch field {
	case "state":
		return optString(p.State)
	case "district":
		return optString(p.District)
	case "pincode":
		return optString(p.Pincode)
	case "age":
		if p.Age != nil {
			return *p.Age, true
		}
	case "gender":
		return optString(p.Gender)
	case "category":
		return optString(p.Category)
	case "income_annual":
		if p.IncomeAnnual != nil {
			return *p.IncomeAnnual, true
		}
	case "monthly_income":
		if p.MonthlyIncome != nil {
			return *p.MonthlyIncome, true
		}
	case "occupation":
		return optString(p.Occupation)
	case "education_level":
		return optString(p.EducationLevel)
	case "farmer":
		if p.Farmer != nil {
			return *p.Farmer, true
		}
	case "land_area":
		if p.LandArea != nil {
			return *p.LandArea, true
		}
	case "disability":
		return optString(p.Disability)
	case "business_type":
		return optString(p.BusinessType)
	}
	return nil, false
}

// Fingerprint returns a stable digest of the profile, suitable as part
// of a result-cache key. json.Marshal orders struct fields by
// declaration and map keys alphabetically, so identical profiles always
// produce identical fingerprints.
func (p *Profile) Fingerprint() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func optString(s string) (interface{}, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}
