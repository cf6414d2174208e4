package ports

import (
	"errors"
	"strings"
)

// DefaultCategory is assigned to schemes whose source category maps to nothing.
const DefaultCategory = "social"

// SchemeRecord is one welfare scheme as loaded from the corpus.
// Records are built once by the loader and never mutated afterwards.
//
// Invariants: Categories is never empty; State is empty unless IsStateSpecific.
type SchemeRecord struct {
	ID              string   `json:"id"`
	Slug            string   `json:"slug,omitempty"`
	Name            string   `json:"name"`
	Level           string   `json:"level,omitempty"` // "Central" or "State" as written in the source
	Categories      []string `json:"categories"`
	CategoryText    string   `json:"category_text,omitempty"` // raw source category, searched verbatim
	IsStateSpecific bool     `json:"is_state_specific"`
	State           string   `json:"state,omitempty"` // normalized state key, e.g. "karnataka"
	IsPopular       bool     `json:"is_popular"`

	EligibilityText string `json:"eligibility,omitempty"`
	BenefitsText    string `json:"benefits,omitempty"`
	ApplicationText string `json:"application,omitempty"`
	DocumentsText   string `json:"documents,omitempty"`
	DetailsText     string `json:"details,omitempty"`
	TagsText        string `json:"tags,omitempty"`
}

// HasCategory reports whether the scheme carries the given category tag.
func (s *SchemeRecord) HasCategory(category string) bool {
	for _, c := range s.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Gender values accepted in a profile.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Occupation values accepted in a profile.
const (
	OccupationFarmer       = "farmer"
	OccupationStudent      = "student"
	OccupationEmployed     = "employed"
	OccupationSelfEmployed = "self-employed"
	OccupationUnemployed   = "unemployed"
	OccupationRetired      = "retired"
	OccupationLabourer     = "labourer"
)

// Caste category values accepted in a profile.
const (
	CasteGeneral = "general"
	CasteOBC     = "obc"
	CasteSC      = "sc"
	CasteST      = "st"
)

var (
	genders     = []string{GenderMale, GenderFemale, GenderOther}
	occupations = []string{
		OccupationFarmer, OccupationStudent, OccupationEmployed, OccupationSelfEmployed,
		OccupationUnemployed, OccupationRetired, OccupationLabourer,
	}
	castes = []string{CasteGeneral, CasteOBC, CasteSC, CasteST}
)

// ErrInvalidProfile is returned by boundary code that refuses to store an incomplete profile.
var ErrInvalidProfile = errors.New("invalid eligibility profile")

// UserProfile is a user's self-declared eligibility attributes.
// AnnualIncome of zero means "not specified".
type UserProfile struct {
	State         string `json:"state"`
	Gender        string `json:"gender"`
	AgeYears      int    `json:"age"`
	Occupation    string `json:"occupation"`
	CasteCategory string `json:"category"`
	AnnualIncome  int64  `json:"income,omitempty"`
}

// Valid reports whether every required field is populated and in range.
// A nil profile is invalid.
func (p *UserProfile) Valid() bool {
	if p == nil {
		return false
	}
	if strings.TrimSpace(p.State) == "" {
		return false
	}
	if p.AgeYears < 1 || p.AgeYears > 120 {
		return false
	}
	if p.AnnualIncome < 0 {
		return false
	}
	return oneOf(p.Gender, genders) && oneOf(p.Occupation, occupations) && oneOf(p.CasteCategory, castes)
}

// Normalized returns a copy with lowercased, trimmed enum fields and state key.
// Callers normalize at the boundary; the classifier compares exact values.
func (p UserProfile) Normalized() UserProfile {
	p.State = strings.ToLower(strings.TrimSpace(p.State))
	p.Gender = strings.ToLower(strings.TrimSpace(p.Gender))
	p.Occupation = strings.ToLower(strings.TrimSpace(p.Occupation))
	p.CasteCategory = strings.ToLower(strings.TrimSpace(p.CasteCategory))
	return p
}

// Genders, Occupations and Castes list the accepted enum values in display order.
func Genders() []string     { return append([]string(nil), genders...) }
func Occupations() []string { return append([]string(nil), occupations...) }
func Castes() []string      { return append([]string(nil), castes...) }

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
