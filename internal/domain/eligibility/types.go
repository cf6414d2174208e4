// Package eligibility decides whether a user profile qualifies for a scheme.
//
// Scheme eligibility lives in free text, so the classifier mines it with a
// named rule pack: keyword rules detect indicator phrases ("women only",
// "bpl") and regex rules extract numeric bounds (age ranges, income ceilings).
// A scheme must pass every gate. Gates run in a fixed order so the first
// failing gate is the one reported.
package eligibility

import "regexp"

// Gate names one group of checks.
type Gate string

const (
	GateProfile    Gate = "profile" // profile incomplete, nothing evaluated
	GateState      Gate = "state"
	GateGender     Gate = "gender"
	GateAge        Gate = "age"
	GateOccupation Gate = "occupation"
	GateCaste      Gate = "caste"
	GateIncome     Gate = "income"
)

// Gates lists the rule-driven gates in evaluation order. The state gate runs
// before all of them and needs no rules.
var Gates = []Gate{GateGender, GateAge, GateOccupation, GateCaste, GateIncome}

func gateFromName(name string) (Gate, bool) {
	for _, g := range Gates {
		if string(g) == name {
			return g, true
		}
	}
	return "", false
}

// RuleKind indicates how a rule reads scheme text.
type RuleKind int

const (
	RuleKeywords RuleKind = iota // fires when an indicator phrase is present
	RuleRegex                    // extracts a numeric bound from the first match
)

// String returns the YAML name of the kind.
func (k RuleKind) String() string {
	switch k {
	case RuleKeywords:
		return "keywords"
	case RuleRegex:
		return "regex"
	default:
		return "unknown"
	}
}

// RuleKindFromName parses a kind name. Returns -1 for unknown names.
func RuleKindFromName(name string) RuleKind {
	switch name {
	case "keywords":
		return RuleKeywords
	case "regex":
		return RuleRegex
	default:
		return -1
	}
}

// Bound says which side(s) a regex rule's capture groups constrain.
type Bound string

const (
	BoundRange Bound = "range" // groups 1 and 2 are min and max
	BoundMin   Bound = "min"   // group 1 is a minimum
	BoundMax   Bound = "max"   // group 1 is a maximum; group 2 an optional unit
)

// Requirement is what a profile must satisfy when a keyword rule fires.
// Empty lists and nil pointers impose nothing.
type Requirement struct {
	Genders     []string
	Occupations []string
	Castes      []string
	MinAge      *int
	MaxAge      *int
	MaxIncome   *int64
}

// Rule is one named eligibility check.
type Rule struct {
	ID           string
	Label        string // short human description used in exclusion reasons
	Gate         Gate
	Kind         RuleKind
	Keywords     []string // probed in the full text
	NameKeywords []string // probed in the scheme name only
	WholeWord    bool
	Unless       []string // any of these in the full text disables the rule
	Pattern      *regexp.Regexp
	Bound        Bound
	Require      Requirement
}

// Decision is the outcome of evaluating one scheme against one profile.
// For ineligible schemes Gate and RuleID name the first failing check.
type Decision struct {
	Eligible bool   `json:"eligible"`
	Gate     Gate   `json:"gate,omitempty"`
	RuleID   string `json:"rule,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// AgeBounds is an extracted age constraint; zero Min or Max means open.
type AgeBounds struct {
	Min    int
	Max    int
	RuleID string
}

// Contains reports whether age lies within the bounds.
func (b AgeBounds) Contains(age int) bool {
	if b.Min > 0 && age < b.Min {
		return false
	}
	if b.Max > 0 && age > b.Max {
		return false
	}
	return true
}
