package eligibility

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/corey/sahayak/internal/domain/textnorm"
	"github.com/corey/sahayak/internal/ports"
)

// compiledRule is a keyword rule with its phrase sets compiled into matchers.
type compiledRule struct {
	Rule
	text   ports.PatternMatcher
	name   ports.PatternMatcher
	unless ports.PatternMatcher
}

// fires reports whether the rule applies to a scheme's text and name.
func (r *compiledRule) fires(text, name string) bool {
	hit := (r.text != nil && r.text.Contains(text)) || (r.name != nil && r.name.Contains(name))
	if !hit {
		return false
	}
	return r.unless == nil || !r.unless.Contains(text)
}

// Classifier evaluates profiles against schemes. It holds only compiled,
// read-only rules and is safe for concurrent use.
type Classifier struct {
	keywords      map[Gate][]*compiledRule
	ageBounds     []Rule
	incomeCeiling []Rule
	log           *zap.Logger
}

// NewClassifier compiles rules with the given matcher factory.
// A nil logger disables the exclusion trace.
func NewClassifier(rules []Rule, match ports.MatcherFactory, log *zap.Logger) (*Classifier, error) {
	if match == nil {
		return nil, errors.New("eligibility: nil matcher factory")
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Classifier{
		keywords: make(map[Gate][]*compiledRule),
		log:      log,
	}
	for _, r := range rules {
		switch r.Kind {
		case RuleKeywords:
			cr := &compiledRule{Rule: r}
			opts := ports.MatchOptions{WholeWord: r.WholeWord}
			if len(r.Keywords) > 0 {
				cr.text = match(r.Keywords, opts)
			}
			if len(r.NameKeywords) > 0 {
				cr.name = match(r.NameKeywords, opts)
			}
			if len(r.Unless) > 0 {
				cr.unless = match(r.Unless, ports.MatchOptions{})
			}
			c.keywords[r.Gate] = append(c.keywords[r.Gate], cr)
		case RuleRegex:
			switch r.Gate {
			case GateAge:
				c.ageBounds = append(c.ageBounds, r)
			case GateIncome:
				c.incomeCeiling = append(c.incomeCeiling, r)
			default:
				return nil, fmt.Errorf("rule %q: regex rules are only supported for age and income gates", r.ID)
			}
		default:
			return nil, fmt.Errorf("rule %q: unknown kind %v", r.ID, r.Kind)
		}
	}
	return c, nil
}

// schemeText is the lowercased text every rule probes.
type schemeText struct {
	full string // eligibility + name + details
	name string
}

func textOf(s *ports.SchemeRecord) schemeText {
	return schemeText{
		full: textnorm.Fold(s.EligibilityText + " " + s.Name + " " + s.DetailsText),
		name: strings.ToLower(s.Name),
	}
}

// IsEligible reports whether profile qualifies for scheme. An invalid or nil
// profile is never eligible.
func (c *Classifier) IsEligible(s *ports.SchemeRecord, p *ports.UserProfile) bool {
	return c.Evaluate(s, p).Eligible
}

// Evaluate runs every gate in order and returns the first failure, or an
// eligible decision when all gates pass. Each exclusion is traced at debug level.
func (c *Classifier) Evaluate(s *ports.SchemeRecord, p *ports.UserProfile) Decision {
	if s == nil {
		return Decision{Gate: GateProfile, Reason: "no scheme"}
	}
	if p == nil {
		return c.exclude(s, Decision{Gate: GateProfile, Reason: "no profile"})
	}
	prof := p.Normalized()
	if !prof.Valid() {
		return c.exclude(s, Decision{Gate: GateProfile, Reason: "incomplete profile"})
	}

	t := textOf(s)
	for _, check := range []func(*ports.SchemeRecord, *ports.UserProfile, schemeText) (Decision, bool){
		c.checkState,
		c.checkGender,
		c.checkAge,
		c.checkOccupation,
		c.checkCaste,
		c.checkIncome,
	} {
		if d, failed := check(s, &prof, t); failed {
			return c.exclude(s, d)
		}
	}

	c.log.Debug("scheme eligible", zap.String("scheme", s.Name))
	return Decision{Eligible: true}
}

func (c *Classifier) exclude(s *ports.SchemeRecord, d Decision) Decision {
	c.log.Debug("scheme excluded",
		zap.String("scheme", s.Name),
		zap.String("gate", string(d.Gate)),
		zap.String("rule", d.RuleID),
		zap.String("reason", d.Reason),
	)
	return d
}

func (c *Classifier) checkState(s *ports.SchemeRecord, p *ports.UserProfile, _ schemeText) (Decision, bool) {
	if !s.IsStateSpecific || s.State == "" {
		return Decision{}, false
	}
	if strings.EqualFold(strings.TrimSpace(s.State), p.State) {
		return Decision{}, false
	}
	return Decision{
		Gate:   GateState,
		Reason: fmt.Sprintf("scheme is for %s, profile state is %s", s.State, p.State),
	}, true
}

func (c *Classifier) checkGender(_ *ports.SchemeRecord, p *ports.UserProfile, t schemeText) (Decision, bool) {
	for _, r := range c.keywords[GateGender] {
		if r.fires(t.full, t.name) && !contains(r.Require.Genders, p.Gender) {
			return failed(r.Rule, "profile gender is %s", p.Gender), true
		}
	}
	return Decision{}, false
}

func (c *Classifier) checkAge(_ *ports.SchemeRecord, p *ports.UserProfile, t schemeText) (Decision, bool) {
	if b, ok := c.AgeBounds(t.full); ok && !b.Contains(p.AgeYears) {
		return Decision{
			Gate:   GateAge,
			RuleID: b.RuleID,
			Reason: fmt.Sprintf("needs age %s, profile age is %d", b, p.AgeYears),
		}, true
	}
	for _, r := range c.keywords[GateAge] {
		if !r.fires(t.full, t.name) {
			continue
		}
		b := AgeBounds{RuleID: r.ID}
		if r.Require.MinAge != nil {
			b.Min = *r.Require.MinAge
		}
		if r.Require.MaxAge != nil {
			b.Max = *r.Require.MaxAge
		}
		if !b.Contains(p.AgeYears) {
			return failed(r.Rule, "profile age is %d", p.AgeYears), true
		}
	}
	return Decision{}, false
}

func (c *Classifier) checkOccupation(_ *ports.SchemeRecord, p *ports.UserProfile, t schemeText) (Decision, bool) {
	for _, r := range c.keywords[GateOccupation] {
		if r.fires(t.full, t.name) && !contains(r.Require.Occupations, p.Occupation) {
			return failed(r.Rule, "profile occupation is %s", p.Occupation), true
		}
	}
	return Decision{}, false
}

func (c *Classifier) checkCaste(_ *ports.SchemeRecord, p *ports.UserProfile, t schemeText) (Decision, bool) {
	for _, r := range c.keywords[GateCaste] {
		if r.fires(t.full, t.name) && !contains(r.Require.Castes, p.CasteCategory) {
			return failed(r.Rule, "profile category is %s", p.CasteCategory), true
		}
	}
	return Decision{}, false
}

// checkIncome applies bracket ceilings (BPL, EWS); when no bracket applies it
// falls back to an explicit ceiling extracted from the text. Skipped when the
// profile states no income.
func (c *Classifier) checkIncome(_ *ports.SchemeRecord, p *ports.UserProfile, t schemeText) (Decision, bool) {
	if p.AnnualIncome <= 0 {
		return Decision{}, false
	}
	bracket := false
	for _, r := range c.keywords[GateIncome] {
		if r.Require.MaxIncome == nil || !r.fires(t.full, t.name) {
			continue
		}
		bracket = true
		if p.AnnualIncome > *r.Require.MaxIncome {
			return failed(r.Rule, "income limit %d, profile income is %d", *r.Require.MaxIncome, p.AnnualIncome), true
		}
	}
	if bracket {
		return Decision{}, false
	}
	if limit, id, ok := c.IncomeCeiling(t.full); ok && p.AnnualIncome > limit {
		return Decision{
			Gate:   GateIncome,
			RuleID: id,
			Reason: fmt.Sprintf("income limit %d, profile income is %d", limit, p.AnnualIncome),
		}, true
	}
	return Decision{}, false
}

// AgeBounds extracts an age constraint from lowercased text using the first
// matching bound rule. Returns false when no rule matches or the capture does
// not parse.
func (c *Classifier) AgeBounds(text string) (AgeBounds, bool) {
	for _, r := range c.ageBounds {
		m := r.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		b := AgeBounds{RuleID: r.ID}
		switch r.Bound {
		case BoundRange:
			lo, ok1 := parseAge(m[1])
			hi, ok2 := parseAge(m[2])
			if !ok1 || !ok2 {
				return AgeBounds{}, false
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			b.Min, b.Max = lo, hi
		case BoundMin:
			n, ok := parseAge(m[1])
			if !ok {
				return AgeBounds{}, false
			}
			b.Min = n
		case BoundMax:
			n, ok := parseAge(m[1])
			if !ok {
				return AgeBounds{}, false
			}
			b.Max = n
		}
		return b, true
	}
	return AgeBounds{}, false
}

// IncomeCeiling extracts an explicit income ceiling in rupees from lowercased
// text using the first matching ceiling rule.
func (c *Classifier) IncomeCeiling(text string) (int64, string, bool) {
	text = stripDigitGrouping(text)
	for _, r := range c.incomeCeiling {
		m := r.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		unit := ""
		if len(m) > 2 {
			unit = m[2]
		}
		limit, ok := ParseAmount(m[1], unit)
		if !ok {
			return 0, "", false
		}
		return limit, r.ID, true
	}
	return 0, "", false
}

// FilterEligible keeps the schemes profile qualifies for, in order. An
// invalid or nil profile cannot be evaluated, so schemes pass through
// unchanged instead of all being dropped.
func (c *Classifier) FilterEligible(schemes []*ports.SchemeRecord, p *ports.UserProfile) []*ports.SchemeRecord {
	return c.Filter(schemes, p, true)
}

// Filter is FilterEligible gated by the eligibility mode switch: with the mode
// off schemes pass through unchanged.
func (c *Classifier) Filter(schemes []*ports.SchemeRecord, p *ports.UserProfile, mode bool) []*ports.SchemeRecord {
	if !mode || !Evaluable(p) {
		return schemes
	}
	out := make([]*ports.SchemeRecord, 0, len(schemes))
	for _, s := range schemes {
		if c.IsEligible(s, p) {
			out = append(out, s)
		}
	}
	return out
}

// Evaluable reports whether p is complete enough to filter with.
func Evaluable(p *ports.UserProfile) bool {
	if p == nil {
		return false
	}
	n := p.Normalized()
	return n.Valid()
}

// String renders bounds as "18-40", "60+" or "up to 17".
func (b AgeBounds) String() string {
	switch {
	case b.Min > 0 && b.Max > 0:
		return fmt.Sprintf("%d-%d", b.Min, b.Max)
	case b.Min > 0:
		return fmt.Sprintf("%d+", b.Min)
	case b.Max > 0:
		return fmt.Sprintf("up to %d", b.Max)
	default:
		return "any"
	}
}

func failed(r Rule, format string, args ...any) Decision {
	return Decision{
		Gate:   r.Gate,
		RuleID: r.ID,
		Reason: r.Label + ": " + fmt.Sprintf(format, args...),
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
