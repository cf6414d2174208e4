package eligibility

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corey/sahayak/internal/ports"
)

// yamlRule is the YAML-serialized form of a Rule.
type yamlRule struct {
	ID           string      `yaml:"id"`
	Gate         string      `yaml:"gate"`
	Kind         string      `yaml:"kind"`
	Label        string      `yaml:"label"`
	Keywords     []string    `yaml:"keywords,omitempty"`
	NameKeywords []string    `yaml:"name_keywords,omitempty"`
	WholeWord    bool        `yaml:"whole_word,omitempty"`
	Unless       []string    `yaml:"unless,omitempty"`
	Pattern      string      `yaml:"pattern,omitempty"`
	Bound        string      `yaml:"bound,omitempty"`
	Require      yamlRequire `yaml:"require,omitempty"`
}

type yamlRequire struct {
	Gender     []string `yaml:"gender,omitempty"`
	Occupation []string `yaml:"occupation,omitempty"`
	Caste      []string `yaml:"caste,omitempty"`
	MinAge     *int     `yaml:"min_age,omitempty"`
	MaxAge     *int     `yaml:"max_age,omitempty"`
	MaxIncome  *int64   `yaml:"max_income,omitempty"`
}

// LoadRulesFromFS loads all YAML rule files from an embedded filesystem.
// Files are read in sorted name order and rules keep their file order, which
// is the order extractors are tried in.
func LoadRulesFromFS(fsys fs.FS, dir string) ([]Rule, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read rules dir %q: %w", dir, err)
	}

	// Sort for deterministic load order
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var allRules []Rule
	seenIDs := make(map[string]string) // id → source file

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := dir + "/" + entry.Name()
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var yamlRules []yamlRule
		if err := yaml.Unmarshal(data, &yamlRules); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		for _, yr := range yamlRules {
			rule, err := convertRule(yr)
			if err != nil {
				return nil, fmt.Errorf("%s: rule %q: %w", entry.Name(), yr.ID, err)
			}

			if prev, ok := seenIDs[rule.ID]; ok {
				return nil, fmt.Errorf("duplicate rule ID %q (first in %s, again in %s)", rule.ID, prev, entry.Name())
			}
			seenIDs[rule.ID] = entry.Name()

			allRules = append(allRules, rule)
		}
	}

	if len(allRules) == 0 {
		return nil, fmt.Errorf("no eligibility rules found in %q", dir)
	}
	return allRules, nil
}

// convertRule validates a yamlRule and converts it to a Rule.
func convertRule(yr yamlRule) (Rule, error) {
	if yr.ID == "" {
		return Rule{}, fmt.Errorf("missing id")
	}

	gate, ok := gateFromName(yr.Gate)
	if !ok {
		return Rule{}, fmt.Errorf("unknown gate %q", yr.Gate)
	}

	kind := RuleKindFromName(yr.Kind)
	if kind < 0 {
		return Rule{}, fmt.Errorf("unknown kind %q", yr.Kind)
	}

	rule := Rule{
		ID:           yr.ID,
		Label:        yr.Label,
		Gate:         gate,
		Kind:         kind,
		Keywords:     lowerAll(yr.Keywords),
		NameKeywords: lowerAll(yr.NameKeywords),
		WholeWord:    yr.WholeWord,
		Unless:       lowerAll(yr.Unless),
		Bound:        Bound(yr.Bound),
		Require: Requirement{
			Genders:     yr.Require.Gender,
			Occupations: yr.Require.Occupation,
			Castes:      yr.Require.Caste,
			MinAge:      yr.Require.MinAge,
			MaxAge:      yr.Require.MaxAge,
			MaxIncome:   yr.Require.MaxIncome,
		},
	}
	if rule.Label == "" {
		rule.Label = rule.ID
	}

	switch kind {
	case RuleKeywords:
		if len(rule.Keywords) == 0 && len(rule.NameKeywords) == 0 {
			return Rule{}, fmt.Errorf("keywords rule must have keywords or name_keywords")
		}
		if err := validateRequirement(gate, rule.Require); err != nil {
			return Rule{}, err
		}
	case RuleRegex:
		if err := validateRegexRule(gate, yr, &rule); err != nil {
			return Rule{}, err
		}
	}
	return rule, nil
}

// validateRequirement checks a keyword rule constrains the field its gate owns.
func validateRequirement(gate Gate, req Requirement) error {
	switch gate {
	case GateGender:
		return requireValues("gender", req.Genders, ports.Genders())
	case GateOccupation:
		return requireValues("occupation", req.Occupations, ports.Occupations())
	case GateCaste:
		return requireValues("caste", req.Castes, ports.Castes())
	case GateAge:
		if req.MinAge == nil && req.MaxAge == nil {
			return fmt.Errorf("age rule must set min_age or max_age")
		}
	case GateIncome:
		if req.MaxIncome == nil || *req.MaxIncome <= 0 {
			return fmt.Errorf("income rule must set a positive max_income")
		}
	}
	return nil
}

func requireValues(field string, got, allowed []string) error {
	if len(got) == 0 {
		return fmt.Errorf("%s rule must require at least one %s", field, field)
	}
	for _, v := range got {
		ok := false
		for _, a := range allowed {
			if v == a {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("unknown %s %q", field, v)
		}
	}
	return nil
}

// validateRegexRule compiles the pattern and checks its groups fit the bound.
func validateRegexRule(gate Gate, yr yamlRule, rule *Rule) error {
	if yr.Pattern == "" {
		return fmt.Errorf("regex rule must have pattern")
	}
	re, err := regexp.Compile("(?i)" + yr.Pattern)
	if err != nil {
		return fmt.Errorf("compile pattern: %w", err)
	}
	rule.Pattern = re

	switch gate {
	case GateAge:
		switch rule.Bound {
		case BoundRange:
			if re.NumSubexp() < 2 {
				return fmt.Errorf("range pattern needs two capture groups")
			}
		case BoundMin, BoundMax:
			if re.NumSubexp() < 1 {
				return fmt.Errorf("%s pattern needs a capture group", rule.Bound)
			}
		default:
			return fmt.Errorf("unknown bound %q", yr.Bound)
		}
	case GateIncome:
		if rule.Bound != BoundMax {
			return fmt.Errorf("income pattern bound must be max")
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("income pattern needs an amount capture group")
		}
	default:
		return fmt.Errorf("regex rules are only supported for age and income gates")
	}
	return nil
}

func lowerAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(s); strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
