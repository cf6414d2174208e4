package corpus

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/corey/sahayak/internal/domain/textnorm"
	"github.com/corey/sahayak/internal/ports"
)

// Atlas file names inside the versioned directory.
const (
	CategoriesFile  = "categories.json"
	CategoryMapFile = "category_map.json"
	StatesFile      = "states.json"
	PopularFile     = "popular.json"
)

// Popular marking tops up to MinPopular schemes, looking at most PopularScan records.
const (
	MinPopular  = 30
	PopularScan = 50
)

// Category is a canonical category with display metadata.
type Category struct {
	Key   string            `json:"key"`
	Icon  string            `json:"icon"`
	Color string            `json:"color"`
	Names map[string]string `json:"names"` // lang -> display name
}

// State is an Indian state or union territory.
type State struct {
	Key  string `json:"key"` // lowercase English name, the normalized state key
	En   string `json:"en"`
	Hi   string `json:"hi"`
	Code string `json:"code"`
}

// CategoryMapping maps a raw source category phrase to a canonical key.
type CategoryMapping struct {
	Raw      string `json:"raw"`
	Category string `json:"category"`
}

// Catalog is the static reference data the loader normalizes against.
type Catalog struct {
	categories  []Category
	categoryIdx map[string]int
	mappings    []CategoryMapping
	states      []State
	stateIdx    map[string]int
	popular     []string

	stateMatcher   ports.PatternMatcher
	popularMatcher ports.PatternMatcher
}

// LoadCatalog reads categories, the raw category map, states and popular
// name keywords from an fs.FS directory (normally atlas.FS, "v1").
// match may be nil, in which case lookups scan entry by entry.
func LoadCatalog(fsys fs.FS, dir string, match ports.MatcherFactory) (*Catalog, error) {
	var (
		cats     []Category
		mappings []CategoryMapping
		states   []State
		popular  []string
	)
	for _, f := range []struct {
		name string
		v    any
	}{
		{CategoriesFile, &cats},
		{CategoryMapFile, &mappings},
		{StatesFile, &states},
		{PopularFile, &popular},
	} {
		p := path.Join(dir, f.name)
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		if err := json.Unmarshal(data, f.v); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
	}
	return NewCatalog(cats, mappings, states, popular, match)
}

// NewCatalog validates the tables and builds the catalog.
func NewCatalog(cats []Category, mappings []CategoryMapping, states []State, popular []string, match ports.MatcherFactory) (*Catalog, error) {
	c := &Catalog{
		categoryIdx: make(map[string]int, len(cats)),
		stateIdx:    make(map[string]int, len(states)),
	}

	for i, cat := range cats {
		cat.Key = textnorm.Fold(cat.Key)
		if cat.Key == "" {
			return nil, fmt.Errorf("category %d: empty key", i)
		}
		if _, dup := c.categoryIdx[cat.Key]; dup {
			return nil, fmt.Errorf("category %q: duplicate key", cat.Key)
		}
		c.categoryIdx[cat.Key] = len(c.categories)
		c.categories = append(c.categories, cat)
	}
	if _, ok := c.categoryIdx[ports.DefaultCategory]; !ok {
		return nil, fmt.Errorf("default category %q is not declared", ports.DefaultCategory)
	}

	for _, m := range mappings {
		m.Raw = textnorm.Fold(m.Raw)
		if m.Raw == "" {
			return nil, fmt.Errorf("category map: empty raw phrase for %q", m.Category)
		}
		if _, ok := c.categoryIdx[m.Category]; !ok {
			return nil, fmt.Errorf("category map %q: unknown category %q", m.Raw, m.Category)
		}
		c.mappings = append(c.mappings, m)
	}

	keys := make([]string, 0, len(states))
	for i, s := range states {
		s.Key = textnorm.Fold(s.Key)
		if s.Key == "" {
			return nil, fmt.Errorf("state %d: empty key", i)
		}
		if _, dup := c.stateIdx[s.Key]; dup {
			return nil, fmt.Errorf("state %q: duplicate key", s.Key)
		}
		c.stateIdx[s.Key] = len(c.states)
		c.states = append(c.states, s)
		keys = append(keys, s.Key)
	}

	for _, kw := range popular {
		// "pm " keeps its trailing space so "pm" inside a word does not count
		kw = strings.ToLower(kw)
		if strings.TrimSpace(kw) != "" {
			c.popular = append(c.popular, kw)
		}
	}

	if match != nil {
		c.stateMatcher = match(keys, ports.MatchOptions{WholeWord: true})
		c.popularMatcher = match(c.popular, ports.MatchOptions{})
	}
	return c, nil
}

// NormalizeCategory maps a raw source category to canonical keys. The first
// mapping, in declared order, whose phrase contains or is contained by the
// folded input wins. Blank or unmapped input yields the default category.
func (c *Catalog) NormalizeCategory(raw string) []string {
	r := textnorm.Fold(raw)
	if r == "" {
		return []string{ports.DefaultCategory}
	}
	for _, m := range c.mappings {
		if strings.Contains(r, m.Raw) || strings.Contains(m.Raw, r) {
			return []string{m.Category}
		}
	}
	return []string{ports.DefaultCategory}
}

// ExtractState returns the first state key, in declared order, that appears
// as a whole phrase in name or details. Returns "" when none does.
func (c *Catalog) ExtractState(name, details string) string {
	text := textnorm.Fold(name + " " + details)
	if c.stateMatcher != nil {
		found := c.stateMatcher.Match(text)
		if len(found) == 0 {
			return ""
		}
		return found[0]
	}
	for _, s := range c.states {
		if containsWord(text, s.Key) {
			return s.Key
		}
	}
	return ""
}

// MarkPopular flags schemes whose name carries a popular keyword. When fewer
// than MinPopular are flagged, the earliest records are flagged in order until
// MinPopular is reached or PopularScan records have been looked at.
// It runs once at load time, before the records are shared.
func (c *Catalog) MarkPopular(records []*ports.SchemeRecord) {
	count := 0
	for _, r := range records {
		name := strings.ToLower(r.Name)
		if c.isPopularName(name) {
			r.IsPopular = true
		}
		if r.IsPopular {
			count++
		}
	}
	for i := 0; i < len(records) && i < PopularScan && count < MinPopular; i++ {
		if !records[i].IsPopular {
			records[i].IsPopular = true
			count++
		}
	}
}

func (c *Catalog) isPopularName(name string) bool {
	if c.popularMatcher != nil {
		return c.popularMatcher.Contains(name)
	}
	for _, kw := range c.popular {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Categories returns canonical categories in declared order.
func (c *Catalog) Categories() []Category { return c.categories }

// Category looks up a canonical category.
func (c *Catalog) Category(key string) (Category, bool) {
	i, ok := c.categoryIdx[key]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

// CategoryName returns the category's display name in lang, falling back to
// English and then to the key itself.
func (c *Catalog) CategoryName(key, lang string) string {
	cat, ok := c.Category(key)
	if !ok {
		return key
	}
	if n := cat.Names[lang]; n != "" {
		return n
	}
	if n := cat.Names["en"]; n != "" {
		return n
	}
	return key
}

// State looks up a state by key.
func (c *Catalog) State(key string) (State, bool) {
	i, ok := c.stateIdx[textnorm.Fold(key)]
	if !ok {
		return State{}, false
	}
	return c.states[i], true
}

// IsState reports whether key names a known state or union territory.
func (c *Catalog) IsState(key string) bool {
	_, ok := c.State(key)
	return ok
}

// StateName returns the state's display name in lang ("en" or "hi"),
// falling back to English and then to the key itself.
func (c *Catalog) StateName(key, lang string) string {
	s, ok := c.State(key)
	if !ok {
		return key
	}
	if lang == "hi" && s.Hi != "" {
		return s.Hi
	}
	if s.En != "" {
		return s.En
	}
	return key
}

// StatesSorted returns state keys ordered by English display name.
func (c *Catalog) StatesSorted() []string {
	states := make([]State, len(c.states))
	copy(states, c.states)
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].En < states[j].En
	})
	keys := make([]string, len(states))
	for i, s := range states {
		keys[i] = s.Key
	}
	return keys
}

// containsWord is the scan fallback for whole-phrase matching on ASCII keys.
func containsWord(text, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		if (i == 0 || !isASCIIWordByte(text[i-1])) && (end == len(text) || !isASCIIWordByte(text[end])) {
			return true
		}
		start = i + 1
	}
}

func isASCIIWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
