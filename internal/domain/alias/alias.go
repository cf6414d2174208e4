// Package alias resolves free-text terms to known scheme vocabulary.
//
// The index holds two ordered tables loaded from the atlas:
//   - alias entries: canonical key -> surface forms (transliterations, typos,
//     native-script spellings), used to widen a search query;
//   - category keywords: category -> keyword list, in a fixed declared order,
//     used to route category-style questions ("farmer", "महिला").
//
// Both tables are read-only after construction and safe for concurrent use.
package alias

import (
	"fmt"
	"sort"
	"strings"

	"github.com/corey/sahayak/internal/domain/fuzzy"
	"github.com/corey/sahayak/internal/domain/textnorm"
	"github.com/corey/sahayak/internal/ports"
)

// Fuzzy thresholds for expansion.
const (
	PhraseThreshold = fuzzy.Threshold // whole query
	WordThreshold   = 1               // single query word
)

// Entry is one canonical key and its ordered surface forms.
type Entry struct {
	Key      string   `json:"key"`
	Surfaces []string `json:"surfaces"`
}

// CategoryKeywords is one category and the keywords that route to it.
type CategoryKeywords struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// Index is the alias and category vocabulary.
type Index struct {
	entries    []Entry
	categories []CategoryKeywords

	// keyword scan over all category keywords at once; nil falls back to a loop
	kwMatcher ports.PatternMatcher
	kwOwner   map[string]int // keyword -> first category position declaring it
}

// New validates the tables, normalizes every form like a query and builds the index.
// match may be nil, in which case category matching scans keyword by keyword.
func New(entries []Entry, categories []CategoryKeywords, match ports.MatcherFactory) (*Index, error) {
	ix := &Index{kwOwner: make(map[string]int)}

	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		key := textnorm.Query(e.Key)
		if key == "" {
			return nil, fmt.Errorf("alias entry %d: empty key", i)
		}
		if seen[key] {
			return nil, fmt.Errorf("alias entry %q: duplicate key", key)
		}
		seen[key] = true
		if len(e.Surfaces) == 0 {
			return nil, fmt.Errorf("alias entry %q: no surfaces", key)
		}
		folded := make([]string, 0, len(e.Surfaces))
		for _, s := range e.Surfaces {
			if f := textnorm.Query(s); f != "" {
				folded = append(folded, f)
			}
		}
		ix.entries = append(ix.entries, Entry{Key: key, Surfaces: folded})
	}

	var keywords []string
	for i, c := range categories {
		cat := textnorm.Query(c.Category)
		if cat == "" {
			return nil, fmt.Errorf("category keywords %d: empty category", i)
		}
		if len(c.Keywords) == 0 {
			return nil, fmt.Errorf("category %q: no keywords", cat)
		}
		folded := make([]string, 0, len(c.Keywords))
		for _, k := range c.Keywords {
			f := textnorm.Query(k)
			if f == "" {
				return nil, fmt.Errorf("category %q: empty keyword", cat)
			}
			folded = append(folded, f)
			if _, ok := ix.kwOwner[f]; !ok {
				ix.kwOwner[f] = i
				keywords = append(keywords, f)
			}
		}
		ix.categories = append(ix.categories, CategoryKeywords{Category: cat, Keywords: folded})
	}

	if match != nil && len(keywords) > 0 {
		ix.kwMatcher = match(keywords, ports.MatchOptions{})
	}
	return ix, nil
}

// Entries returns the alias table in declared order.
func (ix *Index) Entries() []Entry { return ix.entries }

// Categories returns the category keyword table in declared order.
func (ix *Index) Categories() []CategoryKeywords { return ix.categories }

// Expand widens a single term. Terms containing whitespace are treated as
// phrases (distance <= 2), others as words (distance <= 1).
func (ix *Index) Expand(term string) []string {
	t := textnorm.Query(term)
	if strings.ContainsRune(t, ' ') {
		return ix.expand(t, PhraseThreshold)
	}
	return ix.expand(t, WordThreshold)
}

// ExpandPhrase widens a whole query with the phrase threshold.
func (ix *Index) ExpandPhrase(phrase string) []string {
	return ix.expand(textnorm.Query(phrase), PhraseThreshold)
}

// ExpandWord widens one query word with the word threshold.
func (ix *Index) ExpandWord(word string) []string {
	return ix.expand(textnorm.Query(word), WordThreshold)
}

// expand returns the sorted set of the term itself plus the surfaces of every
// entry whose key or surface contains, is contained by, or is within maxDist
// edits of the term. An empty term expands to nothing.
func (ix *Index) expand(t string, maxDist int) []string {
	if t == "" {
		return nil
	}
	set := map[string]struct{}{t: {}}
	for _, e := range ix.entries {
		if !entryMatches(e, t, maxDist) {
			continue
		}
		for _, s := range e.Surfaces {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func entryMatches(e Entry, t string, maxDist int) bool {
	if related(e.Key, t, maxDist) {
		return true
	}
	for _, s := range e.Surfaces {
		if related(s, t, maxDist) {
			return true
		}
	}
	return false
}

func related(form, t string, maxDist int) bool {
	return strings.Contains(t, form) || strings.Contains(form, t) || fuzzy.Within(t, form, maxDist)
}

// Canonical returns the alias key when the normalized query is exactly a key
// or one of its surfaces. Entries are tried in declared order.
func (ix *Index) Canonical(query string) (string, bool) {
	q := textnorm.Query(query)
	if q == "" {
		return "", false
	}
	for _, e := range ix.entries {
		if e.Key == q {
			return e.Key, true
		}
		for _, s := range e.Surfaces {
			if s == q {
				return e.Key, true
			}
		}
	}
	return "", false
}

// MatchCategory returns the first category, in declared order, with a keyword
// that occurs in the term or contains it. Returns "", false when none does.
func (ix *Index) MatchCategory(term string) (string, bool) {
	t := textnorm.Query(term)
	if t == "" {
		return "", false
	}

	best := len(ix.categories)
	if ix.kwMatcher != nil {
		for _, kw := range ix.kwMatcher.Match(t) {
			if pos := ix.kwOwner[kw]; pos < best {
				best = pos
			}
		}
	}

	for i := 0; i < best; i++ {
		for _, kw := range ix.categories[i].Keywords {
			if strings.Contains(kw, t) || (ix.kwMatcher == nil && strings.Contains(t, kw)) {
				best = i
				break
			}
		}
	}

	if best == len(ix.categories) {
		return "", false
	}
	return ix.categories[best].Category, true
}
