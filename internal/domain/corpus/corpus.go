// Package corpus holds the read-only scheme collection and the static
// category/state catalog used to normalize it.
//
// A Corpus is built once from loaded records and never mutated afterwards;
// readers share it freely across goroutines. A reload builds a new Corpus.
package corpus

import (
	"sort"
	"strings"

	"github.com/corey/sahayak/internal/ports"
)

// Corpus is an ordered, indexed scheme collection.
type Corpus struct {
	schemes    []*ports.SchemeRecord
	byID       map[string]*ports.SchemeRecord
	byCategory map[string][]*ports.SchemeRecord
	categories []string
	states     []string
}

// New indexes records, keeping their order. Records without categories get
// the default category so the non-empty invariant holds for every reader.
// Input records are never modified; a record needing a default is copied.
func New(records []*ports.SchemeRecord) *Corpus {
	c := &Corpus{
		schemes:    make([]*ports.SchemeRecord, 0, len(records)),
		byID:       make(map[string]*ports.SchemeRecord, len(records)*2),
		byCategory: make(map[string][]*ports.SchemeRecord),
	}
	stateSet := make(map[string]bool)

	for _, r := range records {
		if r == nil {
			continue
		}
		if len(r.Categories) == 0 || (!r.IsStateSpecific && r.State != "") {
			cp := *r
			if len(cp.Categories) == 0 {
				cp.Categories = []string{ports.DefaultCategory}
			}
			if !cp.IsStateSpecific {
				cp.State = ""
			}
			r = &cp
		}
		c.schemes = append(c.schemes, r)

		if _, ok := c.byID[r.ID]; !ok && r.ID != "" {
			c.byID[r.ID] = r
		}
		if _, ok := c.byID[r.Slug]; !ok && r.Slug != "" {
			c.byID[r.Slug] = r
		}
		for _, cat := range r.Categories {
			c.byCategory[cat] = append(c.byCategory[cat], r)
		}
		if r.State != "" {
			stateSet[r.State] = true
		}
	}

	for cat := range c.byCategory {
		c.categories = append(c.categories, cat)
	}
	sort.Strings(c.categories)
	for s := range stateSet {
		c.states = append(c.states, s)
	}
	sort.Strings(c.states)
	return c
}

// All returns every scheme in load order. Callers must not modify the slice.
func (c *Corpus) All() []*ports.SchemeRecord {
	if c == nil {
		return nil
	}
	return c.schemes
}

// Len returns the number of schemes.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.schemes)
}

// ByID finds a scheme by ID or slug.
func (c *Corpus) ByID(idOrSlug string) (*ports.SchemeRecord, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.byID[idOrSlug]
	return r, ok
}

// Categories returns the sorted set of category keys present in the corpus.
func (c *Corpus) Categories() []string {
	if c == nil {
		return nil
	}
	return c.categories
}

// CategoryCount returns how many schemes carry the category.
func (c *Corpus) CategoryCount(category string) int {
	if c == nil {
		return 0
	}
	return len(c.byCategory[category])
}

// States returns the sorted set of state keys present in the corpus.
func (c *Corpus) States() []string {
	if c == nil {
		return nil
	}
	return c.states
}

// Filter returns the schemes passing opts, in load order.
func (c *Corpus) Filter(opts ports.SearchOptions) []*ports.SchemeRecord {
	if c == nil {
		return nil
	}
	return Filter(c.schemes, opts)
}

// GroupByCategory filters with opts and buckets the result by category.
// A scheme with several categories appears in each bucket once.
func (c *Corpus) GroupByCategory(opts ports.SearchOptions) map[string][]*ports.SchemeRecord {
	grouped := make(map[string][]*ports.SchemeRecord)
	for _, s := range c.Filter(opts) {
		for _, cat := range s.Categories {
			if !containsScheme(grouped[cat], s) {
				grouped[cat] = append(grouped[cat], s)
			}
		}
	}
	return grouped
}

// Filter applies category, state, popularity and limit options to schemes,
// preserving order. The input slice is not modified.
//
// State policy: ExcludeState ignores State. StateOnly with a State keeps only
// schemes specific to exactly that state. A State alone keeps central schemes
// plus that state's schemes.
func Filter(schemes []*ports.SchemeRecord, opts ports.SearchOptions) []*ports.SchemeRecord {
	state := strings.ToLower(strings.TrimSpace(opts.State))
	out := make([]*ports.SchemeRecord, 0, len(schemes))
	for _, s := range schemes {
		if opts.Category != "" && !s.HasCategory(opts.Category) {
			continue
		}
		if !opts.ExcludeState && state != "" && !StateMatches(s, state, opts.StateOnly) {
			continue
		}
		if opts.Popular && !s.IsPopular {
			continue
		}
		out = append(out, s)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}

// StateMatches applies the state policy for one scheme against a lowercase state key.
func StateMatches(s *ports.SchemeRecord, state string, strict bool) bool {
	if strict {
		return s.IsStateSpecific && s.State == state
	}
	return !s.IsStateSpecific || s.State == state
}

func containsScheme(list []*ports.SchemeRecord, s *ports.SchemeRecord) bool {
	for _, x := range list {
		if x.ID == s.ID {
			return true
		}
	}
	return false
}
