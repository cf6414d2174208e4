// Package search ranks schemes against a free-text query.
//
// Ranking is a layered heuristic: exact name containment, fuzzy first-word
// similarity, alias expansion hits and plain word overlap each add a fixed
// weight. The weights decide which scheme a literal query resolves to, so they
// are constants and tests pin them.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/corey/sahayak/internal/domain/alias"
	"github.com/corey/sahayak/internal/domain/corpus"
	"github.com/corey/sahayak/internal/domain/fuzzy"
	"github.com/corey/sahayak/internal/domain/textnorm"
	"github.com/corey/sahayak/internal/ports"
)

// Scoring weights.
const (
	WeightNameContainsQuery = 100
	WeightFirstWordFuzzy    = 50
	FuzzyPenaltyPerEdit     = 10
	WeightTermInName        = 30
	WeightTermInText        = 15
	WeightWordInText        = 5
)

// Query length policy, in code points.
const (
	MinQueryLen = 2
	MinWordLen  = 3
)

// Engine scores schemes. It holds only the read-only alias index, so a single
// Engine may serve concurrent callers.
type Engine struct {
	aliases *alias.Index
}

// NewEngine creates an engine. A nil index disables alias expansion.
func NewEngine(aliases *alias.Index) *Engine {
	return &Engine{aliases: aliases}
}

// Search filters schemes by opts, scores the rest against query and returns
// the best hits, highest score first with ties kept in input order.
// A query shorter than MinQueryLen yields an empty result. When nothing
// scores, a single best fuzzy name match is tried before giving up.
func (e *Engine) Search(query string, schemes []*ports.SchemeRecord, opts ports.SearchOptions) *ports.SearchResult {
	q := textnorm.Query(query)
	if utf8.RuneCountInString(q) < MinQueryLen {
		return &ports.SearchResult{}
	}
	words := textnorm.Words(q)

	pool := corpus.Filter(schemes, ports.SearchOptions{
		Category:     opts.Category,
		State:        opts.State,
		StateOnly:    opts.StateOnly,
		ExcludeState: opts.ExcludeState,
		Popular:      opts.Popular,
	})
	terms := e.expansionTerms(q, words)

	hits := make([]ports.Hit, 0, len(pool))
	for _, s := range pool {
		if score := Score(s, q, words, terms); score > 0 {
			hits = append(hits, ports.Hit{Scheme: s, Score: score})
		}
	}

	if len(hits) == 0 {
		if h, ok := fallback(q, pool); ok {
			return &ports.SearchResult{Hits: []ports.Hit{h}}
		}
		return &ports.SearchResult{}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = ports.DefaultSearchLimit
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return &ports.SearchResult{Hits: hits}
}

// expansionTerms widens the whole query and each long-enough word through
// the alias index into one deduplicated set.
func (e *Engine) expansionTerms(q string, words []string) []string {
	seen := make(map[string]bool)
	var terms []string
	add := func(list []string) {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}

	if e.aliases == nil {
		add([]string{q})
	} else {
		add(e.aliases.ExpandPhrase(q))
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) < MinWordLen {
			continue
		}
		if e.aliases == nil {
			add([]string{w})
		} else {
			add(e.aliases.ExpandWord(w))
		}
	}
	return terms
}

// Score computes one scheme's score for a normalized query, its words and
// the expansion terms.
func Score(s *ports.SchemeRecord, q string, words, terms []string) int {
	name := textnorm.Query(s.Name)
	text := SearchableText(s)

	score := 0
	if strings.Contains(name, q) {
		score += WeightNameContainsQuery
	}
	if d := fuzzy.Distance(q, textnorm.FirstWord(name)); d <= fuzzy.Threshold {
		score += max(WeightFirstWordFuzzy-FuzzyPenaltyPerEdit*d, 0)
	}
	for _, t := range terms {
		if strings.Contains(name, t) {
			score += WeightTermInName
		}
		if strings.Contains(text, t) {
			score += WeightTermInText
		}
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) >= MinWordLen && strings.Contains(text, w) {
			score += WeightWordInText
		}
	}
	return score
}

// SearchableText is the normalized concatenation of name, details, tags and
// the raw source category.
func SearchableText(s *ports.SchemeRecord) string {
	return textnorm.Query(s.Name + " " + s.DetailsText + " " + s.TagsText + " " + s.CategoryText)
}

// fallback picks one scheme when scoring found nothing: the first whose name
// contains the query, else the earliest whose first name word is closest to
// the query within the fuzzy threshold.
func fallback(q string, pool []*ports.SchemeRecord) (ports.Hit, bool) {
	for _, s := range pool {
		if strings.Contains(textnorm.Query(s.Name), q) {
			return ports.Hit{Scheme: s, Score: WeightNameContainsQuery}, true
		}
	}

	var best *ports.SchemeRecord
	bestDist := fuzzy.Threshold + 1
	for _, s := range pool {
		if d := fuzzy.Distance(q, textnorm.FirstWord(textnorm.Query(s.Name))); d < bestDist {
			best, bestDist = s, d
		}
	}
	if best == nil {
		return ports.Hit{}, false
	}
	return ports.Hit{Scheme: best, Score: WeightFirstWordFuzzy - FuzzyPenaltyPerEdit*bestDist}, true
}
