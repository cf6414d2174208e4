// Package ahocorasick provides multi-pattern string matching using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library for O(n + m + z) matching.
package ahocorasick

import (
	"unicode"
	"unicode/utf8"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/sahayak/internal/ports"
)

// Matcher implements ports.PatternMatcher over a fixed phrase set.
// It is immutable after NewMatcher and safe for concurrent use.
type Matcher struct {
	automaton aho.AhoCorasick
	patterns  []string
	wholeWord bool
}

var _ ports.PatternMatcher = (*Matcher)(nil)

// NewMatcher compiles the automaton from patterns. Empty patterns are ignored.
func NewMatcher(patterns []string, opts ports.MatchOptions) *Matcher {
	p := make([]string, 0, len(patterns))
	for _, s := range patterns {
		if s != "" {
			p = append(p, s)
		}
	}
	m := &Matcher{patterns: p, wholeWord: opts.WholeWord}
	if len(p) > 0 {
		builder := aho.NewAhoCorasickBuilder(aho.Opts{
			DFA: true,
		})
		m.automaton = builder.Build(p)
	}
	return m
}

// Factory adapts NewMatcher to ports.MatcherFactory.
func Factory(patterns []string, opts ports.MatchOptions) ports.PatternMatcher {
	return NewMatcher(patterns, opts)
}

// Match returns the distinct patterns found in content, in pattern order.
func (m *Matcher) Match(content string) []string {
	if len(m.patterns) == 0 || content == "" {
		return nil
	}
	found := make([]bool, len(m.patterns))
	hit := false
	m.scan(content, func(idx int) bool {
		found[idx] = true
		hit = true
		return true
	})
	if !hit {
		return nil
	}

	seen := make(map[string]bool, len(m.patterns))
	var result []string
	for i, ok := range found {
		if ok && !seen[m.patterns[i]] {
			seen[m.patterns[i]] = true
			result = append(result, m.patterns[i])
		}
	}
	return result
}

// Contains reports whether any pattern occurs in content.
func (m *Matcher) Contains(content string) bool {
	if len(m.patterns) == 0 || content == "" {
		return false
	}
	hit := false
	m.scan(content, func(int) bool {
		hit = true
		return false
	})
	return hit
}

// PatternCount returns the number of patterns in the automaton.
func (m *Matcher) PatternCount() int {
	return len(m.patterns)
}

// scan visits every accepted occurrence, overlapping ones included, until
// visit returns false.
func (m *Matcher) scan(content string, visit func(patternIdx int) bool) {
	iter := m.automaton.IterOverlappingByte([]byte(content))
	for next := iter.Next(); next != nil; next = iter.Next() {
		match := *next
		if m.wholeWord && !atWordBoundary(content, match.Start(), match.End()) {
			continue
		}
		if !visit(match.Pattern()) {
			return
		}
	}
}

// atWordBoundary reports whether content[start:end] is not flanked by a word
// character on either side.
func atWordBoundary(content string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(content[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(content) {
		r, _ := utf8.DecodeRuneInString(content[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// Devanagari vowel signs are marks, so they count as part of a word.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
