package ahocorasick

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/sahayak/internal/ports"
)

// =============================================================================
// Aho-Corasick Pattern Matcher: single-pass phrase detection
// Expectation: given a set of indicator phrases, report every phrase present
// in lowercased scheme text, optionally only on whole-word boundaries.
// =============================================================================

func TestMatcher_SingleKeyword(t *testing.T) {
	m := NewMatcher([]string{"widow"}, ports.MatchOptions{})
	assert.Equal(t, []string{"widow"}, m.Match("pension for a widow of a soldier"))
}

func TestMatcher_MultipleKeywords_PatternOrder(t *testing.T) {
	m := NewMatcher([]string{"farmer", "kisan", "krishi"}, ports.MatchOptions{})
	got := m.Match("krishi support to every kisan and farmer")
	assert.Equal(t, []string{"farmer", "kisan", "krishi"}, got)
}

func TestMatcher_OverlappingKeywords(t *testing.T) {
	m := NewMatcher([]string{"women", "men"}, ports.MatchOptions{})
	assert.Equal(t, []string{"women", "men"}, m.Match("for women"))
}

func TestMatcher_WholeWord(t *testing.T) {
	m := NewMatcher([]string{"men only", "ews"}, ports.MatchOptions{WholeWord: true})

	assert.Nil(t, m.Match("women only"), "'men only' inside 'women only' is not a whole word")
	assert.Nil(t, m.Match("latest news on the scheme"), "'ews' inside 'news'")
	assert.Equal(t, []string{"men only"}, m.Match("open to men only."))
	assert.Equal(t, []string{"ews"}, m.Match("ews category applicants"))
	assert.True(t, m.Contains("(ews)"))
}

func TestMatcher_WholeWord_LaterOccurrenceCounts(t *testing.T) {
	// First occurrence is embedded, second stands alone.
	m := NewMatcher([]string{"ews"}, ports.MatchOptions{WholeWord: true})
	assert.True(t, m.Contains("news for ews families"))
}

func TestMatcher_Devanagari(t *testing.T) {
	m := NewMatcher([]string{"महिला", "किसान"}, ports.MatchOptions{WholeWord: true})
	assert.Equal(t, []string{"महिला"}, m.Match("केवल महिला लाभार्थी"))
	assert.False(t, m.Contains("किसानों"), "trailing vowel sign keeps the word going")
}

func TestMatcher_NoMatch(t *testing.T) {
	m := NewMatcher([]string{"auth"}, ports.MatchOptions{})
	assert.Nil(t, m.Match("hello world"))
	assert.False(t, m.Contains("hello world"))
}

func TestMatcher_EmptyPatternSet(t *testing.T) {
	m := NewMatcher(nil, ports.MatchOptions{})
	assert.Nil(t, m.Match("anything"))
	assert.False(t, m.Contains("anything"))
	assert.Equal(t, 0, m.PatternCount())

	m = NewMatcher([]string{"", "bpl"}, ports.MatchOptions{})
	assert.Equal(t, 1, m.PatternCount())
}

func TestMatcher_CaseSensitive(t *testing.T) {
	// Caller lowercases before matching.
	m := NewMatcher([]string{"bpl"}, ports.MatchOptions{})
	assert.False(t, m.Contains("BPL card holders"))
	assert.True(t, m.Contains(strings.ToLower("BPL card holders")))
}

func TestFactory_SatisfiesPort(t *testing.T) {
	var f ports.MatcherFactory = Factory
	m := f([]string{"student"}, ports.MatchOptions{WholeWord: true})
	require.NotNil(t, m)
	assert.True(t, m.Contains("any student may apply"))
}

func BenchmarkMatch(b *testing.B) {
	patterns := make([]string, 500)
	for i := range patterns {
		patterns[i] = fmt.Sprintf("kw%03d", i)
	}
	m := NewMatcher(patterns, ports.MatchOptions{WholeWord: true})
	content := strings.Repeat("eligibility text with kw250 and kw499 inside ", 25)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Match(content)
	}
}
