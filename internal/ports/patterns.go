package ports

// PatternMatcher finds indicator phrases in content using multi-pattern matching
// (Aho-Corasick). A single pass over the content finds every phrase at once,
// regardless of how many phrases are in the set.
//
// Content is matched as-is (caller lowercases). A matcher is immutable once
// built; rebuild by constructing a new one.
type PatternMatcher interface {
	// Match returns the distinct patterns found in content, in pattern
	// declaration order. Returns nil if none match.
	Match(content string) []string

	// Contains reports whether any pattern occurs in content.
	Contains(content string) bool
}

// MatchOptions controls how a matcher accepts an occurrence.
type MatchOptions struct {
	// WholeWord accepts an occurrence only when it is not flanked by a
	// letter or digit on either side ("news" does not contain the word "ews").
	WholeWord bool
}

// MatcherFactory compiles a pattern set into a matcher.
type MatcherFactory func(patterns []string, opts MatchOptions) PatternMatcher
