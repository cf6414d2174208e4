// Package textnorm folds user queries, names and vocabulary into one comparable
// form so Latin transliterations and native-script strings are matched uniformly.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fold applies NFKC compatibility normalization, lowercases and trims.
func Fold(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFKC.String(s)))
}

// Query folds s, turns hyphens and underscores into spaces and collapses runs
// of whitespace, so "PM-Kisan" and "pm  kisan" compare equal.
func Query(s string) string {
	s = Fold(s)
	s = strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Words splits an already-normalized string on whitespace.
func Words(s string) []string {
	return strings.Fields(s)
}

// FirstWord returns the first whitespace-separated word of s, or "" when s is blank.
func FirstWord(s string) string {
	if w := strings.Fields(s); len(w) > 0 {
		return w[0]
	}
	return ""
}
