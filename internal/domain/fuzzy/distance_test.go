package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Levenshtein distance: the fuzzy gate and ranking signal
// Expectation: classic unit-cost edit distance over code points, symmetric,
// zero on identity, usable on Devanagari as well as Latin input.
// =============================================================================

func TestDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"flaw", "lawn", 2},
		{"mnrega", "mgnrega", 1},
		{"kisan", "kissan", 1},
		{"yojna", "yojana", 1},
		{"ayushman", "ayushmann", 1},
		{"किसान", "किसान", 0},
		{"मनरेगा", "नरेगा", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
}

func TestDistance_Identity(t *testing.T) {
	for _, s := range []string{"a", "pm kisan", "ujjwala", "आयुष्मान भारत", "100 days"} {
		assert.Equal(t, 0, Distance(s, s), s)
	}
}

func TestDistance_Symmetry(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"mgnrega", "manrega"},
		{"pension", "pensions"},
		{"a", "xyz"},
		{"महिला", "mahila"},
	}
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestDistance_CountsRunesNotBytes(t *testing.T) {
	// One Devanagari code point is three UTF-8 bytes.
	assert.Equal(t, 1, Distance("घर", "घ"))
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("kisan", "kisaan", 1))
	assert.True(t, Within("mnrega", "mgnrega", Threshold))
	assert.False(t, Within("mudra", "ujjwala", Threshold))
	assert.False(t, Within("ab", "abcdef", Threshold), "length gap alone exceeds max")
}
