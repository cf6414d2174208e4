package alias

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/sahayak/atlas"
	"github.com/corey/sahayak/internal/adapters/ahocorasick"
)

// =============================================================================
// Alias index: query widening and category routing vocabulary
// Expectation: misspellings, transliterations and native-script forms widen
// to the canonical surfaces; category routing is first-match-wins in the
// declared order.
// =============================================================================

func loadIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Load(atlas.FS, "v1", ahocorasick.Factory)
	require.NoError(t, err)
	return ix
}

func TestLoad_EmbeddedAtlas(t *testing.T) {
	ix := loadIndex(t)
	assert.NotEmpty(t, ix.Entries())
	require.NotEmpty(t, ix.Categories())
	assert.Equal(t, "agriculture", ix.Categories()[0].Category, "declared order is preserved")
}

func TestExpandWord_Misspelling(t *testing.T) {
	ix := loadIndex(t)
	got := ix.ExpandWord("mnrega")
	assert.Contains(t, got, "mnrega", "term itself is always present")
	assert.Contains(t, got, "mgnrega")
	assert.Contains(t, got, "nrega")
}

func TestExpandWord_FuzzyWithinOne(t *testing.T) {
	ix := loadIndex(t)
	got := ix.ExpandWord("ujjwla")
	assert.Contains(t, got, "ujjwala")
	assert.Contains(t, got, "lpg")
}

func TestExpandPhrase_KisanYojna(t *testing.T) {
	ix := loadIndex(t)
	got := ix.ExpandPhrase("kisan yojna")
	assert.Contains(t, got, "pm kisan")
	assert.Contains(t, got, "kisan")
}

func TestExpand_NativeScript(t *testing.T) {
	ix := loadIndex(t)
	assert.Contains(t, ix.Expand("मनरेगा"), "mgnrega")
	assert.Contains(t, ix.Expand("आयुष्मान भारत"), "pmjay")
}

func TestExpand_SortedDeduplicated(t *testing.T) {
	ix := loadIndex(t)
	got := ix.Expand("pension")
	assert.IsNonDecreasing(t, got)
	seen := map[string]bool{}
	for _, s := range got {
		assert.False(t, seen[s], "duplicate %q", s)
		seen[s] = true
	}
}

func TestExpand_Empty(t *testing.T) {
	ix := loadIndex(t)
	assert.Nil(t, ix.Expand("   "))
	assert.Nil(t, ix.ExpandPhrase(""))
}

func TestExpand_Deterministic(t *testing.T) {
	ix := loadIndex(t)
	assert.Equal(t, ix.ExpandPhrase("pm awas yojana"), ix.ExpandPhrase("pm awas yojana"))
}

func TestCanonical(t *testing.T) {
	ix := loadIndex(t)

	key, ok := ix.Canonical("MNREGA")
	require.True(t, ok)
	assert.Equal(t, "mgnrega", key, "first entry listing the surface wins")

	key, ok = ix.Canonical("kisan yojna")
	require.True(t, ok)
	assert.Equal(t, "kisan yojna", key)

	_, ok = ix.Canonical("what is the best scheme")
	assert.False(t, ok)
}

func TestMatchCategory(t *testing.T) {
	ix := loadIndex(t)
	tests := []struct {
		term string
		want string
	}{
		{"farmer", "agriculture"},
		{"I am a kisan", "agriculture"},
		{"scholarship for girl", "education"}, // education is declared before women
		{"महिला", "women"},
		{"loan", "banking"},
		{"old age pension", "social"},
		{"need lpg connection", "utilities"},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, ok := ix.MatchCategory(tt.term)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ix.MatchCategory("zzzz")
	assert.False(t, ok)
	_, ok = ix.MatchCategory("")
	assert.False(t, ok)
}

func TestMatchCategory_KeywordContainsTerm(t *testing.T) {
	ix := loadIndex(t)
	got, ok := ix.MatchCategory("schol")
	require.True(t, ok)
	assert.Equal(t, "education", got)
}

func TestMatchCategory_ScanAndAutomatonAgree(t *testing.T) {
	withAC := loadIndex(t)
	plain, err := Load(atlas.FS, "v1", nil)
	require.NoError(t, err)

	for _, term := range []string{
		"farmer", "student loan", "women housing", "ration card", "doctor",
		"divyang pension", "job", "bank", "घर", "nothing here", "ma",
	} {
		a, aok := withAC.MatchCategory(term)
		b, bok := plain.MatchCategory(term)
		assert.Equal(t, bok, aok, term)
		assert.Equal(t, b, a, term)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]Entry{{Key: "", Surfaces: []string{"x"}}}, nil, nil)
	assert.Error(t, err)

	_, err = New([]Entry{{Key: "a", Surfaces: []string{"x"}}, {Key: "A", Surfaces: []string{"y"}}}, nil, nil)
	assert.ErrorContains(t, err, "duplicate")

	_, err = New([]Entry{{Key: "a"}}, nil, nil)
	assert.ErrorContains(t, err, "no surfaces")

	_, err = New(nil, []CategoryKeywords{{Category: "health"}}, nil)
	assert.ErrorContains(t, err, "no keywords")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(fstest.MapFS{}, "v1", nil)
	assert.Error(t, err)

	fsys := fstest.MapFS{
		"v1/aliases.json":           {Data: []byte(`[{"key":"a","surfaces":["b"]}]`)},
		"v1/category_keywords.json": {Data: []byte(`not json`)},
	}
	_, err = Load(fsys, "v1", nil)
	assert.ErrorContains(t, err, "parse")
}
