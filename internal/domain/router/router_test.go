package router

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/sahayak/atlas"
	"github.com/corey/sahayak/internal/adapters/ahocorasick"
	"github.com/corey/sahayak/internal/domain/alias"
	"github.com/corey/sahayak/internal/domain/corpus"
	"github.com/corey/sahayak/internal/domain/eligibility"
	"github.com/corey/sahayak/internal/domain/search"
	"github.com/corey/sahayak/internal/ports"
	"github.com/corey/sahayak/rules"
)

// =============================================================================
// Chat router: priority-ordered reply selection
// Expectation: greetings and thanks short-circuit, aliases and exact names
// resolve to one scheme, group words list a category, eligibility narrows
// every listing and an empty narrowed listing says so.
// =============================================================================

func rec(id, name, cat, elig string) *ports.SchemeRecord {
	return &ports.SchemeRecord{ID: id, Name: name, Categories: []string{cat}, EligibilityText: elig}
}

func stateRec(id, name, cat, state string) *ports.SchemeRecord {
	r := rec(id, name, cat, "")
	r.IsStateSpecific, r.State = true, state
	return r
}

func newContext(t *testing.T, records ...*ports.SchemeRecord) Context {
	t.Helper()
	if len(records) == 0 {
		records = []*ports.SchemeRecord{
			rec("pmk", "PM Kisan Samman Nidhi", "agriculture", "farmers only"),
			rec("pmay", "Pradhan Mantri Awas Yojana", "housing", ""),
			rec("msk", "Mahila Shakti Kendra", "women", "women only"),
			rec("ssy", "Sukanya Samriddhi Yojana", "women", "girl child"),
			rec("ab", "Ayushman Bharat", "health", ""),
			stateRec("raitha", "Raitha Siri", "agriculture", "karnataka"),
			stateRec("kalia", "KALIA", "agriculture", "odisha"),
			rec("apy", "Atal Pension Yojana", "social", ""),
		}
	}
	ix, err := alias.Load(atlas.FS, "v1", ahocorasick.Factory)
	require.NoError(t, err)
	rs, err := eligibility.LoadRulesFromFS(rules.FS, "eligibility")
	require.NoError(t, err)
	cl, err := eligibility.NewClassifier(rs, ahocorasick.Factory, nil)
	require.NoError(t, err)
	return Context{
		Corpus:     corpus.New(records),
		Engine:     search.NewEngine(ix),
		Aliases:    ix,
		Classifier: cl,
	}
}

func withProfile(ctx Context, mut func(*ports.UserProfile)) Context {
	p := &ports.UserProfile{
		State:         "karnataka",
		Gender:        ports.GenderMale,
		AgeYears:      30,
		Occupation:    ports.OccupationEmployed,
		CasteCategory: ports.CasteGeneral,
	}
	if mut != nil {
		mut(p)
	}
	ctx.Profile = p
	ctx.EligibilityMode = true
	return ctx
}

func ids(r Reply) []string {
	out := make([]string, 0, len(r.Schemes))
	for _, s := range r.Schemes {
		out = append(out, s.ID)
	}
	return out
}

func TestRoute_GreetingAndThanks(t *testing.T) {
	ctx := newContext(t)
	for _, q := range []string{"hi", "Hello", "  namaste ", "नमस्ते"} {
		assert.Equal(t, KindGreeting, Route(q, ctx).Kind, q)
	}
	assert.NotEqual(t, KindGreeting, Route("hello there", ctx).Kind, "greetings match exactly")

	for _, q := range []string{"thanks!", "thank you so much", "bahut shukriya", "धन्यवाद"} {
		assert.Equal(t, KindThanks, Route(q, ctx).Kind, q)
	}
}

func TestRoute_AliasResolvesToScheme(t *testing.T) {
	ctx := newContext(t)

	r := Route("pmkisan", ctx)
	assert.Equal(t, KindScheme, r.Kind)
	assert.Equal(t, []string{"pmk"}, ids(r))

	r = Route("Ayushman Bharat", ctx)
	assert.Equal(t, KindScheme, r.Kind)
	assert.Equal(t, "ab", r.Scheme().ID)
}

func TestRoute_StrictNameMatch(t *testing.T) {
	ctx := newContext(t)
	r := Route("raitha siri", ctx)
	assert.Equal(t, KindScheme, r.Kind)
	assert.Equal(t, "raitha", r.Scheme().ID)
}

func TestRoute_CategoryListing(t *testing.T) {
	ctx := newContext(t)

	r := Route("women schemes", ctx)
	assert.Equal(t, KindCategory, r.Kind)
	assert.Equal(t, "women", r.Category)
	assert.Equal(t, "Women", r.Label)
	assert.Equal(t, []string{"msk", "ssy"}, ids(r))

	ctx.State = "karnataka"
	r = Route("schemes for farmers in my village", ctx)
	assert.Equal(t, KindCategory, r.Kind)
	assert.Equal(t, "Farmer", r.Label)
	assert.Equal(t, []string{"pmk", "raitha"}, ids(r), "other states' schemes are left out")
}

func TestRoute_CategoryListingCapped(t *testing.T) {
	var recs []*ports.SchemeRecord
	for i := 1; i <= 6; i++ {
		recs = append(recs, rec(fmt.Sprintf("h%d", i), fmt.Sprintf("Arogya Card %d", i), "health", ""))
	}
	ctx := newContext(t, recs...)

	r := Route("medical help", ctx)
	require.Equal(t, KindCategory, r.Kind)
	assert.Equal(t, []string{"h1", "h2", "h3", "h4"}, ids(r))
}

func TestRoute_EligibilityNarrowsCategory(t *testing.T) {
	ctx := withProfile(newContext(t), nil)

	r := Route("women schemes", ctx)
	assert.Equal(t, KindNoEligible, r.Kind)
	assert.Equal(t, "Women", r.Label)
	assert.Empty(t, r.Schemes)
}

func TestRoute_EligibilityNarrowsAlias(t *testing.T) {
	ctx := withProfile(newContext(t), func(p *ports.UserProfile) {
		p.Occupation = ports.OccupationStudent
	})

	// PM Kisan is for farmers; the agriculture listing keeps only the
	// profile's own state scheme.
	r := Route("pmkisan", ctx)
	assert.Equal(t, KindCategory, r.Kind)
	assert.Equal(t, []string{"raitha"}, ids(r))
}

func TestRoute_SearchResults(t *testing.T) {
	ctx := newContext(t)
	r := Route("samriddhi nidhi", ctx)
	assert.Equal(t, KindResults, r.Kind)
	assert.GreaterOrEqual(t, len(r.Schemes), 2)
	assert.LessOrEqual(t, len(r.Schemes), ResultsShown)
	assert.Contains(t, ids(r), "pmk")
	assert.Contains(t, ids(r), "ssy")
}

func TestRoute_NothingFound(t *testing.T) {
	ctx := newContext(t)
	assert.Equal(t, KindSuggestions, Route("xyzzy qwerty", ctx).Kind)

	ctx = withProfile(ctx, nil)
	assert.Equal(t, KindNoEligible, Route("xyzzy qwerty", ctx).Kind)
}

func TestRoute_InvalidProfileDoesNotNarrow(t *testing.T) {
	ctx := newContext(t)
	ctx.EligibilityMode = true
	ctx.Profile = &ports.UserProfile{State: ""}

	r := Route("women schemes", ctx)
	assert.Equal(t, KindCategory, r.Kind)
	assert.Len(t, r.Schemes, 2)
	assert.Equal(t, KindSuggestions, Route("xyzzy qwerty", ctx).Kind)
}

func TestRoute_EmptyContext(t *testing.T) {
	assert.Equal(t, KindSuggestions, Route("pm kisan", Context{}).Kind)
	assert.Equal(t, KindGreeting, Route("hi", Context{}).Kind)
}

func TestRoute_CarriesIntent(t *testing.T) {
	ctx := newContext(t)
	r := Route("how to apply for pmkisan", ctx)
	assert.Equal(t, IntentApply, r.Intent)
}

func TestInferIntent(t *testing.T) {
	tests := []struct {
		q    string
		want Intent
	}{
		{"pm kisan payment status", IntentStatus},
		{"track my application", IntentStatus},
		{"am I eligible for ayushman", IntentEligibility},
		{"documents needed for awas", IntentDocuments},
		{"how to apply", IntentApply},
		{"आवेदन कैसे करें", IntentApply},
		{"pm kisan", IntentGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferIntent(tt.q), tt.q)
	}
}

func TestCategoryPatterns_Order(t *testing.T) {
	first := func(q string) string {
		for _, p := range CategoryPatterns {
			if p.Pattern.MatchString(q) {
				return p.Label
			}
		}
		return ""
	}
	assert.Equal(t, "Women", first("loans for women farmers"))
	assert.Equal(t, "Labour/Worker", first("health card for workers"))
	assert.Equal(t, "Banking/Loan", first("mudra loan for skill training"))
	assert.Equal(t, "Employment", first("rozgar"))
	assert.Equal(t, "Senior Citizen", first("वृद्ध पेंशन"))
	assert.Equal(t, "", first("ration card"))
}

func TestHeadline(t *testing.T) {
	r := Reply{Kind: KindCategory, Label: "Women"}
	assert.Equal(t, "Women Schemes:", r.Headline("en"))
	assert.Equal(t, "Women योजनाएं:", r.Headline("hi"))

	r = Reply{Kind: KindResults, Schemes: make([]*ports.SchemeRecord, 3)}
	assert.Equal(t, "Found 3 scheme(s):", r.Headline("fr"))

	assert.Contains(t, Reply{Kind: KindNoEligible, Query: "xyz"}.Headline("en"), `"xyz"`)
	assert.Empty(t, Reply{Kind: KindScheme}.Headline("en"))
}
