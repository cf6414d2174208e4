// Package router answers a free-text chat query with the most useful reply
// the corpus supports: a single scheme, a category listing, search results or
// a request for clarification.
//
// Route holds no state. Everything it reads arrives in Context, so replies
// depend only on the query and the snapshot the caller passes in.
package router

import (
	"strings"

	"github.com/corey/sahayak/internal/domain/alias"
	"github.com/corey/sahayak/internal/domain/corpus"
	"github.com/corey/sahayak/internal/domain/eligibility"
	"github.com/corey/sahayak/internal/domain/search"
	"github.com/corey/sahayak/internal/domain/textnorm"
	"github.com/corey/sahayak/internal/ports"
)

// Reply sizes.
const (
	SearchLimit   = 5
	CategoryLimit = 5
	CategoryShown = 4
	ResultsShown  = 3
)

// Kind says which reply shape Route produced.
type Kind string

const (
	KindGreeting    Kind = "greeting"
	KindThanks      Kind = "thanks"
	KindScheme      Kind = "scheme"      // exactly one scheme, shown as a card
	KindCategory    Kind = "category"    // a category listing, Label names it
	KindResults     Kind = "results"     // several search hits
	KindNoEligible  Kind = "no_eligible" // matches existed but the profile excludes them all
	KindSuggestions Kind = "suggestions" // nothing matched; ask the user to clarify
)

var (
	greetings = []string{"hi", "hello", "hey", "namaste", "नमस्ते", "नमस्कार"}
	thanks    = []string{"thanks", "thank you", "धन्यवाद", "shukriya"}
)

// Context is the snapshot a query is answered against.
type Context struct {
	Corpus     *corpus.Corpus
	Engine     *search.Engine
	Aliases    *alias.Index
	Classifier *eligibility.Classifier

	State           string // selected state; empty means all states
	Profile         *ports.UserProfile
	EligibilityMode bool
}

// eligibilityActive reports whether replies must be narrowed to the profile.
func (c Context) eligibilityActive() bool {
	return c.EligibilityMode && c.Classifier != nil && eligibility.Evaluable(c.Profile)
}

func (c Context) narrow(schemes []*ports.SchemeRecord) []*ports.SchemeRecord {
	if !c.eligibilityActive() {
		return schemes
	}
	return c.Classifier.FilterEligible(schemes, c.Profile)
}

// Reply is the routed answer to one query.
type Reply struct {
	Kind     Kind                  `json:"kind"`
	Intent   Intent                `json:"intent"`
	Query    string                `json:"query"`
	Category string                `json:"category,omitempty"`
	Label    string                `json:"label,omitempty"`
	Schemes  []*ports.SchemeRecord `json:"schemes,omitempty"`
}

// Scheme returns the first scheme in the reply, or nil.
func (r Reply) Scheme() *ports.SchemeRecord {
	if len(r.Schemes) == 0 {
		return nil
	}
	return r.Schemes[0]
}

// Route answers query. Checks run in priority order: greeting, thanks, a
// direct scheme or alias match, a category pattern, general search results,
// then a no-eligible or clarification reply.
func Route(query string, ctx Context) Reply {
	q := normalize(query)
	reply := Reply{Query: query, Intent: InferIntent(query)}

	for _, g := range greetings {
		if q == g {
			reply.Kind = KindGreeting
			return reply
		}
	}
	for _, t := range thanks {
		if strings.Contains(q, t) {
			reply.Kind = KindThanks
			return reply
		}
	}

	term, isAlias := q, false
	if ctx.Aliases != nil {
		if key, ok := ctx.Aliases.Canonical(q); ok {
			term, isAlias = key, true
		}
	}

	var results []*ports.SchemeRecord
	if ctx.Engine != nil {
		res := ctx.Engine.Search(term, ctx.Corpus.All(), ports.SearchOptions{
			State: ctx.State,
			Limit: SearchLimit,
		})
		results = ctx.narrow(res.Schemes())
	}

	if len(results) > 0 {
		first := results[0]
		if isAlias || strings.Contains(textnorm.Query(first.Name), textnorm.Query(q)) {
			return reply.with(KindScheme, results[:1])
		}
	}

	for _, p := range CategoryPatterns {
		if !p.Pattern.MatchString(q) {
			continue
		}
		listed := ctx.narrow(ctx.Corpus.Filter(ports.SearchOptions{
			Category: p.Category,
			State:    ctx.State,
			Limit:    CategoryLimit,
		}))
		if len(listed) > 0 {
			if len(listed) > CategoryShown {
				listed = listed[:CategoryShown]
			}
			reply.Category, reply.Label = p.Category, p.Label
			return reply.with(KindCategory, listed)
		}
		if ctx.eligibilityActive() {
			reply.Category, reply.Label = p.Category, p.Label
			reply.Kind = KindNoEligible
			return reply
		}
	}

	switch {
	case len(results) == 1:
		return reply.with(KindScheme, results)
	case len(results) > 1:
		if len(results) > ResultsShown {
			results = results[:ResultsShown]
		}
		return reply.with(KindResults, results)
	case ctx.eligibilityActive():
		reply.Kind = KindNoEligible
	default:
		reply.Kind = KindSuggestions
	}
	return reply
}

func (r Reply) with(kind Kind, schemes []*ports.SchemeRecord) Reply {
	r.Kind = kind
	r.Schemes = schemes
	return r
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
