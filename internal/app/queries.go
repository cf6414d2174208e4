package app

import (
	"fmt"
	"strings"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/domain/router"
	"github.com/corey/sahayak/internal/ports"
	"go.uber.org/zap"
)

var _ socket.AppQueries = (*App)(nil)

// Search ranks the served corpus against query. Implements socket.AppQueries.
func (a *App) Search(query string, opts ports.SearchOptions) *ports.SearchResult {
	if opts.Limit <= 0 {
		opts.Limit = a.Config.SearchLimit
	}
	return a.Engine.Search(query, a.current().corpus.All(), opts)
}

// Schemes lists the served corpus through opts. Implements socket.AppQueries.
func (a *App) Schemes(opts ports.SearchOptions) []*ports.SchemeRecord {
	return a.current().corpus.Filter(opts)
}

// Scheme looks a scheme up by ID or slug. Implements socket.AppQueries.
func (a *App) Scheme(idOrSlug string) (*ports.SchemeRecord, bool) {
	return a.current().corpus.ByID(strings.TrimSpace(idOrSlug))
}

// Ask routes a chat query. With UseSaved, the saved state, profile,
// eligibility mode and language fill whatever the request leaves unset.
// Implements socket.AppQueries.
func (a *App) Ask(p socket.AskParams) socket.AskResult {
	ctx := router.Context{
		Corpus:          a.current().corpus,
		Engine:          a.Engine,
		Aliases:         a.Aliases,
		Classifier:      a.Classifier,
		State:           strings.ToLower(strings.TrimSpace(p.State)),
		Profile:         p.Profile,
		EligibilityMode: p.EligibleOnly,
	}
	lang := p.Lang

	if p.UseSaved {
		settings := a.savedSettings()
		if ctx.State == "" {
			ctx.State = settings.State
		}
		if !ctx.EligibilityMode {
			ctx.EligibilityMode = settings.EligibleOnly
		}
		if lang == "" {
			lang = settings.Lang
		}
		if ctx.Profile == nil {
			ctx.Profile = a.savedProfile()
		}
	}
	if ctx.State == "" {
		ctx.State = a.Config.DefaultState
	}
	if lang == "" {
		lang = a.Config.Lang
	}
	if ctx.Profile != nil {
		n := ctx.Profile.Normalized()
		ctx.Profile = &n
	}

	reply := router.Route(p.Query, ctx)
	a.Log.Debug("query routed",
		zap.String("query", p.Query),
		zap.String("kind", string(reply.Kind)),
		zap.Int("schemes", len(reply.Schemes)))
	return socket.AskResult{Reply: reply, Headline: reply.Headline(lang)}
}

// Eligible evaluates a profile against the requested schemes, or against
// every scheme Options selects when no IDs are given. Implements socket.AppQueries.
func (a *App) Eligible(p socket.EligibleParams) (socket.EligibleResult, error) {
	prof := p.Profile.Normalized()
	if !prof.Valid() {
		return socket.EligibleResult{}, fmt.Errorf("eligible: %w", ports.ErrInvalidProfile)
	}

	c := a.current().corpus
	var (
		candidates []*ports.SchemeRecord
		unknown    []string
	)
	if len(p.IDs) > 0 {
		for _, id := range p.IDs {
			if s, ok := c.ByID(strings.TrimSpace(id)); ok {
				candidates = append(candidates, s)
			} else {
				unknown = append(unknown, id)
			}
		}
	} else {
		candidates = c.Filter(p.Options)
	}

	result := socket.EligibleResult{Eligible: []*ports.SchemeRecord{}, Unknown: unknown}
	for _, s := range candidates {
		d := a.Classifier.Evaluate(s, &prof)
		if d.Eligible {
			result.Eligible = append(result.Eligible, s)
			continue
		}
		result.Excluded = append(result.Excluded, socket.Exclusion{ID: s.ID, Name: s.Name, Decision: d})
	}
	result.Count = len(result.Eligible)
	return result, nil
}

// Categories lists catalog categories with the number of served schemes in
// each. Implements socket.AppQueries.
func (a *App) Categories(lang string) []socket.CategoryInfo {
	c := a.current().corpus
	cats := a.Catalog.Categories()
	out := make([]socket.CategoryInfo, 0, len(cats))
	for _, cat := range cats {
		out = append(out, socket.CategoryInfo{
			Key:   cat.Key,
			Name:  a.Catalog.CategoryName(cat.Key, lang),
			Icon:  cat.Icon,
			Color: cat.Color,
			Count: c.CategoryCount(cat.Key),
		})
	}
	return out
}

// States lists states and union territories by English name, with the number
// of state-specific schemes served for each. Implements socket.AppQueries.
func (a *App) States(lang string) []socket.StateInfo {
	perState := make(map[string]int)
	for _, s := range a.current().corpus.All() {
		if s.IsStateSpecific && s.State != "" {
			perState[s.State]++
		}
	}

	keys := a.Catalog.StatesSorted()
	out := make([]socket.StateInfo, 0, len(keys))
	for _, key := range keys {
		st, _ := a.Catalog.State(key)
		out = append(out, socket.StateInfo{
			Key:     key,
			Name:    a.Catalog.StateName(key, lang),
			Hi:      st.Hi,
			Code:    st.Code,
			Schemes: perState[key],
		})
	}
	return out
}

// Corpus describes the served snapshot. Implements socket.AppQueries.
func (a *App) Corpus() socket.CorpusInfo {
	s := a.current()
	return socket.CorpusInfo{
		Source:     s.source,
		LoadedAt:   s.loadedAt,
		Schemes:    s.corpus.Len(),
		Categories: len(s.corpus.Categories()),
		States:     len(s.corpus.States()),
		FromCache:  s.fromCache,
	}
}

func (a *App) savedSettings() ports.Settings {
	st, err := a.Store.LoadSettings()
	if err != nil {
		a.Log.Warn("load settings", zap.Error(err))
		return ports.Settings{}
	}
	return *st
}

func (a *App) savedProfile() *ports.UserProfile {
	p, err := a.Store.LoadProfile()
	if err != nil {
		a.Log.Warn("load profile", zap.Error(err))
		return nil
	}
	return p
}
