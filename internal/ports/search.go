package ports

// DefaultSearchLimit caps search results when SearchOptions.Limit is unset.
const DefaultSearchLimit = 10

// SearchOptions narrows the corpus before scoring.
//
// State handling: with StateOnly, only schemes of exactly State survive.
// Otherwise a non-empty State keeps central schemes plus that state's schemes.
// ExcludeState disables the state filter entirely (browse across all states).
type SearchOptions struct {
	Category     string `json:"category,omitempty"`
	State        string `json:"state,omitempty"`
	StateOnly    bool   `json:"state_only,omitempty"`
	ExcludeState bool   `json:"exclude_state,omitempty"`
	Popular      bool   `json:"popular,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// Hit is one ranked scheme with its positive score.
type Hit struct {
	Scheme *SchemeRecord `json:"scheme"`
	Score  int           `json:"score"`
}

// SearchResult is an ordered hit list, best first.
type SearchResult struct {
	Hits []Hit `json:"hits"`
}

// Len returns the number of hits.
func (r *SearchResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Hits)
}

// Schemes returns the hit schemes in rank order.
func (r *SearchResult) Schemes() []*SchemeRecord {
	if r == nil {
		return nil
	}
	out := make([]*SchemeRecord, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.Scheme
	}
	return out
}
