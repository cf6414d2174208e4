// Package socket implements a JSON-over-Unix-socket protocol for the sahayak daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/corey/sahayak/internal/domain/eligibility"
	"github.com/corey/sahayak/internal/domain/router"
	"github.com/corey/sahayak/internal/ports"
)

// SocketPath returns the Unix socket path for a sahayak home directory.
// Format: /tmp/sahayak-{first12hex}.sock
func SocketPath(home string) string {
	abs, err := filepath.Abs(home)
	if err != nil {
		abs = home
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/sahayak-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodSearch     = "search"
	MethodAsk        = "ask"
	MethodEligible   = "eligible"
	MethodSchemes    = "schemes"
	MethodCategories = "categories"
	MethodStates     = "states"
	MethodProfile    = "profile"
	MethodSettings   = "settings"
	MethodWipe       = "wipe"
	MethodHealth     = "health"
	MethodReload     = "reload"
	MethodShutdown   = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// SearchParams are the parameters for a search request.
type SearchParams struct {
	Query   string              `json:"query"`
	Options ports.SearchOptions `json:"options"`
}

// SearchResult is the response payload for a search request.
type SearchResult struct {
	Hits    []ports.Hit `json:"hits"`
	Count   int         `json:"count"`
	Elapsed string      `json:"elapsed"`
}

// AskParams are the parameters for a chat query. Empty State and a nil
// Profile fall back to the daemon's saved settings when UseSaved is set.
type AskParams struct {
	Query        string             `json:"query"`
	State        string             `json:"state,omitempty"`
	Profile      *ports.UserProfile `json:"profile,omitempty"`
	EligibleOnly bool               `json:"eligible_only,omitempty"`
	UseSaved     bool               `json:"use_saved,omitempty"`
	Lang         string             `json:"lang,omitempty"`
}

// AskResult is the routed reply plus a rendered headline.
type AskResult struct {
	Reply    router.Reply `json:"reply"`
	Headline string       `json:"headline,omitempty"`
}

// EligibleParams asks which schemes a profile qualifies for. When IDs is
// empty the candidates are the schemes selected by Options.
type EligibleParams struct {
	Profile ports.UserProfile   `json:"profile"`
	IDs     []string            `json:"ids,omitempty"`
	Options ports.SearchOptions `json:"options"`
}

// Exclusion names a scheme the profile does not qualify for, and why.
type Exclusion struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Decision eligibility.Decision `json:"decision"`
}

// EligibleResult is the response payload for an eligible request.
type EligibleResult struct {
	Eligible []*ports.SchemeRecord `json:"eligible"`
	Excluded []Exclusion           `json:"excluded,omitempty"`
	Unknown  []string              `json:"unknown,omitempty"` // requested IDs not in the corpus
	Count    int                   `json:"count"`
}

// SchemesParams selects schemes. A non-empty ID returns that single scheme.
type SchemesParams struct {
	ID      string              `json:"id,omitempty"`
	Options ports.SearchOptions `json:"options"`
}

// SchemesResult is the response payload for a schemes request.
type SchemesResult struct {
	Schemes []*ports.SchemeRecord `json:"schemes"`
	Count   int                   `json:"count"`
}

// CorpusInfo describes the snapshot currently being served.
type CorpusInfo struct {
	Source     string `json:"source"`
	LoadedAt   int64  `json:"loaded_at"`
	Schemes    int    `json:"schemes"`
	Categories int    `json:"categories"`
	States     int    `json:"states"`
	FromCache  bool   `json:"from_cache"`
}

// HealthResult is the response payload for a health request.
type HealthResult struct {
	Status string     `json:"status"`
	Corpus CorpusInfo `json:"corpus"`
	Uptime string     `json:"uptime"`
}

// ReloadResult is the response payload for a reload request.
type ReloadResult struct {
	Schemes   int    `json:"schemes"`
	Source    string `json:"source"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// CategoryInfo is a canonical category with its display metadata and size.
type CategoryInfo struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
	Count int    `json:"count"`
}

// StateInfo is a state or union territory with its display names.
type StateInfo struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Hi      string `json:"hi,omitempty"`
	Code    string `json:"code,omitempty"`
	Schemes int    `json:"schemes"`
}

// LangParams carries the display language for listing requests.
type LangParams struct {
	Lang string `json:"lang,omitempty"`
}

// CategoriesResult is the response payload for a categories request.
type CategoriesResult struct {
	Categories []CategoryInfo `json:"categories"`
	Count      int            `json:"count"`
}

// StatesResult is the response payload for a states request.
type StatesResult struct {
	States []StateInfo `json:"states"`
	Count  int         `json:"count"`
}

// Profile actions.
const (
	ProfileGet   = "get"
	ProfileSet   = "set"
	ProfileClear = "clear"
)

// ProfileParams reads, replaces or clears the saved profile. Empty Action means get.
type ProfileParams struct {
	Action  string             `json:"action,omitempty"`
	Profile *ports.UserProfile `json:"profile,omitempty"`
}

// ProfileResult carries the saved profile; nil when none is stored.
type ProfileResult struct {
	Profile *ports.UserProfile `json:"profile"`
}

// SettingsParams replaces the saved settings when Set is non-nil.
type SettingsParams struct {
	Set *ports.Settings `json:"set,omitempty"`
}
