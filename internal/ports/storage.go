// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import "errors"

// ErrNoCorpus is returned when no scheme corpus is loaded or cached.
var ErrNoCorpus = errors.New("no scheme corpus loaded")

// Storage persists the corpus cache and per-user settings to durable storage.
// The backing store (bbolt) is a single local file. Concurrent reads are safe;
// writes are serialized by the adapter.
//
// Crash safety: every Save must be transactional. A crash mid-write must not
// corrupt previously committed data.
type Storage interface {
	// SaveCorpus persists a full corpus snapshot, replacing any prior one.
	SaveCorpus(snap *CorpusSnapshot) error

	// LoadCorpus retrieves the cached snapshot.
	// Returns nil, nil if none exists or it has outlived the cache TTL.
	LoadCorpus() (*CorpusSnapshot, error)

	// SaveProfile stores the eligibility profile. Invalid profiles are rejected
	// with ErrInvalidProfile.
	SaveProfile(p *UserProfile) error

	// LoadProfile returns the stored profile, or nil, nil when unset.
	LoadProfile() (*UserProfile, error)

	// ClearProfile removes the stored profile. Idempotent.
	ClearProfile() error

	// SaveSettings stores the selected state and eligibility mode.
	SaveSettings(s *Settings) error

	// LoadSettings returns stored settings; a zero Settings when unset.
	LoadSettings() (*Settings, error)

	// Wipe removes everything. Idempotent.
	Wipe() error

	// Close releases the underlying file.
	Close() error
}

// CorpusSnapshot is a loaded corpus plus where and when it came from.
type CorpusSnapshot struct {
	Source   string          `json:"source"`
	LoadedAt int64           `json:"loaded_at"` // unix seconds
	Schemes  []*SchemeRecord `json:"schemes"`
}

// Settings holds user choices that survive restarts.
type Settings struct {
	State        string `json:"state,omitempty"` // selected state key, empty for all of India
	EligibleOnly bool   `json:"eligible_only"`   // eligibility mode
	Lang         string `json:"lang,omitempty"`  // display language, "en" or "hi"
}
