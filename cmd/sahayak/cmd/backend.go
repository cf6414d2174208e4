package cmd

import (
	"errors"
	"fmt"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/app"
	"github.com/corey/sahayak/internal/ports"
	"go.uber.org/zap"
)

// backend is what commands talk to: the daemon over its socket when one is
// running, otherwise an in-process app opened on the same home directory.
type backend interface {
	Search(query string, opts ports.SearchOptions) (*socket.SearchResult, error)
	Ask(params socket.AskParams) (*socket.AskResult, error)
	Eligible(params socket.EligibleParams) (*socket.EligibleResult, error)
	Schemes(opts ports.SearchOptions) (*socket.SchemesResult, error)
	Scheme(idOrSlug string) (*ports.SchemeRecord, error)
	Categories(lang string) ([]socket.CategoryInfo, error)
	States(lang string) ([]socket.StateInfo, error)
	Profile() (*ports.UserProfile, error)
	SaveProfile(p *ports.UserProfile) error
	ClearProfile() error
	Settings() (*ports.Settings, error)
	SaveSettings(st *ports.Settings) error
	Close() error
}

// daemonBackend forwards to a running daemon.
type daemonBackend struct {
	*socket.Client
}

func (daemonBackend) Close() error { return nil }

// localBackend answers from an in-process app. It holds the store lock
// until Close.
type localBackend struct {
	a *app.App
}

func (b localBackend) Search(query string, opts ports.SearchOptions) (*socket.SearchResult, error) {
	res := b.a.Search(query, opts)
	hits := res.Hits
	if hits == nil {
		hits = []ports.Hit{}
	}
	return &socket.SearchResult{Hits: hits, Count: len(hits)}, nil
}

func (b localBackend) Ask(params socket.AskParams) (*socket.AskResult, error) {
	res := b.a.Ask(params)
	return &res, nil
}

func (b localBackend) Eligible(params socket.EligibleParams) (*socket.EligibleResult, error) {
	res, err := b.a.Eligible(params)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (b localBackend) Schemes(opts ports.SearchOptions) (*socket.SchemesResult, error) {
	schemes := b.a.Schemes(opts)
	return &socket.SchemesResult{Schemes: schemes, Count: len(schemes)}, nil
}

func (b localBackend) Scheme(idOrSlug string) (*ports.SchemeRecord, error) {
	s, ok := b.a.Scheme(idOrSlug)
	if !ok {
		return nil, fmt.Errorf("scheme not found: %s", idOrSlug)
	}
	return s, nil
}

func (b localBackend) Categories(lang string) ([]socket.CategoryInfo, error) {
	return b.a.Categories(lang), nil
}

func (b localBackend) States(lang string) ([]socket.StateInfo, error) {
	return b.a.States(lang), nil
}

func (b localBackend) Profile() (*ports.UserProfile, error)    { return b.a.Profile() }
func (b localBackend) SaveProfile(p *ports.UserProfile) error { return b.a.SaveProfile(p) }
func (b localBackend) ClearProfile() error                    { return b.a.ClearProfile() }

func (b localBackend) Settings() (*ports.Settings, error) {
	st, err := b.a.Settings()
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (b localBackend) SaveSettings(st *ports.Settings) error {
	if st == nil {
		return fmt.Errorf("nil settings")
	}
	return b.a.SaveSettings(*st)
}

func (b localBackend) Close() error { return b.a.Close() }

// openBackend connects to the daemon for cfg.Home, or opens the app in
// process. withCorpus loads the corpus (cache, then CSV) for local use;
// commands that only touch saved settings skip it.
func openBackend(cfg app.Config, withCorpus bool) (backend, error) {
	client := socket.NewClient(socket.SocketPath(cfg.Home))
	if client.Ping() {
		return daemonBackend{client}, nil
	}

	a, err := openApp(cfg, newLogger())
	if err != nil {
		return nil, err
	}
	if withCorpus {
		if err := a.Load(); err != nil {
			a.Close()
			return nil, explainNoCorpus(err)
		}
	}
	return localBackend{a: a}, nil
}

// openApp creates the in-process app, turning a store lock timeout into
// guidance about whoever holds it.
func openApp(cfg app.Config, log *zap.Logger) (*app.App, error) {
	a, err := app.New(cfg, log)
	if err != nil {
		if isDBLockError(err) {
			return nil, errors.New(diagnoseDBLock(cfg.Home))
		}
		return nil, fmt.Errorf("init: %w", err)
	}
	return a, nil
}

// withBackend loads config, opens a backend, runs fn and closes the backend.
func withBackend(withCorpus bool, fn func(b backend, cfg app.Config) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := openBackend(cfg, withCorpus)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b, cfg)
}
