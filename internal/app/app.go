// Package app wires the scheme directory together: static catalog and rules,
// the corpus cache, the served corpus snapshot, and the daemon transports.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corey/sahayak/atlas"
	"github.com/corey/sahayak/internal/adapters/ahocorasick"
	"github.com/corey/sahayak/internal/adapters/bbolt"
	"github.com/corey/sahayak/internal/adapters/csvload"
	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/adapters/web"
	"github.com/corey/sahayak/internal/domain/alias"
	"github.com/corey/sahayak/internal/domain/corpus"
	"github.com/corey/sahayak/internal/domain/eligibility"
	"github.com/corey/sahayak/internal/domain/search"
	"github.com/corey/sahayak/internal/ports"
	"github.com/corey/sahayak/rules"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App is the top-level container wiring all components together.
type App struct {
	Config Config
	Paths  *Paths
	Log    *zap.Logger

	Store      ports.Storage
	Catalog    *corpus.Catalog
	Aliases    *alias.Index
	Classifier *eligibility.Classifier
	Engine     *search.Engine
	Loader     *csvload.Loader

	Server  *socket.Server // nil until Run
	Web     *web.Server    // nil until Run
	Watcher ports.Watcher  // nil until Run

	snap   atomic.Pointer[snapshot]
	loadMu sync.Mutex // serializes corpus loads
}

// snapshot is one immutable served corpus. Requests load the pointer once
// and answer entirely from it, so a reload never mixes two corpora.
type snapshot struct {
	corpus    *corpus.Corpus
	source    string
	loadedAt  int64
	fromCache bool
}

// New creates an App with its static data and store opened. It does not load
// a corpus or start services. log may be nil.
func New(cfg Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	paths := NewPaths(cfg.Home)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create %s: %w", paths.Root, err)
	}

	catalog, err := corpus.LoadCatalog(atlas.FS, "v1", ahocorasick.Factory)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	aliases, err := alias.Load(atlas.FS, "v1", ahocorasick.Factory)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	ruleSet, err := eligibility.LoadRulesFromFS(rules.FS, "eligibility")
	if err != nil {
		return nil, fmt.Errorf("load eligibility rules: %w", err)
	}
	classifier, err := eligibility.NewClassifier(ruleSet, ahocorasick.Factory, log.Named("eligibility"))
	if err != nil {
		return nil, fmt.Errorf("compile eligibility rules: %w", err)
	}

	store, err := bbolt.NewStore(paths.DB, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &App{
		Config:     cfg,
		Paths:      paths,
		Log:        log,
		Store:      store,
		Catalog:    catalog,
		Aliases:    aliases,
		Classifier: classifier,
		Engine:     search.NewEngine(aliases),
		Loader:     csvload.NewLoader(catalog, log.Named("csv")),
	}, nil
}

// Load makes a corpus available: the cached snapshot when it is fresh,
// otherwise the configured CSV (which refreshes the cache).
func (a *App) Load() error {
	a.loadMu.Lock()
	defer a.loadMu.Unlock()

	cached, err := a.Store.LoadCorpus()
	if err != nil {
		// A broken cache is not fatal while a CSV can replace it.
		a.Log.Warn("corpus cache unreadable", zap.Error(err))
	}
	if cached != nil && len(cached.Schemes) > 0 {
		a.swap(cached, true)
		a.Log.Info("corpus loaded from cache",
			zap.Int("schemes", len(cached.Schemes)),
			zap.String("source", cached.Source),
			zap.Time("loaded_at", time.Unix(cached.LoadedAt, 0)))
		return nil
	}

	if a.Config.CSVPath == "" {
		return fmt.Errorf("%w: cache is empty and %s is not set", ports.ErrNoCorpus, EnvCSV)
	}
	_, err = a.loadCSV(a.Config.CSVPath)
	return err
}

// LoadFile reads a CSV, serves it and replaces the cache.
func (a *App) LoadFile(path string) (socket.ReloadResult, error) {
	a.loadMu.Lock()
	defer a.loadMu.Unlock()
	return a.loadCSV(path)
}

// Reload re-reads the configured CSV. Implements socket.AppQueries.
func (a *App) Reload() (socket.ReloadResult, error) {
	if a.Config.CSVPath == "" {
		return socket.ReloadResult{}, fmt.Errorf("reload: %s is not set", EnvCSV)
	}
	return a.LoadFile(a.Config.CSVPath)
}

// loadCSV must be called with loadMu held.
func (a *App) loadCSV(path string) (socket.ReloadResult, error) {
	start := time.Now()
	snap, err := a.Loader.LoadFile(path)
	if err != nil {
		return socket.ReloadResult{}, fmt.Errorf("load corpus: %w", err)
	}
	a.swap(snap, false)

	if err := a.Store.SaveCorpus(snap); err != nil {
		// Serving continues from memory; only the next cold start pays.
		a.Log.Warn("cache corpus", zap.Error(err))
	}

	elapsed := time.Since(start)
	a.Log.Info("corpus loaded from csv",
		zap.Int("schemes", len(snap.Schemes)),
		zap.String("source", path),
		zap.Duration("elapsed", elapsed))
	return socket.ReloadResult{
		Schemes:   len(snap.Schemes),
		Source:    path,
		ElapsedMs: elapsed.Milliseconds(),
	}, nil
}

func (a *App) swap(snap *ports.CorpusSnapshot, fromCache bool) {
	a.snap.Store(&snapshot{
		corpus:    corpus.New(snap.Schemes),
		source:    snap.Source,
		loadedAt:  snap.LoadedAt,
		fromCache: fromCache,
	})
}

// current returns the served snapshot; an empty one before the first load.
func (a *App) current() *snapshot {
	if s := a.snap.Load(); s != nil {
		return s
	}
	return &snapshot{corpus: corpus.New(nil)}
}

// Loaded reports whether a corpus is being served.
func (a *App) Loaded() bool {
	return a.snap.Load() != nil
}

// Run starts the socket server, the HTTP API and the CSV watcher, and blocks
// until ctx is cancelled, a client requests shutdown, or a server fails.
func (a *App) Run(ctx context.Context) error {
	a.Server = socket.NewServer(a, socket.SocketPath(a.Paths.Root), a.Log)
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start socket server: %w", err)
	}

	a.Web = web.NewServer(a, web.Options{
		AddrFile: a.Paths.AddrFile,
		Origins:  a.Config.CORSOrigins,
		Lang:     a.Config.Lang,
	}, a.Log)
	if err := a.Web.Listen(a.Config.HTTPAddr); err != nil {
		a.Server.Stop()
		return fmt.Errorf("start http server: %w", err)
	}

	if err := os.WriteFile(a.Paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		a.Log.Warn("write pid file", zap.Error(err))
	}
	defer a.Paths.CleanEphemeral()

	a.startWatcher()
	defer a.stopWatcher()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.Web.Serve)
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-a.Server.ShutdownCh():
			a.Log.Info("shutdown requested over socket")
		}
		a.Web.Stop()
		return a.Server.Stop()
	})

	a.Log.Info("daemon running",
		zap.String("socket", a.Server.Addr()),
		zap.String("http", a.Web.URL()),
		zap.Int("schemes", a.current().corpus.Len()))

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close releases the store. Call after Run returns.
func (a *App) Close() error {
	return a.Store.Close()
}
