package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/corey/sahayak/internal/ports"
	"go.uber.org/zap"
)

// AppQueries provides read access to the served corpus for server handlers.
// Every call must see one consistent snapshot; thread safety is the
// implementor's responsibility.
type AppQueries interface {
	Search(query string, opts ports.SearchOptions) *ports.SearchResult
	Ask(params AskParams) AskResult
	Eligible(params EligibleParams) (EligibleResult, error)
	Schemes(opts ports.SearchOptions) []*ports.SchemeRecord
	Scheme(idOrSlug string) (*ports.SchemeRecord, bool)
	Categories(lang string) []CategoryInfo
	States(lang string) []StateInfo
	Corpus() CorpusInfo
	Reload() (ReloadResult, error)
}

// UserStore is implemented by apps that persist a user's profile and
// settings. Servers whose queries do not implement it reject the profile,
// settings and wipe methods.
type UserStore interface {
	Profile() (*ports.UserProfile, error)
	SaveProfile(p *ports.UserProfile) error
	ClearProfile() error
	Settings() (ports.Settings, error)
	SaveSettings(st ports.Settings) error
	Wipe() error
}

// Server is the daemon that listens on a Unix socket and answers queries.
type Server struct {
	queries  AppQueries
	log      *zap.Logger
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server backed by queries. log may be nil.
func NewServer(queries AppQueries, sockPath string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		queries:    queries,
		log:        log.Named("socket"),
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first; if the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		s.log.Warn("removing stale socket", zap.String("path", s.sockPath))
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Info("socket server listening", zap.String("path", s.sockPath))
	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing the socket file.
// Idempotent: safe to call after a remote shutdown and again on signal.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine selects on this alongside
// OS signals so the process exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 4*1024*1024) // corpus listings can be large

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	if s.queries == nil && req.Method != MethodShutdown {
		return Response{ID: req.ID, Error: "corpus not available"}
	}
	switch req.Method {
	case MethodSearch:
		return s.handleSearch(req)
	case MethodAsk:
		return s.handleAsk(req)
	case MethodEligible:
		return s.handleEligible(req)
	case MethodSchemes:
		return s.handleSchemes(req)
	case MethodCategories:
		return s.handleCategories(req)
	case MethodStates:
		return s.handleStates(req)
	case MethodProfile:
		return s.handleProfile(req)
	case MethodSettings:
		return s.handleSettings(req)
	case MethodWipe:
		return s.handleWipe(req)
	case MethodHealth:
		return s.handleHealth(req)
	case MethodReload:
		return s.handleReload(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// decodeParams re-marshals the generic params into the method's typed struct.
func decodeParams(req Request, v any) error {
	if req.Params == nil {
		return nil
	}
	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return err
	}
	return json.Unmarshal(paramsJSON, v)
}

func (s *Server) handleSearch(req Request) Response {
	var params SearchParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid search params"}
	}

	start := time.Now()
	result := s.queries.Search(params.Query, params.Options)
	elapsed := time.Since(start)

	var hits []ports.Hit
	if result != nil {
		hits = result.Hits
	}
	if hits == nil {
		hits = []ports.Hit{}
	}
	return Response{
		ID: req.ID,
		Result: SearchResult{
			Hits:    hits,
			Count:   len(hits),
			Elapsed: elapsed.String(),
		},
	}
}

func (s *Server) handleAsk(req Request) Response {
	var params AskParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid ask params"}
	}
	return Response{ID: req.ID, Result: s.queries.Ask(params)}
}

func (s *Server) handleEligible(req Request) Response {
	var params EligibleParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid eligible params"}
	}
	result, err := s.queries.Eligible(params)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleSchemes(req Request) Response {
	var params SchemesParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid schemes params"}
	}

	if params.ID != "" {
		sch, ok := s.queries.Scheme(params.ID)
		if !ok {
			return Response{ID: req.ID, Error: fmt.Sprintf("scheme not found: %s", params.ID)}
		}
		return Response{ID: req.ID, Result: SchemesResult{Schemes: []*ports.SchemeRecord{sch}, Count: 1}}
	}

	schemes := s.queries.Schemes(params.Options)
	if schemes == nil {
		schemes = []*ports.SchemeRecord{}
	}
	return Response{ID: req.ID, Result: SchemesResult{Schemes: schemes, Count: len(schemes)}}
}

func (s *Server) handleCategories(req Request) Response {
	var params LangParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid categories params"}
	}
	cats := s.queries.Categories(params.Lang)
	if cats == nil {
		cats = []CategoryInfo{}
	}
	return Response{ID: req.ID, Result: CategoriesResult{Categories: cats, Count: len(cats)}}
}

func (s *Server) handleStates(req Request) Response {
	var params LangParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid states params"}
	}
	states := s.queries.States(params.Lang)
	if states == nil {
		states = []StateInfo{}
	}
	return Response{ID: req.ID, Result: StatesResult{States: states, Count: len(states)}}
}

func (s *Server) userStore(req Request) (UserStore, *Response) {
	us, ok := s.queries.(UserStore)
	if !ok {
		return nil, &Response{ID: req.ID, Error: "user settings not available"}
	}
	return us, nil
}

func (s *Server) handleProfile(req Request) Response {
	us, errResp := s.userStore(req)
	if errResp != nil {
		return *errResp
	}
	var params ProfileParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid profile params"}
	}

	switch params.Action {
	case "", ProfileGet:
	case ProfileSet:
		if err := us.SaveProfile(params.Profile); err != nil {
			return Response{ID: req.ID, Error: err.Error()}
		}
	case ProfileClear:
		if err := us.ClearProfile(); err != nil {
			return Response{ID: req.ID, Error: err.Error()}
		}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown profile action: %s", params.Action)}
	}

	p, err := us.Profile()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: ProfileResult{Profile: p}}
}

func (s *Server) handleSettings(req Request) Response {
	us, errResp := s.userStore(req)
	if errResp != nil {
		return *errResp
	}
	var params SettingsParams
	if err := decodeParams(req, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid settings params"}
	}
	if params.Set != nil {
		if err := us.SaveSettings(*params.Set); err != nil {
			return Response{ID: req.ID, Error: err.Error()}
		}
	}
	st, err := us.Settings()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: st}
}

func (s *Server) handleWipe(req Request) Response {
	us, errResp := s.userStore(req)
	if errResp != nil {
		return *errResp
	}
	if err := us.Wipe(); err != nil {
		s.log.Warn("wipe failed", zap.Error(err))
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: struct{}{}}
}

func (s *Server) handleHealth(req Request) Response {
	return Response{
		ID: req.ID,
		Result: HealthResult{
			Status: "ok",
			Corpus: s.queries.Corpus(),
			Uptime: time.Since(s.started).Round(time.Second).String(),
		},
	}
}

func (s *Server) handleReload(req Request) Response {
	result, err := s.queries.Reload()
	if err != nil {
		s.log.Warn("reload failed", zap.Error(err))
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", zap.String("id", resp.ID), zap.Error(err))
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
