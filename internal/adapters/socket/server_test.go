package socket

import (
	"bufio"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/sahayak/internal/domain/corpus"
	"github.com/corey/sahayak/internal/domain/eligibility"
	"github.com/corey/sahayak/internal/domain/router"
	"github.com/corey/sahayak/internal/domain/search"
	"github.com/corey/sahayak/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Unix Socket Daemon: JSON-over-socket protocol for search, ask, eligible,
// schemes, health, reload, shutdown
// =============================================================================

// stubQueries serves a small fixed corpus through the real search engine.
type stubQueries struct {
	corpus  *corpus.Corpus
	engine  *search.Engine
	reloads int
	mu      sync.Mutex
	failOn  string
}

func newStubQueries() *stubQueries {
	records := []*ports.SchemeRecord{
		{ID: "pmk", Name: "PM Kisan Samman Nidhi", Categories: []string{"agriculture"}, DetailsText: "income support for farmers", IsPopular: true},
		{ID: "msk", Name: "Mahila Shakti Kendra", Categories: []string{"women"}, DetailsText: "empowerment of rural women"},
		{ID: "raitha", Slug: "raitha-siri", Name: "Raitha Siri", Categories: []string{"agriculture"}, DetailsText: "millet growers", IsStateSpecific: true, State: "karnataka"},
	}
	return &stubQueries{corpus: corpus.New(records), engine: search.NewEngine(nil)}
}

func (q *stubQueries) Search(query string, opts ports.SearchOptions) *ports.SearchResult {
	return q.engine.Search(query, q.corpus.All(), opts)
}

func (q *stubQueries) Ask(p AskParams) AskResult {
	reply := router.Route(p.Query, router.Context{Corpus: q.corpus, Engine: q.engine, State: p.State})
	return AskResult{Reply: reply, Headline: reply.Headline(p.Lang)}
}

func (q *stubQueries) Eligible(p EligibleParams) (EligibleResult, error) {
	prof := p.Profile.Normalized()
	if !prof.Valid() {
		return EligibleResult{}, ports.ErrInvalidProfile
	}
	var res EligibleResult
	for _, s := range q.corpus.Filter(p.Options) {
		if s.IsStateSpecific && s.State != prof.State {
			res.Excluded = append(res.Excluded, Exclusion{ID: s.ID, Name: s.Name, Decision: eligibility.Decision{Gate: eligibility.GateState}})
			continue
		}
		res.Eligible = append(res.Eligible, s)
	}
	res.Count = len(res.Eligible)
	return res, nil
}

func (q *stubQueries) Schemes(opts ports.SearchOptions) []*ports.SchemeRecord {
	return q.corpus.Filter(opts)
}

func (q *stubQueries) Scheme(id string) (*ports.SchemeRecord, bool) {
	return q.corpus.ByID(id)
}

func (q *stubQueries) Categories(lang string) []CategoryInfo {
	name := "Agriculture"
	if lang == "hi" {
		name = "कृषि"
	}
	return []CategoryInfo{{Key: "agriculture", Name: name, Count: q.corpus.CategoryCount("agriculture")}}
}

func (q *stubQueries) States(string) []StateInfo { return nil }

func (q *stubQueries) Corpus() CorpusInfo {
	return CorpusInfo{Source: "test.csv", Schemes: q.corpus.Len(), Categories: len(q.corpus.Categories())}
}

func (q *stubQueries) Reload() (ReloadResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failOn == MethodReload {
		return ReloadResult{}, errors.New("read corpus: file vanished")
	}
	q.reloads++
	return ReloadResult{Schemes: q.corpus.Len(), Source: "test.csv"}, nil
}

// storeQueries adds an in-memory UserStore to stubQueries.
type storeQueries struct {
	*stubQueries
	smu      sync.Mutex
	profile  *ports.UserProfile
	settings ports.Settings
	wiped    bool
}

func (q *storeQueries) Profile() (*ports.UserProfile, error) {
	q.smu.Lock()
	defer q.smu.Unlock()
	return q.profile, nil
}

func (q *storeQueries) SaveProfile(p *ports.UserProfile) error {
	if !p.Valid() {
		return ports.ErrInvalidProfile
	}
	q.smu.Lock()
	defer q.smu.Unlock()
	q.profile = p
	return nil
}

func (q *storeQueries) ClearProfile() error {
	q.smu.Lock()
	defer q.smu.Unlock()
	q.profile = nil
	return nil
}

func (q *storeQueries) Settings() (ports.Settings, error) {
	q.smu.Lock()
	defer q.smu.Unlock()
	return q.settings, nil
}

func (q *storeQueries) SaveSettings(st ports.Settings) error {
	q.smu.Lock()
	defer q.smu.Unlock()
	q.settings = st
	return nil
}

func (q *storeQueries) Wipe() error {
	q.smu.Lock()
	defer q.smu.Unlock()
	q.profile, q.settings, q.wiped = nil, ports.Settings{}, true
	return nil
}

// testSocketPath returns a unique socket path for a test.
func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sock")
}

func startServer(t *testing.T, q AppQueries) (*Server, *Client) {
	t.Helper()
	sockPath := testSocketPath(t)
	srv := NewServer(q, sockPath, nil)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })
	return srv, NewClient(sockPath)
}

func TestSocketPath_StablePerHome(t *testing.T) {
	a := SocketPath("/home/user/.sahayak")
	b := SocketPath("/home/user/.sahayak")
	c := SocketPath("/home/other/.sahayak")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^/tmp/sahayak-[0-9a-f]{12}\.sock$`, a)
}

func TestServer_SearchRoundtrip(t *testing.T) {
	_, client := startServer(t, newStubQueries())

	result, err := client.Search("kisan", ports.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "pmk", result.Hits[0].Scheme.ID)
	assert.Equal(t, 150, result.Hits[0].Score)
	assert.NotEmpty(t, result.Elapsed)

	// Nothing scores and no name is within fuzzy reach.
	result, err = client.Search("zzzz", ports.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Hits, "empty hits serialize as [] not null")
}

func TestServer_SchemesListAndByID(t *testing.T) {
	_, client := startServer(t, newStubQueries())

	all, err := client.Schemes(ports.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Count)

	agri, err := client.Schemes(ports.SearchOptions{Category: "agriculture", State: "odisha"})
	require.NoError(t, err)
	require.Equal(t, 1, agri.Count, "karnataka scheme filtered out for odisha")
	assert.Equal(t, "pmk", agri.Schemes[0].ID)

	sch, err := client.Scheme("raitha-siri")
	require.NoError(t, err)
	assert.Equal(t, "raitha", sch.ID)

	_, err = client.Scheme("missing")
	assert.ErrorContains(t, err, "scheme not found")
}

func TestServer_Ask(t *testing.T) {
	_, client := startServer(t, newStubQueries())

	res, err := client.Ask(AskParams{Query: "namaste"})
	require.NoError(t, err)
	assert.Equal(t, router.KindGreeting, res.Reply.Kind)
	assert.NotEmpty(t, res.Headline)

	res, err = client.Ask(AskParams{Query: "women schemes"})
	require.NoError(t, err)
	assert.Equal(t, router.KindCategory, res.Reply.Kind)
	require.Len(t, res.Reply.Schemes, 1)
	assert.Equal(t, "msk", res.Reply.Schemes[0].ID)
}

func TestServer_Eligible(t *testing.T) {
	_, client := startServer(t, newStubQueries())

	res, err := client.Eligible(EligibleParams{Profile: ports.UserProfile{
		State: "Odisha", Gender: "female", AgeYears: 30, Occupation: "farmer", CasteCategory: "general",
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "raitha", res.Excluded[0].ID)
	assert.Equal(t, eligibility.GateState, res.Excluded[0].Decision.Gate)

	_, err = client.Eligible(EligibleParams{Profile: ports.UserProfile{State: "odisha"}})
	assert.ErrorContains(t, err, ports.ErrInvalidProfile.Error())
}

func TestServer_CategoriesAndStates(t *testing.T) {
	_, client := startServer(t, newStubQueries())

	cats, err := client.Categories("hi")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "कृषि", cats[0].Name)
	assert.Equal(t, 2, cats[0].Count)

	states, err := client.States("en")
	require.NoError(t, err)
	assert.NotNil(t, states, "empty listings serialize as []")
	assert.Empty(t, states)
}

func TestServer_ProfileAndSettings(t *testing.T) {
	q := &storeQueries{stubQueries: newStubQueries()}
	_, client := startServer(t, q)

	p, err := client.Profile()
	require.NoError(t, err)
	assert.Nil(t, p)

	want := &ports.UserProfile{State: "kerala", Gender: "female", AgeYears: 64, Occupation: "retired", CasteCategory: "obc"}
	require.NoError(t, client.SaveProfile(want))
	p, err = client.Profile()
	require.NoError(t, err)
	assert.Equal(t, want, p)

	err = client.SaveProfile(&ports.UserProfile{State: "kerala"})
	assert.ErrorContains(t, err, ports.ErrInvalidProfile.Error())

	require.NoError(t, client.ClearProfile())
	p, err = client.Profile()
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, client.SaveSettings(&ports.Settings{State: "kerala", EligibleOnly: true, Lang: "hi"}))
	st, err := client.Settings()
	require.NoError(t, err)
	assert.Equal(t, ports.Settings{State: "kerala", EligibleOnly: true, Lang: "hi"}, *st)

	require.NoError(t, client.Wipe())
	q.smu.Lock()
	assert.True(t, q.wiped)
	q.smu.Unlock()
	st, err = client.Settings()
	require.NoError(t, err)
	assert.Equal(t, ports.Settings{}, *st)
}

func TestServer_NoUserStore(t *testing.T) {
	_, client := startServer(t, newStubQueries())

	_, err := client.Profile()
	assert.ErrorContains(t, err, "user settings not available")
	assert.ErrorContains(t, client.Wipe(), "user settings not available")
}

func TestServer_Health(t *testing.T) {
	_, client := startServer(t, newStubQueries())

	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, health.Corpus.Schemes)
	assert.Equal(t, 2, health.Corpus.Categories)
	assert.Equal(t, "test.csv", health.Corpus.Source)
	assert.NotEmpty(t, health.Uptime)
}

func TestServer_Reload(t *testing.T) {
	q := newStubQueries()
	_, client := startServer(t, q)

	res, err := client.Reload()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Schemes)
	q.mu.Lock()
	assert.Equal(t, 1, q.reloads)
	q.failOn = MethodReload
	q.mu.Unlock()

	_, err = client.Reload()
	assert.ErrorContains(t, err, "file vanished")
}

func TestServer_NilQueries(t *testing.T) {
	_, client := startServer(t, nil)

	_, err := client.Health()
	assert.ErrorContains(t, err, "corpus not available")
	assert.NoError(t, client.Shutdown(), "shutdown works without a corpus")
}

func TestServer_UnknownMethodAndBadJSON(t *testing.T) {
	srv, _ := startServer(t, newStubQueries())

	conn, err := net.DialTimeout("unix", srv.Addr(), time.Second)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewScanner(conn)

	_, err = conn.Write([]byte("not json\n"))
	require.NoError(t, err)
	require.True(t, reader.Scan())
	assert.Contains(t, reader.Text(), "invalid request JSON")

	// Same connection keeps serving after a bad line.
	_, err = conn.Write([]byte(`{"id":"7","method":"explode"}` + "\n"))
	require.NoError(t, err)
	require.True(t, reader.Scan())
	assert.Contains(t, reader.Text(), `"id":"7"`)
	assert.Contains(t, reader.Text(), "unknown method: explode")
}

func TestServer_Shutdown(t *testing.T) {
	sockPath := testSocketPath(t)
	srv := NewServer(newStubQueries(), sockPath, nil)
	require.NoError(t, srv.Start())

	client := NewClient(sockPath)
	assert.True(t, client.Ping())

	// Shutdown closes shutdownCh (signals the daemon).
	require.NoError(t, client.Shutdown())

	select {
	case <-srv.ShutdownCh():
	default:
		t.Fatal("ShutdownCh should be closed after Shutdown request")
	}

	// The daemon is responsible for calling Stop() after receiving the signal.
	srv.Stop()

	_, err := os.Stat(sockPath)
	assert.True(t, os.IsNotExist(err), "socket file should be removed after shutdown")
	assert.False(t, client.Ping())

	// Double-stop is safe.
	assert.NoError(t, srv.Stop())
}

func TestServer_ConcurrentClients(t *testing.T) {
	srv, _ := startServer(t, newStubQueries())

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	// 10 clients x 10 requests each
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := NewClient(srv.Addr())
			for j := 0; j < 10; j++ {
				result, err := client.Search("kisan", ports.SearchOptions{})
				if err != nil {
					errs <- err
					return
				}
				if result.Count != 1 {
					errs <- assert.AnError
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent client error: %v", err)
	}
}

func TestServer_StaleSocket(t *testing.T) {
	sockPath := testSocketPath(t)

	// A stale socket file (not a real listener)
	require.NoError(t, os.WriteFile(sockPath, []byte("stale"), 0600))

	srv := NewServer(newStubQueries(), sockPath, nil)
	require.NoError(t, srv.Start(), "should replace stale socket")
	defer srv.Stop()

	health, err := NewClient(sockPath).Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
}

func TestServer_AlreadyRunning(t *testing.T) {
	srv, _ := startServer(t, newStubQueries())

	second := NewServer(newStubQueries(), srv.Addr(), nil)
	err := second.Start()
	assert.ErrorContains(t, err, "daemon already running")
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClient(testSocketPath(t))
	assert.False(t, client.Ping())

	_, err := client.Health()
	assert.ErrorContains(t, err, "connect")
}
