//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloo-solutions/khub/internal/api/handlers"
	"github.com/cloo-solutions/khub/internal/backend"
	"github.com/cloo-solutions/khub/internal/config"
	"github.com/cloo-solutions/khub/internal/dispatch"
	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/liveness"
	"github.com/cloo-solutions/khub/internal/normalize"
	"github.com/cloo-solutions/khub/internal/repository"
	"github.com/cloo-solutions/khub/internal/server"
	"github.com/cloo-solutions/khub/internal/service"
	"github.com/cloo-solutions/khub/internal/session"
	"github.com/cloo-solutions/khub/internal/telemetry"
	"github.com/cloo-solutions/khub/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// E2ETestEnv holds a running explorer wired to fake backends and a real
// collector database.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	Graph      *FakeBackend
	Document   *FakeBackend
	ServerURL  string
	Emitter    telemetry.Emitter
	BinaryDir  string
	ConfigHome string
	HTTPClient *http.Client

	server  *httptest.Server
	monitor *liveness.Monitor
	cancel  context.CancelFunc
}

// FakeBackend serves a canned payload and counts the requests it receives.
type FakeBackend struct {
	*httptest.Server
	payload  atomic.Value
	status   atomic.Int32
	requests atomic.Int32
}

func newFakeBackend(payload string) *FakeBackend {
	fb := &FakeBackend{}
	fb.payload.Store(payload)
	fb.status.Store(http.StatusOK)
	fb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/ping") {
			w.WriteHeader(http.StatusOK)
			return
		}
		fb.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(fb.status.Load()))
		_, _ = io.WriteString(w, fb.payload.Load().(string))
	}))
	return fb
}

// Fail makes the backend answer every search with status.
func (fb *FakeBackend) Fail(status int) {
	fb.status.Store(int32(status))
}

// Requests returns how many searches reached the backend.
func (fb *FakeBackend) Requests() int {
	return int(fb.requests.Load())
}

const graphPayload = `{
  "head": {"vars": ["link", "title", "content", "types"]},
  "results": {"bindings": [
    {"link": {"value": "https://wiki.example.com/spaces/ENG/pages/1"},
     "title": {"value": "Deploying the search service"},
     "content": {"value": "<p>Run the <b>deploy</b> job from the main branch.</p>"},
     "email": {"value": "ops@example.com"},
     "lastUpdateTime": {"value": "2024-03-05T10:15:00Z"},
     "types": {"value": "ConfluencePage"}},
    {"link": {"value": "https://jira.example.com/browse/ENG-42"},
     "title": {"value": "Deploy pipeline flakes"},
     "types": {"value": "JiraIssue"}}
  ]}
}`

const documentPayload = `{
  "_links": {"base": "https://wiki.example.com"},
  "results": [
    {"title": "Release checklist",
     "excerpt": "Before you @@@hl@@@deploy@@@endhl@@@ make sure the build is green.",
     "url": "/spaces/ENG/pages/7",
     "lastModified": "2024-02-01T08:00:00.000Z",
     "content": {"type": "page", "ancestors": [{"title": "Engineering", "_links": {"webui": "/spaces/ENG"}}]}}
  ]
}`

// SetupE2EEnv starts Postgres, both fake backends and the explorer server.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx, cancel := context.WithCancel(context.Background())

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		Graph:      newFakeBackend(graphPayload),
		Document:   newFakeBackend(documentPayload),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		cancel:     cancel,
	}
	env.startServer()
	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.monitor != nil {
		e.monitor.Stop()
	}
	e.cancel()
	if e.server != nil {
		e.server.Close()
	}
	if waiter, ok := e.Emitter.(*telemetry.HTTPEmitter); ok {
		waiter.Wait()
	}
	e.Graph.Close()
	e.Document.Close()
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

func (e *E2ETestEnv) startServer() {
	logger := zerolog.New(io.Discard)

	// The emitter posts to this server's own collector, so the handler is
	// installed after the listener exists.
	var router http.Handler
	e.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	e.ServerURL = e.server.URL

	httpClient := backend.NewHTTPClient(10 * time.Second)
	normalizer := normalize.New(normalize.DefaultConfig())

	dispatcher := dispatch.New(logger,
		backend.NewGraphClient(e.Graph.URL+"/khub/query", config.DefaultQueryTemplate(), httpClient, normalizer),
		backend.NewDocumentClient(backend.DocumentConfig{
			BaseURL:    e.Document.URL,
			SearchPath: "/rest/api/search",
			Email:      "e2e@example.com",
			Token:      "secret",
			Limit:      10,
		}, httpClient, normalizer),
	)

	reach := &domain.ReachabilityState{}
	e.monitor = liveness.NewMonitor(backend.NewProbe(e.Graph.URL+"/$/ping", httpClient), time.Second, reach, logger)
	go e.monitor.Start(e.Ctx)

	e.Emitter = telemetry.NewEmitter(e.ServerURL+"/logs", httpClient, logger)

	explorer, err := service.NewExplorerService(dispatcher, e.Emitter, session.NewMemoryStore(), reach, service.ExplorerOptions{
		PageSize:         1,
		RequireReachable: true,
		// Heads always puts the document source on the left.
		Coin: func() bool { return true },
	}, logger)
	if err != nil {
		e.T.Fatalf("failed to create explorer: %v", err)
	}

	collector := service.NewCollectorService(repository.NewEventRepository(e.Pool))

	router = server.NewRouter(server.RouterConfig{
		Logger:           logger,
		NewSessionID:     explorer.NewSessionID,
		ExplorerHandler:  handlers.NewExplorerHandler(explorer),
		TelemetryHandler: handlers.NewTelemetryHandler(collector),
	})

	e.waitForReachable(10 * time.Second)
}

func (e *E2ETestEnv) waitForReachable(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var status service.StatusInfo
		resp, err := e.Get("/status", "")
		if err == nil && json.Unmarshal(resp.Data, &status) == nil && status.Reachability == "reachable" {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	e.T.Fatalf("backend did not become reachable within %v", timeout)
}

// FlushTelemetry waits for in-flight event deliveries.
func (e *E2ETestEnv) FlushTelemetry() {
	if waiter, ok := e.Emitter.(*telemetry.HTTPEmitter); ok {
		waiter.Wait()
	}
}

// BuildBinaries builds the khub and khubd binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "khub-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir
	e.ConfigHome = filepath.Join(tmpDir, "config")

	for _, name := range []string{"khub", "khubd"} {
		cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, name), "./cmd/"+name)
		cmd.Dir = "../.."
		if out, err := cmd.CombinedOutput(); err != nil {
			e.T.Fatalf("failed to build %s: %v\n%s", name, err, out)
		}
	}
}

// RunKhub runs the khub CLI against the test server with its own config dir.
func (e *E2ETestEnv) RunKhub(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "khub"), args...)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("KHUB_API_URL=%s", e.ServerURL),
		fmt.Sprintf("XDG_CONFIG_HOME=%s", e.ConfigHome),
		fmt.Sprintf("HOME=%s", e.ConfigHome),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	StatusCode int
	SessionID  string
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, sessionID string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil, sessionID)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, sessionID string) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body, sessionID)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, sessionID string) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	apiResp := APIResponse{StatusCode: resp.StatusCode, SessionID: resp.Header.Get("X-Session-ID")}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= 400 {
		return &apiResp, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}
	return &apiResp, nil
}

// State decodes the data of a state response.
func State(t *testing.T, resp *APIResponse) *service.State {
	t.Helper()
	var st service.State
	if err := json.Unmarshal(resp.Data, &st); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	return &st
}
