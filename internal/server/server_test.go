package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cinemind/cinemind/internal/auth"
	"github.com/cinemind/cinemind/internal/catalog"
	"github.com/cinemind/cinemind/internal/config"
	"github.com/cinemind/cinemind/internal/llmcall"
	"github.com/cinemind/cinemind/internal/providers"
	"github.com/cinemind/cinemind/internal/server/endpoints"
)

const testConfig = `
server:
  host: 127.0.0.1
  port: "0"
store:
  backend: memory
auth:
  jwt_secret: test-secret
  admin_emails: [admin@example.com]
ai:
  provider: mock
  mock_response: "[]"
`

type testServer struct {
	*Server
	mock *providers.MockClient
}

func newTestServer(t *testing.T, extra string) *testServer {
	t.Helper()
	srv := newServerFromYAML(t, testConfig+extra)

	mock := providers.NewMockClient("[]")
	srv.aiClient = mock
	if err := srv.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return &testServer{Server: srv, mock: mock}
}

func newServerFromYAML(t *testing.T, doc string) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	mgr, err := config.NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	srv, err := New(Config{
		ConfigManager: mgr,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func (ts *testServer) serve(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	rec := ts.serve(method, path, token, body)
	if out != nil {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return rec.Code
}

func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()
	var auth endpoints.AuthResponse
	status := ts.do(t, "POST", "/api/users/register", "", map[string]string{
		"firstName": "Test", "lastName": "User", "email": email, "password": "secret1",
	}, &auth)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, status)
	}
	return auth.Token
}

func (ts *testServer) createMovie(t *testing.T, token, title, genre string) catalog.Movie {
	t.Helper()
	var m catalog.Movie
	status := ts.do(t, "POST", "/api/movies", token, catalog.MovieInput{
		Title: title, Description: title + " description", Genre: genre, ReleaseDate: "1995-12-15", Rating: 7,
	}, &m)
	if status != http.StatusCreated {
		t.Fatalf("create %s: status %d", title, status)
	}
	return m
}

func TestServer_RequireInitBeforeInitialize(t *testing.T) {
	srv, err := New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/movies", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /api/movies status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /ready status = %d, want 503", rec.Code)
	}
}

func TestServer_MovieLifecycle(t *testing.T) {
	ts := newTestServer(t, "")
	admin := ts.register(t, "admin@example.com")
	user := ts.register(t, "user@example.com")

	input := catalog.MovieInput{Title: "Heat", Description: "Heist.", Genre: "Crime", ReleaseDate: "1995-12-15", Rating: 8}
	if status := ts.do(t, "POST", "/api/movies", "", input, nil); status != http.StatusUnauthorized {
		t.Errorf("anonymous create status = %d, want 401", status)
	}
	if status := ts.do(t, "POST", "/api/movies", user, input, nil); status != http.StatusForbidden {
		t.Errorf("user create status = %d, want 403", status)
	}

	heat := ts.createMovie(t, admin, "Heat", "Crime")

	var got catalog.Movie
	if status := ts.do(t, "GET", "/api/movies/"+heat.ID, "", nil, &got); status != http.StatusOK || got.Title != "Heat" {
		t.Errorf("get = %d %+v", status, got)
	}

	input.Genre = "Thriller"
	if status := ts.do(t, "PUT", "/api/movies/"+heat.ID, admin, input, &got); status != http.StatusOK || got.Genre != "Thriller" {
		t.Errorf("update = %d %+v", status, got)
	}

	bad := catalog.MovieInput{Title: "No genre", Description: "x", ReleaseDate: "2001-01-01", Rating: 5}
	if status := ts.do(t, "POST", "/api/movies", admin, bad, nil); status != http.StatusBadRequest {
		t.Errorf("invalid create status = %d, want 400", status)
	}

	if status := ts.do(t, "DELETE", "/api/movies/"+heat.ID, admin, nil, nil); status != http.StatusOK {
		t.Errorf("delete status = %d", status)
	}
	if status := ts.do(t, "GET", "/api/movies/"+heat.ID, "", nil, nil); status != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", status)
	}
}

func TestServer_AdminUsesStoredRole(t *testing.T) {
	ts := newTestServer(t, "")
	userTok := ts.register(t, "user@example.com")
	p, err := ts.tokens.Verify(userTok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	// Role claims that no longer match the account store are ignored.
	stale, err := ts.tokens.Issue(auth.Principal{ID: p.ID, Role: auth.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	orphan, err := ts.tokens.Issue(auth.Principal{ID: "deleted-account", Role: auth.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}

	input := catalog.MovieInput{Title: "Heat", Description: "Heist.", Genre: "Crime", ReleaseDate: "1995-12-15", Rating: 8}
	if status := ts.do(t, "POST", "/api/movies", stale, input, nil); status != http.StatusForbidden {
		t.Errorf("stale admin claim create status = %d, want 403", status)
	}
	if status := ts.do(t, "POST", "/api/movies", orphan, input, nil); status != http.StatusUnauthorized {
		t.Errorf("deleted account create status = %d, want 401", status)
	}
	if status := ts.do(t, "GET", "/api/users/watchlist", orphan, nil, nil); status != http.StatusUnauthorized {
		t.Errorf("deleted account watchlist status = %d, want 401", status)
	}
}

func TestServer_MoodSearch(t *testing.T) {
	ts := newTestServer(t, "")
	admin := ts.register(t, "admin@example.com")
	heat := ts.createMovie(t, admin, "Heat", "Crime")
	up := ts.createMovie(t, admin, "Up", "Animation")

	ts.mock.Response = "```json\n[\"" + up.ID + "\", \"ghost-id\", \"" + heat.ID + "\"]\n```"

	var got []catalog.Movie
	status := ts.do(t, "POST", "/api/movies/mood-search", "", map[string]string{"mood": "something uplifting"}, &got)
	if status != http.StatusOK {
		t.Fatalf("mood-search status = %d", status)
	}
	if len(got) != 2 || got[0].ID != up.ID || got[1].ID != heat.ID {
		t.Errorf("mood-search = %+v, want [Up Heat]", got)
	}
	if !strings.Contains(ts.mock.LastPrompt(), "something uplifting") {
		t.Error("prompt does not carry the mood")
	}

	ts.mock.Response = "I recommend a comedy."
	got = nil
	if status := ts.do(t, "POST", "/api/movies/mood-search", "", map[string]string{"mood": "funny"}, &got); status != http.StatusOK || len(got) != 0 || got == nil {
		t.Errorf("prose answer = %d %v, want 200 []", status, got)
	}

	calls := ts.mock.Calls()
	if status := ts.do(t, "POST", "/api/movies/mood-search", "", map[string]string{"mood": "   "}, nil); status != http.StatusBadRequest {
		t.Errorf("blank mood status = %d, want 400", status)
	}
	if ts.mock.Calls() != calls {
		t.Error("blank mood reached the model")
	}

	if v := testutil.ToFloat64(ts.metrics.PipelineOutcomes.WithLabelValues("mood_search", "malformed")); v != 1 {
		t.Errorf("malformed outcomes = %v, want 1", v)
	}
}

func TestServer_LLMCalls(t *testing.T) {
	ts := newTestServer(t, "")
	admin := ts.register(t, "admin@example.com")
	user := ts.register(t, "user@example.com")
	heat := ts.createMovie(t, admin, "Heat", "Crime")

	ts.mock.Response = `["` + heat.ID + `"]`
	ts.do(t, "POST", "/api/movies/mood-search", "", map[string]string{"mood": "tense"}, nil)
	ts.mock.Response = "no idea"
	ts.do(t, "POST", "/api/movies/mood-search", "", map[string]string{"mood": "odd"}, nil)

	if status := ts.do(t, "GET", "/api/llmcalls", user, nil, nil); status != http.StatusForbidden {
		t.Errorf("non-admin status = %d, want 403", status)
	}

	var resp endpoints.LLMCallsResponse
	if status := ts.do(t, "GET", "/api/llmcalls", admin, nil, &resp); status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if resp.Total != 2 || resp.Calls[0].Outcome != "malformed" || resp.Calls[1].Outcome != "ok" {
		t.Fatalf("calls = %+v, want malformed then ok", resp.Calls)
	}
	if resp.Calls[0].PromptKey != "mood.recommend" || resp.Calls[0].Response != "no idea" {
		t.Errorf("call trace = %+v", resp.Calls[0])
	}

	resp = endpoints.LLMCallsResponse{}
	ts.do(t, "GET", "/api/llmcalls?limit=1&operation=mood_search", admin, nil, &resp)
	if resp.Total != 1 {
		t.Errorf("limited total = %d, want 1", resp.Total)
	}

	var one llmcall.Call
	if status := ts.do(t, "GET", "/api/llmcalls/"+resp.Calls[0].ID, admin, nil, &one); status != http.StatusOK || one.ID != resp.Calls[0].ID {
		t.Errorf("get status = %d, call = %+v", status, one)
	}
	if status := ts.do(t, "GET", "/api/llmcalls/ghost", admin, nil, nil); status != http.StatusNotFound {
		t.Errorf("unknown call status = %d, want 404", status)
	}
	if status := ts.do(t, "GET", "/api/llmcalls?success=maybe", admin, nil, nil); status != http.StatusBadRequest {
		t.Errorf("bad filter status = %d, want 400", status)
	}
}

func TestServer_GenerateMetadata(t *testing.T) {
	ts := newTestServer(t, "")
	admin := ts.register(t, "admin@example.com")
	user := ts.register(t, "user@example.com")
	body := map[string]string{"title": "Heat"}

	if status := ts.do(t, "POST", "/api/movies/ai-generate", "", body, nil); status != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", status)
	}
	if status := ts.do(t, "POST", "/api/movies/ai-generate", user, body, nil); status != http.StatusForbidden {
		t.Errorf("user status = %d, want 403", status)
	}
	if ts.mock.Calls() != 0 {
		t.Fatalf("unauthorized requests reached the model %d times", ts.mock.Calls())
	}

	ts.mock.Response = `{"genre":"Crime","rating":"great"}`
	var draft catalog.Draft
	status := ts.do(t, "POST", "/api/movies/ai-generate", admin, body, &draft)
	if status != http.StatusOK {
		t.Fatalf("generate status = %d", status)
	}
	if draft.Genre == nil || *draft.Genre != "Crime" || draft.Rating != nil || draft.Description != nil {
		t.Errorf("draft = %+v, want genre only", draft)
	}

	ts.mock.Respond = func(string) (string, error) {
		return "", &providers.UpstreamError{Provider: "mock", Kind: providers.KindStatus, StatusCode: 503}
	}
	if status := ts.do(t, "POST", "/api/movies/ai-generate", admin, body, nil); status != http.StatusBadGateway {
		t.Errorf("upstream failure status = %d, want 502", status)
	}

	if count, _ := ts.Services().Catalog.Count(context.Background()); count != 0 {
		t.Errorf("drafting saved %d movies", count)
	}
}

func TestServer_AIDisabled(t *testing.T) {
	srv := newServerFromYAML(t, `
store:
  backend: memory
auth:
  jwt_secret: test-secret
ai:
  provider: gemini
  api_key: ""
`)
	if srv.aiClient != nil {
		t.Fatal("AI client created without an API key")
	}
	if err := srv.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	ts := &testServer{Server: srv}

	if status := ts.do(t, "POST", "/api/movies/mood-search", "", map[string]string{"mood": "cozy"}, nil); status != http.StatusServiceUnavailable {
		t.Errorf("mood-search without AI status = %d, want 503", status)
	}
	var status endpoints.StatusResponse
	ts.do(t, "GET", "/status", "", nil, &status)
	if status.AI.Status != "disabled" {
		t.Errorf("ai status = %q, want disabled", status.AI.Status)
	}
}

func TestServer_Watchlist(t *testing.T) {
	ts := newTestServer(t, "")
	admin := ts.register(t, "admin@example.com")
	heat := ts.createMovie(t, admin, "Heat", "Crime")
	user := ts.register(t, "user@example.com")

	if status := ts.do(t, "GET", "/api/users/watchlist", "", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("anonymous watchlist status = %d, want 401", status)
	}

	var list []catalog.Movie
	if status := ts.do(t, "PUT", "/api/users/watchlist/add", user, endpoints.WatchlistRequest{MovieID: heat.ID}, &list); status != http.StatusOK || len(list) != 1 {
		t.Errorf("add = %d %v", status, list)
	}
	if status := ts.do(t, "PUT", "/api/users/watchlist/add", user, endpoints.WatchlistRequest{MovieID: "missing"}, nil); status != http.StatusNotFound {
		t.Errorf("add missing status = %d, want 404", status)
	}

	list = nil
	if status := ts.do(t, "GET", "/api/users/watchlist", user, nil, &list); status != http.StatusOK || len(list) != 1 || list[0].Title != "Heat" {
		t.Errorf("watchlist = %d %v", status, list)
	}

	if status := ts.do(t, "PUT", "/api/users/watchlist/remove", user, endpoints.WatchlistRequest{MovieID: heat.ID}, &list); status != http.StatusOK || len(list) != 0 {
		t.Errorf("remove = %d %v", status, list)
	}

	var stats endpoints.StatsResponse
	if status := ts.do(t, "GET", "/api/users/stats", admin, nil, &stats); status != http.StatusOK || stats.TotalUsers != 2 || stats.TotalMovies != 1 {
		t.Errorf("stats = %d %+v", status, stats)
	}
}

func TestServer_Login(t *testing.T) {
	ts := newTestServer(t, "")
	ts.register(t, "ann@example.com")

	if status := ts.do(t, "POST", "/api/users/register", "", map[string]string{
		"firstName": "Ann", "lastName": "Again", "email": "ANN@example.com", "password": "secret1",
	}, nil); status != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", status)
	}

	var auth endpoints.AuthResponse
	if status := ts.do(t, "POST", "/api/users/login", "", endpoints.LoginRequest{Email: "ann@example.com", Password: "secret1"}, &auth); status != http.StatusOK || auth.Token == "" {
		t.Errorf("login = %d %+v", status, auth)
	}
	if status := ts.do(t, "POST", "/api/users/login", "", endpoints.LoginRequest{Email: "ann@example.com", Password: "wrong1"}, nil); status != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", status)
	}
}

func TestServer_RateLimit(t *testing.T) {
	ts := newTestServer(t, "rate_limit:\n  ai_requests: 2\n  ai_window: 1m\n")
	body := map[string]string{"mood": "cozy"}

	for i := 0; i < 2; i++ {
		if status := ts.do(t, "POST", "/api/movies/mood-search", "", body, nil); status != http.StatusOK {
			t.Fatalf("request %d status = %d", i, status)
		}
	}
	if status := ts.do(t, "POST", "/api/movies/mood-search", "", body, nil); status != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", status)
	}
	// Non-AI routes are not limited.
	if status := ts.do(t, "GET", "/api/movies", "", nil, nil); status != http.StatusOK {
		t.Errorf("list status = %d", status)
	}
}

func TestServer_MetricsAndDocs(t *testing.T) {
	ts := newTestServer(t, "")
	ts.do(t, "GET", "/api/movies", "", nil, nil)

	rec := ts.serve("GET", "/metrics", "", nil)
	if !strings.Contains(rec.Body.String(), `cinemind_http_requests_total{method="GET",route="GET /api/movies",status="200"} 1`) {
		t.Errorf("metrics missing request series:\n%s", rec.Body.String())
	}

	rec = ts.serve("GET", "/swagger.json", "", nil)
	var doc map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("swagger.json is not JSON: %v", err)
	}
	if _, ok := doc["paths"].(map[string]any)["/api/movies/mood-search"]; !ok {
		t.Error("swagger.json missing mood-search path")
	}
}

func TestServer_Prompts(t *testing.T) {
	ts := newTestServer(t, "")
	admin := ts.register(t, "admin@example.com")

	if status := ts.do(t, "GET", "/api/prompts", "", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", status)
	}

	var list endpoints.PromptsListResponse
	if status := ts.do(t, "GET", "/api/prompts", admin, nil, &list); status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	if len(list.Prompts) != 2 {
		t.Errorf("prompts = %d, want 2", len(list.Prompts))
	}

	if status := ts.do(t, "GET", "/api/prompts/mood.recommend", admin, nil, nil); status != http.StatusOK {
		t.Errorf("get status = %d, want 200", status)
	}
	if status := ts.do(t, "GET", "/api/prompts/nope", admin, nil, nil); status != http.StatusNotFound {
		t.Errorf("unknown key status = %d, want 404", status)
	}
}

func TestServer_Status(t *testing.T) {
	ts := newTestServer(t, "")
	var status endpoints.StatusResponse
	if code := ts.do(t, "GET", "/status", "", nil, &status); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if status.Store.Backend != "memory" || status.Store.Health != "healthy" {
		t.Errorf("store = %+v", status.Store)
	}
	if status.AI.Status != "enabled" || status.AI.Provider != "mock" {
		t.Errorf("ai = %+v", status.AI)
	}
}

func TestServer_StaticUI(t *testing.T) {
	ts := newTestServer(t, "")

	rec := ts.serve("GET", "/", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<title>CineMind</title>") {
		t.Errorf("GET / = %d", rec.Code)
	}
	if rec := ts.serve("GET", "/app.js", "", nil); rec.Code != http.StatusOK {
		t.Errorf("GET /app.js = %d", rec.Code)
	}
	if rec := ts.serve("GET", "/api/nope", "", nil); rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("GET /api/nope = %d %s", rec.Code, rec.Body.String())
	}
}
