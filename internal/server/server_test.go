package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upnext/upnext/internal/config"
)

// newTestServer builds a server backed by fake Todoist and Notion upstreams.
func newTestServer(t *testing.T, todoistHandler, notionHandler http.HandlerFunc) *Server {
	t.Helper()

	cfg := config.Default()
	if todoistHandler != nil {
		upstream := httptest.NewServer(todoistHandler)
		t.Cleanup(upstream.Close)
		cfg.Todoist.Token = "test-todoist-token"
		cfg.Todoist.BaseURL = upstream.URL
	}
	if notionHandler != nil {
		upstream := httptest.NewServer(notionHandler)
		t.Cleanup(upstream.Close)
		cfg.Notion.Token = "test-notion-token"
		cfg.Notion.BaseURL = upstream.URL
	}

	sc, err := NewServerContext(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	return New(sc, cfg.Server)
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func todoistFake(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/tasks" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`[
				{"id": "1", "content": "file taxes", "project_id": "p1", "priority": 4,
				 "due": {"string": "Jun 10", "date": "2024-06-10"}},
				{"id": "2", "content": "someday", "project_id": "p1", "priority": 1}
			]`))
		case r.URL.Path == "/projects":
			_, _ = w.Write([]byte(`[{"id": "p1", "name": "Work"}]`))
		case strings.HasSuffix(r.URL.Path, "/close") && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{}`))
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doRequest(s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestReadinessAfterShutdown(t *testing.T) {
	s := newTestServer(t, nil, nil)
	require.NoError(t, s.sc.Shutdown())

	rec := doRequest(s, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAgendaEndpoint(t *testing.T) {
	s := newTestServer(t, todoistFake(t), nil)

	rec := doRequest(s, http.MethodGet, "/api/agenda")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Overdue  []json.RawMessage `json:"overdue"`
		Today    []json.RawMessage `json:"today"`
		Upcoming []json.RawMessage `json:"upcoming"`
		Stats    struct {
			Total int `json:"total"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Stats.Total)
	assert.Len(t, view.Overdue, 1, "the 2024 due date is long past")
	assert.Empty(t, view.Upcoming)
}

func TestAgendaWithoutTokenReturnsEnvelope(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/agenda")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "token is not configured")
	assert.NotEmpty(t, resp.Timestamp)
	assert.NotEmpty(t, resp.RequestID)
}

func TestMonthEndpointGroupsByDate(t *testing.T) {
	s := newTestServer(t, todoistFake(t), nil)

	rec := doRequest(s, http.MethodGet, "/api/month")
	require.Equal(t, http.StatusOK, rec.Code)

	var byDate map[string][]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byDate))
	assert.Len(t, byDate["2024-06-10"], 1)
	assert.NotContains(t, byDate, "", "undated tasks have no calendar day")
}

func TestCloseTaskEndpoint(t *testing.T) {
	s := newTestServer(t, todoistFake(t), nil)

	rec := doRequest(s, http.MethodPost, "/api/tasks/1/close")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestExportJSONEndpoint(t *testing.T) {
	s := newTestServer(t, todoistFake(t), nil)

	rec := doRequest(s, http.MethodGet, "/api/export?format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Work", records[0]["project"])
}

func TestExportDefaultsToJSON(t *testing.T) {
	s := newTestServer(t, todoistFake(t), nil)

	rec := doRequest(s, http.MethodGet, "/api/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	s := newTestServer(t, todoistFake(t), nil)

	rec := doRequest(s, http.MethodGet, "/api/export?format=xml")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotionSearchPassthrough(t *testing.T) {
	upstream := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer test-notion-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "results": [{"object": "database", "id": "db1"}]}`))
	}

	s := newTestServer(t, nil, upstream)
	rec := doRequest(s, http.MethodGet, "/api/notion/search")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"object": "list", "results": [{"object": "database", "id": "db1"}]}`, rec.Body.String())
}

func TestDatabasesFiltersNonDatabases(t *testing.T) {
	upstream := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "results": [
			{"object": "database", "id": "db1", "title": [{"plain_text": "Tasks"}]},
			{"object": "page", "id": "pg1"}
		]}`))
	}

	s := newTestServer(t, nil, upstream)
	rec := doRequest(s, http.MethodGet, "/api/databases")
	require.Equal(t, http.StatusOK, rec.Code)

	var dbs []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dbs))
	require.Len(t, dbs, 1)
	assert.Equal(t, "db1", dbs[0].ID)
}

func TestNotionWithoutTokenIs500(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/notion/search")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Notion token is not configured", resp.Error)
}

func TestNotionUpstreamErrorKeepsStatus(t *testing.T) {
	upstream := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object": "error", "status": 404, "message": "Could not find database"}`))
	}

	s := newTestServer(t, nil, upstream)
	rec := doRequest(s, http.MethodGet, "/api/notion/database/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "Could not find database")
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-Id"))

	// generated when absent
	rec = doRequest(s, http.MethodGet, "/healthz")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestBearerTokenSelectsDashboard(t *testing.T) {
	seen := make(map[string]bool)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[r.Header.Get("Authorization")] = true
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(upstream.Close)

	cfg := config.Default()
	cfg.Todoist.BaseURL = upstream.URL
	sc, err := NewServerContext(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	s := New(sc, cfg.Server)

	req := httptest.NewRequest(http.MethodGet, "/api/agenda", nil)
	req.Header.Set("Authorization", "Bearer caller-token")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen["Bearer caller-token"])
}
