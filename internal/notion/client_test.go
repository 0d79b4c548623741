package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequestShape(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "2022-06-28", r.Header.Get("Notion-Version"))

		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))

		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	client, err := NewClient("secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.Search(context.Background())
	require.NoError(t, err)

	filter, ok := gotBody["filter"].(map[string]interface{})
	require.True(t, ok, "search body must carry a filter")
	assert.Equal(t, "database", filter["value"])
	assert.Equal(t, "object", filter["property"])
	assert.Equal(t, float64(100), gotBody["page_size"])
}

func TestSearchDatabasesFiltersByObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"object":"database","id":"db1","title":[{"plain_text":"Road"},{"plain_text":"map"}]},
			{"object":"page","id":"pg1"},
			{"object":"database","id":"db2"}
		]}`))
	}))
	defer srv.Close()

	client, err := NewClient("secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	dbs, err := client.SearchDatabases(context.Background())
	require.NoError(t, err)

	require.Len(t, dbs, 2)
	assert.Equal(t, "db1", dbs[0].ID)
	assert.Equal(t, "Roadmap", dbs[0].PlainTitle())
	assert.Equal(t, "db2", dbs[1].ID)
	assert.Equal(t, "", dbs[1].PlainTitle(), "untitled database yields empty title")
}

func TestGetDatabase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/databases/db1", r.URL.Path)
		w.Write([]byte(`{"object":"database","id":"db1"}`))
	}))
	defer srv.Close()

	client, err := NewClient("secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	raw, err := client.GetDatabase(context.Background(), "db1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"object":"database","id":"db1"}`, string(raw))

	_, err = client.GetDatabase(context.Background(), "")
	assert.Error(t, err, "empty ID must be rejected before the network call")
}

func TestUpstreamErrorCarriesStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"object":"error","status":404,"message":"Could not find database"}`))
	}))
	defer srv.Close()

	client, err := NewClient("secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.GetDatabase(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Could not find database", apiErr.Message)
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}
