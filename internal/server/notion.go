package server

import (
	"errors"
	"net/http"

	"github.com/upnext/upnext/internal/notion"
)

// The Notion endpoints proxy reads to the Notion API with the server-side
// integration token, so the token never reaches clients. Successful upstream
// bodies are passed through untouched; failures are wrapped in the standard
// error envelope carrying the upstream status when one exists.

func (s *Server) handleNotionSearch(w http.ResponseWriter, r *http.Request) {
	client := s.sc.NotionClient()
	if client == nil {
		writeError(w, r, http.StatusInternalServerError, "Notion token is not configured")
		return
	}

	body, err := client.Search(r.Context())
	if err != nil {
		writeError(w, r, notionStatus(err), err.Error())
		return
	}
	writeRaw(w, body)
}

func (s *Server) handleDatabases(w http.ResponseWriter, r *http.Request) {
	client := s.sc.NotionClient()
	if client == nil {
		writeError(w, r, http.StatusInternalServerError, "Notion token is not configured")
		return
	}

	dbs, err := client.SearchDatabases(r.Context())
	if err != nil {
		writeError(w, r, notionStatus(err), err.Error())
		return
	}
	if dbs == nil {
		dbs = []notion.Database{}
	}
	writeJSON(w, http.StatusOK, dbs)
}

func (s *Server) handleNotionDatabase(w http.ResponseWriter, r *http.Request) {
	client := s.sc.NotionClient()
	if client == nil {
		writeError(w, r, http.StatusInternalServerError, "Notion token is not configured")
		return
	}

	body, err := client.GetDatabase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, notionStatus(err), err.Error())
		return
	}
	writeRaw(w, body)
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func notionStatus(err error) int {
	var apiErr *notion.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}
