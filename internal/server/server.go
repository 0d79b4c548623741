package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/upnext/upnext/internal/agenda"
	"github.com/upnext/upnext/internal/config"
	"github.com/upnext/upnext/internal/dashboard"
	"github.com/upnext/upnext/internal/export"
	"github.com/upnext/upnext/internal/instrumentation"
	"github.com/upnext/upnext/internal/logging"
	"github.com/upnext/upnext/internal/todoist"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 60 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP servers.
	DefaultShutdownTimeout = 30 * time.Second
)

// Server is the dashboard API server. It exposes the agenda endpoints, the
// Notion read proxy, and health probes on one listener.
type Server struct {
	sc         *ServerContext
	health     *HealthChecker
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	httpServer *http.Server
}

// New creates the API server for a server context.
func New(sc *ServerContext, cfg config.ServerConfig) *Server {
	s := &Server{
		sc:      sc,
		health:  NewHealthChecker(sc),
		logger:  logging.WithService(sc.logger, "http"),
		metrics: sc.metrics,
	}

	mux := http.NewServeMux()
	s.health.RegisterHealthEndpoints(mux)

	mux.HandleFunc("GET /api/agenda", s.handleAgenda)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/month", s.handleMonth)
	mux.HandleFunc("GET /api/projects", s.handleProjects)
	mux.HandleFunc("GET /api/labels", s.handleLabels)
	mux.HandleFunc("GET /api/sections", s.handleSections)
	mux.HandleFunc("GET /api/comments", s.handleComments)
	mux.HandleFunc("GET /api/user", s.handleUser)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/tasks/{id}/close", s.handleCloseTask)
	mux.HandleFunc("POST /api/tasks/{id}/reopen", s.handleReopenTask)

	mux.HandleFunc("GET /api/databases", s.handleDatabases)
	mux.HandleFunc("GET /api/notion/search", s.handleNotionSearch)
	mux.HandleFunc("GET /api/notion/database/{id}", s.handleNotionDatabase)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.instrument(mux),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}
	return s
}

// Start runs the server until the listener fails or is shut down. Call in a
// goroutine for non-blocking operation.
func (s *Server) Start() error {
	s.logger.Info("starting API server", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type contextKey string

const requestIDKey contextKey = "requestID"

// instrument wraps the mux with request IDs, structured request logging,
// and HTTP metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		s.metrics.RecordHTTPRequest(ctx, r.Method, r.URL.Path, rec.status, duration)
		s.logger.Info("request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			logging.RequestID(requestID),
			logging.Duration(duration),
		)
	})
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// errorResponse is the uniform error envelope of every API endpoint.
type errorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:     msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// upstreamStatus maps a service error to a response status: the upstream's
// own status when known, 500 otherwise.
func upstreamStatus(err error) int {
	var apiErr *todoist.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}

// dashboardFor resolves the caller's dashboard service: the Bearer token
// from the Authorization header, falling back to the configured token.
func (s *Server) dashboardFor(w http.ResponseWriter, r *http.Request) (*dashboard.Service, bool) {
	token := s.sc.cfg.Todoist.Token
	if auth := r.Header.Get("Authorization"); auth != "" {
		if t, ok := strings.CutPrefix(auth, "Bearer "); ok {
			token = strings.TrimSpace(t)
		}
	}
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "Todoist token is not configured")
		return nil, false
	}

	svc, err := s.sc.DashboardForToken(token)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return svc, true
}

// agendaRequest parses the shared view parameters: project, filters, and
// the evaluation instant (defaulting to now).
func agendaRequest(r *http.Request) dashboard.AgendaRequest {
	q := r.URL.Query()

	req := dashboard.AgendaRequest{
		ProjectID: q.Get("project_id"),
		Now:       time.Now(),
		Filter: agenda.Filter{
			Search: q.Get("search"),
		},
	}
	if p := q.Get("priority"); p != "" {
		var priority int
		if _, err := fmt.Sscanf(p, "%d", &priority); err == nil {
			req.Filter.Priority = priority
		}
	}
	if labels := q.Get("labels"); labels != "" {
		req.Filter.Labels = strings.Split(labels, ",")
	}
	return req
}

func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.dashboardFor(w, r)
	if !ok {
		return
	}
	view, err := svc.Agenda(r.Context(), agendaRequest(r))
	if err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.dashboardFor(w, r)
	if !ok {
		return
	}
	events, err := svc.Events(r.Context(), agendaRequest(r))
	if err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.dashboardFor(w, r)
	if !ok {
		return
	}
	byDate, err := svc.Month(r.Context(), agendaRequest(r))
	if err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, byDate)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.dashboardFor(w, r)
	if !ok {
		return
	}
	projects, err := svc.Projects(r.Context())
	if err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.dashboardFor(w, r)
	if !ok {
		return
	}
	labels, err := svc.Labels(r.Context())
	if err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.dashboardFor(w, r)
	if !ok {
		return
	}
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		writeError(w, r, http.StatusBadRequest, "project_id is required")
		return
	}
	view, err := svc.SectionTree(r.Context(), projectID)
	if err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.dashboardFor(w, r)
	if !ok {
		return
	}
	taskID := r.URL.Query().Get("task_id")
	if taskID == "" {
		writeError(w, r, http.StatusBadRequest, "task_id is required")
		return
	}
	comments, err := svc.Comments(r.Context(), taskID)
	if err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.dashboardFor(w, r)
	if !ok {
		return
	}
	user, err := svc.User(r.Context())
	if err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleCloseTask(w http.ResponseWriter, r *http.Request) {
	s.toggleTask(w, r, true)
}

func (s *Server) handleReopenTask(w http.ResponseWriter, r *http.Request) {
	s.toggleTask(w, r, false)
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request, complete bool) {
	svc, ok := s.dashboardFor(w, r)
	if !ok {
		return
	}
	taskID := r.PathValue("id")
	if err := svc.ToggleCompletion(r.Context(), taskID, complete); err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var exportContentTypes = map[export.Format]string{
	export.FormatJSON: "application/json",
	export.FormatCSV:  "text/csv",
	export.FormatICS:  "text/calendar",
	export.FormatPDF:  "application/pdf",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.dashboardFor(w, r)
	if !ok {
		return
	}

	formatName := r.URL.Query().Get("format")
	if formatName == "" {
		formatName = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req := agendaRequest(r)
	tasks, err := svc.Tasks(r.Context(), req.ProjectID)
	if err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	tasks = agenda.FilterTasks(tasks, req.Filter)

	projects, err := svc.Projects(r.Context())
	if err != nil {
		writeError(w, r, upstreamStatus(err), err.Error())
		return
	}
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	w.Header().Set("Content-Type", exportContentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=agenda.%s", format))

	switch format {
	case export.FormatJSON:
		err = export.WriteJSON(w, tasks, names)
	case export.FormatCSV:
		err = export.WriteCSV(w, tasks, names)
	case export.FormatICS:
		err = export.WriteICS(w, tasks, req.Now.Location())
	case export.FormatPDF:
		err = export.WritePDF(w, tasks, names, req.Now)
	}
	if err != nil {
		s.logger.Warn("export write failed", logging.Err(err))
	}
}
