package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/upnext/upnext/internal/cache"
	"github.com/upnext/upnext/internal/config"
	"github.com/upnext/upnext/internal/dashboard"
	"github.com/upnext/upnext/internal/instrumentation"
	"github.com/upnext/upnext/internal/notion"
	"github.com/upnext/upnext/internal/todoist"
)

// ServerContext holds the shared dependencies of the HTTP server. Dashboard
// services are created lazily per Todoist token and cached, so concurrent
// requests with the same credentials share one fetch cache.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg     config.Config
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	notionClient *notion.Client

	mu         sync.RWMutex
	dashboards map[string]*dashboard.Service
	shutdown   bool
}

// NewServerContext creates a server context. The Notion client is created
// eagerly when a Notion token is configured; requests without one get a
// configuration error at request time rather than at startup.
func NewServerContext(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	sc := &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		dashboards: make(map[string]*dashboard.Service),
	}

	if cfg.Notion.Token != "" {
		opts := []notion.Option{}
		if cfg.Notion.BaseURL != "" {
			opts = append(opts, notion.WithBaseURL(cfg.Notion.BaseURL))
		}
		client, err := notion.NewClient(cfg.Notion.Token, opts...)
		if err != nil {
			cancel()
			return nil, err
		}
		sc.notionClient = client
	}

	return sc, nil
}

// Context returns the server's lifecycle context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// NotionClient returns the configured Notion client, or nil when no Notion
// token is configured.
func (sc *ServerContext) NotionClient() *notion.Client {
	return sc.notionClient
}

// DashboardForToken returns the dashboard service for a Todoist token,
// creating and caching it on first use. Each token gets its own cache so
// credentials never share results.
func (sc *ServerContext) DashboardForToken(token string) (*dashboard.Service, error) {
	sc.mu.RLock()
	svc, ok := sc.dashboards[token]
	sc.mu.RUnlock()
	if ok {
		return svc, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if svc, ok := sc.dashboards[token]; ok {
		return svc, nil
	}

	opts := []todoist.Option{}
	if sc.cfg.Todoist.BaseURL != "" {
		opts = append(opts, todoist.WithBaseURL(sc.cfg.Todoist.BaseURL))
	}
	client, err := todoist.NewClient(token, opts...)
	if err != nil {
		return nil, err
	}

	svc = dashboard.New(client, cache.New(), token, sc.logger, sc.metrics)
	sc.dashboards[token] = svc
	return svc, nil
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}
