package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/upnext/upnext/internal/agenda"
	"github.com/upnext/upnext/internal/cache"
	"github.com/upnext/upnext/internal/instrumentation"
	"github.com/upnext/upnext/internal/logging"
	"github.com/upnext/upnext/internal/todoist"
)

// TaskSource is the slice of the Todoist client the dashboard consumes.
type TaskSource interface {
	ListTasks(ctx context.Context, opts todoist.ListTasksOptions) ([]todoist.Task, error)
	ListProjects(ctx context.Context) ([]todoist.Project, error)
	ListSections(ctx context.Context, projectID string) ([]todoist.Section, error)
	ListLabels(ctx context.Context) ([]todoist.Label, error)
	ListComments(ctx context.Context, taskID string) ([]todoist.Comment, error)
	GetUser(ctx context.Context) (*todoist.User, error)
	CloseTask(ctx context.Context, id string) error
	ReopenTask(ctx context.Context, id string) error
}

// Service ties the task source, the request cache, and the aggregation
// pipeline together. Reads are served from cache within each resource's
// freshness window; the completion toggle is the only write and invalidates
// the task cache after the source confirms it.
type Service struct {
	source  TaskSource
	cache   *cache.Cache
	token   string
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// New creates a dashboard service. The token is used only to derive cache
// keys; authentication lives in the source client.
func New(source TaskSource, c *cache.Cache, token string, logger *slog.Logger, metrics *instrumentation.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	s := &Service{
		source:  source,
		cache:   c,
		token:   token,
		logger:  logging.WithService(logger, "todoist"),
		metrics: metrics,
	}
	c.SetObserver(s)
	return s
}

// CacheHit implements cache.Observer.
func (s *Service) CacheHit(key string) {
	s.metrics.RecordCacheHit(context.Background(), resourceOf(key))
}

// CacheMiss implements cache.Observer.
func (s *Service) CacheMiss(key string) {
	s.logger.Debug("cache miss", logging.Resource(resourceOf(key)))
	s.metrics.RecordCacheMiss(context.Background(), resourceOf(key))
}

// CacheInvalidation implements cache.Observer.
func (s *Service) CacheInvalidation(key string) {
	s.logger.Debug("cache invalidated", logging.Resource(resourceOf(key)))
	s.metrics.RecordCacheInvalidation(context.Background(), resourceOf(key))
}

// resourceOf extracts the resource class from a cache key for metric labels.
func resourceOf(key string) string {
	if i := strings.IndexByte(key, '/'); i > 0 {
		return key[:i]
	}
	return key
}

// fetch wraps an upstream call with operation metrics and logging.
func fetch[T any](ctx context.Context, s *Service, op string, call func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := call(ctx)
	duration := time.Since(start)
	s.metrics.RecordUpstreamOperation(ctx, "todoist", op, err, duration)
	if err != nil {
		s.logger.Warn("upstream call failed",
			logging.Operation(op),
			logging.Status(logging.StatusError),
			logging.Err(err),
		)
	} else {
		s.logger.Debug("upstream call",
			logging.Operation(op),
			logging.Status(logging.StatusSuccess),
			logging.Duration(duration),
		)
	}
	return v, err
}

// Tasks returns the active tasks, optionally narrowed to one project.
func (s *Service) Tasks(ctx context.Context, projectID string) ([]todoist.Task, error) {
	key := cache.Key(cache.ResourceTasks, s.token, projectID)
	return cache.Get(ctx, s.cache, key, cache.TTL(cache.ResourceTasks), func(ctx context.Context) ([]todoist.Task, error) {
		return fetch(ctx, s, "listTasks", func(ctx context.Context) ([]todoist.Task, error) {
			return s.source.ListTasks(ctx, todoist.ListTasksOptions{ProjectID: projectID})
		})
	})
}

// Projects returns all projects.
func (s *Service) Projects(ctx context.Context) ([]todoist.Project, error) {
	key := cache.Key(cache.ResourceProjects, s.token)
	return cache.Get(ctx, s.cache, key, cache.TTL(cache.ResourceProjects), func(ctx context.Context) ([]todoist.Project, error) {
		return fetch(ctx, s, "listProjects", s.source.ListProjects)
	})
}

// Sections returns the sections of a project.
func (s *Service) Sections(ctx context.Context, projectID string) ([]todoist.Section, error) {
	key := cache.Key(cache.ResourceSections, s.token, projectID)
	return cache.Get(ctx, s.cache, key, cache.TTL(cache.ResourceSections), func(ctx context.Context) ([]todoist.Section, error) {
		return fetch(ctx, s, "listSections", func(ctx context.Context) ([]todoist.Section, error) {
			return s.source.ListSections(ctx, projectID)
		})
	})
}

// Labels returns all labels.
func (s *Service) Labels(ctx context.Context) ([]todoist.Label, error) {
	key := cache.Key(cache.ResourceLabels, s.token)
	return cache.Get(ctx, s.cache, key, cache.TTL(cache.ResourceLabels), func(ctx context.Context) ([]todoist.Label, error) {
		return fetch(ctx, s, "listLabels", s.source.ListLabels)
	})
}

// Comments returns the comments of one task. Callers gate this on
// comment_count > 0 to avoid pointless round trips.
func (s *Service) Comments(ctx context.Context, taskID string) ([]todoist.Comment, error) {
	key := cache.Key(cache.ResourceComments, s.token, taskID)
	return cache.Get(ctx, s.cache, key, cache.TTL(cache.ResourceComments), func(ctx context.Context) ([]todoist.Comment, error) {
		return fetch(ctx, s, "listComments", func(ctx context.Context) ([]todoist.Comment, error) {
			return s.source.ListComments(ctx, taskID)
		})
	})
}

// User returns the authenticated user's profile.
func (s *Service) User(ctx context.Context) (*todoist.User, error) {
	key := cache.Key(cache.ResourceUser, s.token)
	return cache.Get(ctx, s.cache, key, cache.TTL(cache.ResourceUser), func(ctx context.Context) (*todoist.User, error) {
		return fetch(ctx, s, "getUser", s.source.GetUser)
	})
}

// AgendaRequest selects and filters the tasks an agenda view is built from.
type AgendaRequest struct {
	// ProjectID narrows to one project; empty means all projects
	ProjectID string

	// Filter is applied before classification
	Filter agenda.Filter

	// Now is the evaluation instant for date bucketing
	Now time.Time
}

// AgendaView is the assembled dashboard view.
type AgendaView struct {
	Overdue  []todoist.Task    `json:"overdue"`
	Today    []todoist.Task    `json:"today"`
	Upcoming []todoist.Task    `json:"upcoming"`
	Forest   []agenda.TaskNode `json:"forest"`
	Stats    agenda.Stats      `json:"stats"`
}

// Agenda fetches tasks (cached), applies the filter, and classifies the
// result into date buckets. Stats and the subtask forest are computed over
// the filtered set.
func (s *Service) Agenda(ctx context.Context, req AgendaRequest) (*AgendaView, error) {
	tasks, err := s.Tasks(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	filtered := agenda.FilterTasks(tasks, req.Filter)
	buckets := agenda.Classify(filtered, req.Now)

	return &AgendaView{
		Overdue:  buckets.Overdue,
		Today:    buckets.Today,
		Upcoming: buckets.Upcoming,
		Forest:   agenda.BuildTaskForest(filtered),
		Stats:    agenda.CountStats(filtered, req.Now),
	}, nil
}

// Events projects the (filtered) tasks of a project into calendar events.
func (s *Service) Events(ctx context.Context, req AgendaRequest) ([]agenda.Event, error) {
	tasks, err := s.Tasks(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	filtered := agenda.FilterTasks(tasks, req.Filter)
	return agenda.ToCalendarEvents(filtered, req.Now.Location()), nil
}

// Month groups the (filtered) dated tasks by due calendar date, keyed
// YYYY-MM-DD, for the month view.
func (s *Service) Month(ctx context.Context, req AgendaRequest) (map[string][]todoist.Task, error) {
	tasks, err := s.Tasks(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	return agenda.GroupByDate(agenda.FilterTasks(tasks, req.Filter)), nil
}

// Forest returns the one-level parent/subtask grouping of a project's tasks.
func (s *Service) Forest(ctx context.Context, projectID string) ([]agenda.TaskNode, error) {
	tasks, err := s.Tasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return agenda.BuildTaskForest(tasks), nil
}

// SectionView is the per-section dashboard grouping. When the project has
// no sections, Ungrouped carries the flat task list as the fallback.
type SectionView struct {
	Groups    []agenda.SectionGroup `json:"groups"`
	Ungrouped []todoist.Task        `json:"ungrouped,omitempty"`
}

// SectionTree groups a project's tasks under its sections.
func (s *Service) SectionTree(ctx context.Context, projectID string) (*SectionView, error) {
	tasks, err := s.Tasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	sections, err := s.Sections(ctx, projectID)
	if err != nil {
		return nil, err
	}

	view := &SectionView{Groups: agenda.BuildSectionTree(tasks, sections)}
	if len(sections) == 0 {
		view.Ungrouped = tasks
	}
	return view, nil
}

// ToggleCompletion closes the task when complete is true and reopens it
// otherwise. The cached task collections are invalidated only after the
// source confirms the write; there is no optimistic local mutation, so a
// failure leaves every cached view unchanged.
func (s *Service) ToggleCompletion(ctx context.Context, taskID string, complete bool) error {
	if taskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	action := "reopen"
	call := s.source.ReopenTask
	if complete {
		action = "close"
		call = s.source.CloseTask
	}

	start := time.Now()
	err := call(ctx, taskID)
	s.metrics.RecordUpstreamOperation(ctx, "todoist", action+"Task", err, time.Since(start))
	s.metrics.RecordTaskToggle(ctx, action, err)

	if err != nil {
		s.logger.Warn("completion toggle failed",
			logging.Operation(action+"Task"),
			logging.TaskID(taskID),
			logging.Err(err),
		)
		return fmt.Errorf("toggle task %s: %w", taskID, err)
	}

	n := s.cache.Invalidate(cache.Prefix(cache.ResourceTasks, s.token))
	s.logger.Info("completion toggled",
		logging.Operation(action+"Task"),
		logging.TaskID(taskID),
		slog.Int("invalidated", n),
	)
	return nil
}
