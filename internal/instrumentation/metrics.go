package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod   = "method"
	attrPath     = "path"
	attrStatus   = "status"
	attrService  = "service"
	attrOp       = "operation"
	attrResource = "resource"
	attrResult   = "result"
	attrAction   = "action"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a no-op recorder.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Upstream API metrics (todoist, notion)
	upstreamOperationsTotal   metric.Int64Counter
	upstreamOperationDuration metric.Float64Histogram

	// Cache metrics
	cacheHitsTotal          metric.Int64Counter
	cacheMissesTotal        metric.Int64Counter
	cacheInvalidationsTotal metric.Int64Counter

	// Completion toggle metrics
	taskTogglesTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all instruments
// initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.upstreamOperationsTotal, err = meter.Int64Counter(
		"upstream_operations_total",
		metric.WithDescription("Total number of remote source API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream_operations_total counter: %w", err)
	}

	m.upstreamOperationDuration, err = meter.Float64Histogram(
		"upstream_operation_duration_seconds",
		metric.WithDescription("Remote source API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream_operation_duration_seconds histogram: %w", err)
	}

	m.cacheHitsTotal, err = meter.Int64Counter(
		"cache_hits_total",
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache_hits_total counter: %w", err)
	}

	m.cacheMissesTotal, err = meter.Int64Counter(
		"cache_misses_total",
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache_misses_total counter: %w", err)
	}

	m.cacheInvalidationsTotal, err = meter.Int64Counter(
		"cache_invalidations_total",
		metric.WithDescription("Total number of cache invalidations after mutations"),
		metric.WithUnit("{invalidation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache_invalidations_total counter: %w", err)
	}

	m.taskTogglesTotal, err = meter.Int64Counter(
		"task_toggles_total",
		metric.WithDescription("Total number of completion toggle operations"),
		metric.WithUnit("{toggle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task_toggles_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m.httpRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(status)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordUpstreamOperation records one call against a remote source.
func (m *Metrics) RecordUpstreamOperation(ctx context.Context, service, op string, err error, duration time.Duration) {
	if m.upstreamOperationsTotal == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOp, op),
		attribute.String(attrResult, result),
	)
	m.upstreamOperationsTotal.Add(ctx, 1, attrs)
	m.upstreamOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCacheHit records a cache hit for a resource.
func (m *Metrics) RecordCacheHit(ctx context.Context, resource string) {
	if m.cacheHitsTotal == nil {
		return
	}
	m.cacheHitsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResource, resource)))
}

// RecordCacheMiss records a cache miss for a resource.
func (m *Metrics) RecordCacheMiss(ctx context.Context, resource string) {
	if m.cacheMissesTotal == nil {
		return
	}
	m.cacheMissesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResource, resource)))
}

// RecordCacheInvalidation records an explicit invalidation of a resource.
func (m *Metrics) RecordCacheInvalidation(ctx context.Context, resource string) {
	if m.cacheInvalidationsTotal == nil {
		return
	}
	m.cacheInvalidationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResource, resource)))
}

// RecordTaskToggle records a completion toggle, action "close" or "reopen".
func (m *Metrics) RecordTaskToggle(ctx context.Context, action string, err error) {
	if m.taskTogglesTotal == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.taskTogglesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrAction, action),
		attribute.String(attrResult, result),
	))
}
