// Package instrumentation provides OpenTelemetry metrics for the
// application.
//
// A Provider owns the meter provider and exporter (Prometheus by default,
// scraped from the dedicated metrics listener; stdout for local debugging)
// and hands out a Metrics recorder covering the HTTP surface, the two
// remote sources, the request cache, and the completion toggle.
//
// Instrumentation can be disabled entirely with
// INSTRUMENTATION_ENABLED=false, in which case the recorder is a no-op and
// no exporter is created.
package instrumentation
