// Package cache implements the request-state layer between the dashboard
// and the remote sources.
//
// A fetch is identified by a composite key (resource kind, hashed auth
// token, request parameters). The cache guarantees at most one in-flight
// fetch per key (concurrent requesters share the pending result) and
// serves cached values while they are fresher than the resource's TTL.
// Explicit invalidation after a mutation bypasses freshness and forces the
// next read to refetch.
//
// The cache is the only shared mutable state in the process. There is no
// locking protocol beyond the cache's own: the remote source is the single
// source of truth and cached data is a disposable projection of it.
package cache
