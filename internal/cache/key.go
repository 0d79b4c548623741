package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Resource identifies a class of cached data. The resource is the leading
// segment of every key, so a whole class can be invalidated by prefix.
type Resource string

// Cached resource classes.
const (
	ResourceTasks     Resource = "tasks"
	ResourceProjects  Resource = "projects"
	ResourceSections  Resource = "sections"
	ResourceLabels    Resource = "labels"
	ResourceComments  Resource = "comments"
	ResourceUser      Resource = "user"
	ResourceDatabases Resource = "databases"
)

// Freshness windows per resource. Task-shaped data moves fast and goes
// stale after 30s; reference data (labels, projects, sections) holds for a
// minute. Mutations bypass these via Invalidate.
const (
	taskTTL      = 30 * time.Second
	referenceTTL = 60 * time.Second
)

// TTL returns the freshness window for a resource.
func TTL(r Resource) time.Duration {
	switch r {
	case ResourceTasks, ResourceComments:
		return taskTTL
	default:
		return referenceTTL
	}
}

// Key builds a cache key from a resource, the auth token, and request
// parameters. The token participates in the key (different tokens must not
// share results) but only as a hash, so keys are safe to log.
func Key(r Resource, token string, params ...string) string {
	parts := append([]string{string(r), hashToken(token)}, params...)
	return strings.Join(parts, "/")
}

// Prefix returns the invalidation prefix covering every key of a resource
// under one token.
func Prefix(r Resource, token string) string {
	return string(r) + "/" + hashToken(token)
}

func hashToken(token string) string {
	if token == "" {
		return "anon"
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
