// Package server provides the HTTP surface of the application: the agenda
// and export API, the Notion read proxy, health probes for Kubernetes, and
// a dedicated Prometheus metrics listener.
//
// The API server resolves a dashboard service per caller: the Bearer token
// of the Authorization header selects (and lazily creates) a service with
// its own fetch cache, so different credentials never share results. The
// Notion proxy always uses the server-side integration token and passes
// successful upstream bodies through untouched.
//
// Every API error uses one envelope: a JSON object with error, timestamp,
// and requestId fields, carrying the upstream status code when the failure
// came from a remote API and 500 otherwise.
package server
