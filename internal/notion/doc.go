// Package notion provides a minimal client for the Notion API.
//
// Only the two read calls the proxy forwards are implemented:
//   - Searching for databases (most recently edited first)
//   - Fetching a single database by ID
//
// Raw response bodies are preserved so the proxy can pass them through
// unchanged; SearchDatabases additionally decodes the results into typed
// records for the dashboard's database list. Records with missing titles or
// properties decode to zero values rather than failing.
package notion
