package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Notion API endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"

	// apiVersion pins the Notion API revision the client speaks.
	apiVersion = "2022-06-28"

	// searchPageSize is the page size requested from /v1/search.
	searchPageSize = 100
)

// Client is a Notion API client. It is used server-side only: the proxy
// holds the credential and forwards two read calls on behalf of the browser.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Notion client authenticating with the given
// integration token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("notion token cannot be empty")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do performs an authenticated request and returns the raw response body.
// The proxy passes bodies through unmodified, so no decoding happens here.
func (c *Client) do(ctx context.Context, op, method, path string, body interface{}) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Op: op, Err: fmt.Errorf("marshal body: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &APIError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(respBody),
		}
	}

	return respBody, nil
}

// upstreamMessage extracts the "message" field from a Notion error body,
// falling back to the raw body.
func upstreamMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return strings.TrimSpace(string(body))
}

// Search performs the document search the proxy forwards: databases only,
// most recently edited first. The raw body is returned for passthrough.
func (c *Client) Search(ctx context.Context) (json.RawMessage, error) {
	body := map[string]interface{}{
		"filter": map[string]string{
			"value":    "database",
			"property": "object",
		},
		"sort": map[string]string{
			"direction": "descending",
			"timestamp": "last_edited_time",
		},
		"page_size": searchPageSize,
	}
	return c.do(ctx, "search", http.MethodPost, "/search", body)
}

// SearchDatabases runs Search and decodes the results, keeping only records
// where object == "database" as the dashboard list does.
func (c *Client) SearchDatabases(ctx context.Context) ([]Database, error) {
	raw, err := c.Search(ctx)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &APIError{Op: "search", Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	var dbs []Database
	for _, r := range resp.Results {
		if r.Object == "database" {
			dbs = append(dbs, r)
		}
	}
	return dbs, nil
}

// GetDatabase fetches one database record by ID. The raw body is returned
// for passthrough.
func (c *Client) GetDatabase(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, &APIError{Op: "getDatabase", Err: fmt.Errorf("database ID is required")}
	}
	return c.do(ctx, "getDatabase", http.MethodGet, "/databases/"+id, nil)
}
