// Package evermem is the HTTP client for the EverMemOS REST API.
//
// Every call is a single request/response with a JSON body. Responses are
// returned as raw JSON because the store does not publish a fixed schema;
// callers read them with the normalizers in internal/memory.
package evermem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DefaultTimeout bounds every data operation (search, store, fetch, delete).
	DefaultTimeout = 15 * time.Second

	// HealthTimeout bounds the liveness probe.
	HealthTimeout = 5 * time.Second

	// apiPrefix is stripped from the base URL to reach the health endpoint.
	apiPrefix = "/api/v1"
)

// Memory types understood by the fetch endpoint.
const (
	TypeEpisodic  = "episodic_memory"
	TypeProfile   = "profile"
	TypeForesight = "foresight"
	TypeEventLog  = "event_log"
)

// MemoryTypes lists every memory type in display order.
var MemoryTypes = []string{TypeEpisodic, TypeProfile, TypeForesight, TypeEventLog}

// RetrieveMethod selects the store's ranking strategy for a search.
type RetrieveMethod string

const (
	MethodKeyword RetrieveMethod = "keyword"
	MethodVector  RetrieveMethod = "vector"
	MethodHybrid  RetrieveMethod = "hybrid"
	MethodRRF     RetrieveMethod = "rrf"
	MethodAgentic RetrieveMethod = "agentic"
)

// StatusError is returned when the store answers with a non-2xx status.
type StatusError struct {
	Op     string
	Code   int
	Reason string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("EverMemOS %s failed: %d %s", e.Op, e.Code, e.Reason)
}

// Health is the outcome of a liveness probe.
type Health struct {
	OK     bool   `json:"ok"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Client talks to one EverMemOS instance. It is safe for concurrent use.
type Client struct {
	baseURL       string
	http          *http.Client
	timeout       time.Duration
	healthTimeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeouts overrides the data and health timeouts.
func WithTimeouts(data, health time.Duration) Option {
	return func(c *Client) {
		c.timeout = data
		c.healthTimeout = health
	}
}

// New creates a Client for the API rooted at baseURL
// (e.g. "http://localhost:8001/api/v1").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{},
		timeout:       DefaultTimeout,
		healthTimeout: HealthTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search runs a retrieval query.
func (c *Client) Search(ctx context.Context, p SearchParams) (json.RawMessage, error) {
	return c.do(ctx, "search", http.MethodGet, "/memories/search", p.values(), nil)
}

// Store submits one message for memory extraction.
func (c *Client) Store(ctx context.Context, p StoreParams) (json.RawMessage, error) {
	return c.do(ctx, "store", http.MethodPost, "/memories", nil, p)
}

// Fetch lists memories of one type.
func (c *Client) Fetch(ctx context.Context, p FetchParams) (json.RawMessage, error) {
	return c.do(ctx, "fetch", http.MethodGet, "/memories", p.values(), nil)
}

// Delete removes memories matching an event, user or group.
func (c *Client) Delete(ctx context.Context, p DeleteParams) (json.RawMessage, error) {
	return c.do(ctx, "delete", http.MethodDelete, "/memories", p.values(), nil)
}

// Health probes the service root. It never returns an error: failures are
// reported through Health.OK and Health.Error.
func (c *Client) Health(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	endpoint := strings.Replace(c.baseURL, apiPrefix, "", 1) + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Health{Error: err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Health{Error: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Health{Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Health{Error: err.Error()}
	}
	if !gjson.ValidBytes(body) {
		return Health{Error: "invalid health response"}
	}
	return Health{OK: true, Status: gjson.GetBytes(body, "status").String()}
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("EverMemOS %s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op, Code: resp.StatusCode, Reason: reasonPhrase(resp)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", op, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("decoding %s response: invalid JSON", op)
	}
	return json.RawMessage(data), nil
}

// reasonPhrase extracts "Not Found" from a "404 Not Found" status line.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
