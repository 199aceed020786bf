// Package client provides a typed Go SDK for talking to a kvnest server
// over its HTTP API, used by the kvcli command-line tool and usable
// standalone by anything embedding the store over the network.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to one kvnest server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client against baseURL (e.g. "http://localhost:8080").
// A zero timeout defaults to 10s — never call the network without one.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PutResponse is returned after a successful write.
type PutResponse struct {
	Key       string `json:"key"`
	Namespace string `json:"namespace"`
}

// GetResponse is returned after a successful read.
type GetResponse struct {
	Key       string `json:"key"`
	Namespace string `json:"namespace"`
	Value     string `json:"value"`
}

// NamespaceStats is the per-namespace counters returned by Stats.
type NamespaceStats struct {
	CacheHits   uint64 `json:"cache_hits"`
	CacheMisses uint64 `json:"cache_misses"`
	TotalKeys   int    `json:"total_keys"`
}

// Stats is the JSON shape returned by GET /stats.
type Stats struct {
	TotalKeys      int                       `json:"total_keys"`
	CacheHits      uint64                    `json:"cache_hits"`
	CacheMisses    uint64                    `json:"cache_misses"`
	Evictions      uint64                    `json:"evictions"`
	LogSize        uint64                    `json:"log_size"`
	LastCompaction *time.Time                `json:"last_compaction,omitempty"`
	UptimeSeconds  float64                   `json:"uptime_seconds"`
	Namespace      string                    `json:"namespace,omitempty"`
	NamespaceStats *NamespaceStats           `json:"namespace_stats,omitempty"`
	Namespaces     map[string]NamespaceStats `json:"namespaces,omitempty"`
}

// Put stores key=value in namespace ns (empty means the unnamed default
// namespace), with an optional TTL (0 means no expiry).
func (c *Client) Put(ctx context.Context, ns, key, value string, ttl time.Duration) (*PutResponse, error) {
	body, _ := json.Marshal(map[string]any{
		"value": value,
		"ttl":   int64(ttl.Seconds()),
	})

	var result PutResponse
	err := c.do(ctx, http.MethodPut, c.kvPath(ns, key), body, &result)
	return &result, err
}

// Get retrieves the value for key in namespace ns. Returns ErrNotFound if
// the key is absent or expired.
func (c *Client) Get(ctx context.Context, ns, key string) (*GetResponse, error) {
	var result GetResponse
	err := c.do(ctx, http.MethodGet, c.kvPath(ns, key), nil, &result)
	return &result, err
}

// Delete removes key from namespace ns. Returns ErrNotFound if absent.
func (c *Client) Delete(ctx context.Context, ns, key string) error {
	return c.do(ctx, http.MethodDelete, c.kvPath(ns, key), nil, nil)
}

// GetStats fetches global counters, or the ns-scoped breakdown when ns is
// non-empty.
func (c *Client) GetStats(ctx context.Context, ns string) (*Stats, error) {
	path := "/stats"
	if ns != "" {
		path += "?ns=" + url.QueryEscape(ns)
	}
	var result Stats
	err := c.do(ctx, http.MethodGet, path, nil, &result)
	return &result, err
}

// ListNamespaces returns every namespace with at least one live key.
func (c *Client) ListNamespaces(ctx context.Context) ([]string, error) {
	var result struct {
		Namespaces []string `json:"namespaces"`
	}
	err := c.do(ctx, http.MethodGet, "/namespaces", nil, &result)
	return result.Namespaces, err
}

// ClearNamespace deletes every key in ns and returns the count removed.
func (c *Client) ClearNamespace(ctx context.Context, ns string) (int, error) {
	var result struct {
		Removed int `json:"removed"`
	}
	err := c.do(ctx, http.MethodDelete, "/namespaces/"+url.PathEscape(ns), nil, &result)
	return result.Removed, err
}

// Compact triggers a synchronous WAL compaction on the server.
func (c *Client) Compact(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/compact", nil, nil)
}

func (c *Client) kvPath(ns, key string) string {
	path := "/kv/" + url.PathEscape(key)
	if ns != "" {
		path += "?ns=" + url.QueryEscape(ns)
	}
	return path
}

// ─── Errors ───────────────────────────────────────────────────────────────────

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = fmt.Errorf("key not found")

// APIError carries the HTTP status and the error message from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// checkStatus converts non-2xx HTTP responses into Go errors, special-
// casing 404 as the sentinel ErrNotFound so callers can compare with ==.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	body, _ := io.ReadAll(resp.Body)
	var apiErr struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error
	if msg == "" {
		msg = string(body)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
