package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is a thin typed wrapper over the matching backend's JSON API.
// It keeps no state between calls and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every call; zero means no timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a client honouring the configured timeout
func NewClientFromConfig(cfg *Config) *Client {
	return NewClient(cfg.APIURL, WithTimeout(cfg.RequestTimeout))
}

// BaseURL returns the backend origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthCheck probes GET /health
func (c *Client) HealthCheck(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// SubmitSession sends a transcript to POST /session
func (c *Client) SubmitSession(ctx context.Context, userID string, role Role, transcript string) (*SessionReceipt, error) {
	req := SessionRequest{UserID: userID, UserType: role, Transcript: transcript}
	var receipt SessionReceipt
	if err := c.do(ctx, "session", http.MethodPost, "/session", req, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// GetMatches asks POST /match for up to topK ranked mentors. Backend order
// is preserved.
func (c *Client) GetMatches(ctx context.Context, userID string, topK int) ([]MatchResult, error) {
	req := MatchRequest{UserID: userID, TopK: topK}
	var matches []MatchResult
	if err := c.do(ctx, "match", http.MethodPost, "/match", req, &matches); err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []MatchResult{}
	}
	if topK > 0 && len(matches) > topK {
		LogDebug("Backend returned %d matches for top_k=%d, truncating", len(matches), topK)
		matches = matches[:topK]
	}
	return matches, nil
}

// GetGraph fetches GET /graph
func (c *Client) GetGraph(ctx context.Context) (GraphSnapshot, error) {
	var graph GraphSnapshot
	if err := c.do(ctx, "graph", http.MethodGet, "/graph", nil, &graph); err != nil {
		return nil, err
	}
	if graph == nil {
		graph = GraphSnapshot{}
	}
	return graph, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &BackendError{Op: op, Message: fmt.Sprintf("failed to encode %s request: %v", op, err), Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &BackendError{Op: op, Message: err.Error(), Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	LogDebug("%s %s request_id=%s", method, path, requestID)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		LogDebug("%s %s request_id=%s failed: %v", method, path, requestID, err)
		return &BackendError{Op: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &BackendError{Op: op, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	LogDebug("%s %s request_id=%s status=%d elapsed=%s", method, path, requestID, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &BackendError{Op: op, Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &BackendError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("invalid response from %s: %v", op, err),
			Err:     err,
		}
	}
	return nil
}

// errorMessage extracts the backend's message from an error body. FastAPI
// reports it under "detail".
func errorMessage(status int, body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Detail) > 0 {
			var s string
			if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
				return s
			}
			return string(payload.Detail)
		}
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("%d %s", status, text)
	}
	return fmt.Sprintf("request failed with status %d", status)
}
