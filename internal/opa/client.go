// Package opa is a client for the policy engine's compile API.
//
// The client asks the engine to partially evaluate a query with the row left
// unknown (input.entity) and returns the raw response so that callers can
// decode and translate it.
package opa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is where a locally running engine listens.
	DefaultBaseURL = "http://localhost:8181"

	// DefaultTimeout bounds a single compile request.
	DefaultTimeout = 10 * time.Second

	// UnknownEntity marks the row as the unknown of partial evaluation.
	UnknownEntity = "input.entity"

	compilePath = "/v1/compile"

	// maxErrorBody caps how much of a failed response is kept in the error.
	maxErrorBody = 4096
)

// User is the authenticated principal a decision is made for.
type User struct {
	UserID        int      `json:"user_id"`
	AccountID     int      `json:"account_id"`
	DirectReports []int    `json:"direct_reports"`
	Roles         []string `json:"roles"`
	Permissions   []string `json:"permissions"`
	OrgUnits      []int    `json:"org_units"`
}

// SecurityContext is the known part of the input document.
type SecurityContext struct {
	CurrentUser User `json:"current_user"`
}

// CompileRequest is the body of a compile API call.
type CompileRequest struct {
	Query    string          `json:"query"`
	Input    SecurityContext `json:"input"`
	Unknowns []string        `json:"unknowns"`
}

// StatusError is returned when the engine answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("compile API returned %d: %s", e.StatusCode, e.Body)
}

// Client calls the compile API.
//
// Thread-safety: Client is safe for concurrent use once constructed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRequestIDs replaces the X-Request-Id generator.
func WithRequestIDs(next func() string) Option {
	return func(c *Client) {
		c.newID = next
	}
}

// New creates a client for the engine at baseURL. An empty baseURL means
// DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		newID:      newRequestID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newRequestID returns a time-ordered UUIDv7, falling back to v4.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Compile partially evaluates query for input with the entity unknown and
// returns the raw response body.
func (c *Client) Compile(ctx context.Context, query string, input SecurityContext) ([]byte, error) {
	body, err := json.Marshal(CompileRequest{
		Query:    query,
		Input:    input,
		Unknowns: []string{UnknownEntity},
	})
	if err != nil {
		return nil, fmt.Errorf("encode compile request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+compilePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build compile request: %w", err)
	}
	requestID := c.newID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	slog.Debug("compile request", "url", req.URL.String(), "query", query, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compile request %s: %w", requestID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read compile response %s: %w", requestID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	slog.Debug("compile response", "request_id", requestID, "bytes", len(data))
	return data, nil
}

// LoadSecurityContext reads a security context from a JSON file.
func LoadSecurityContext(path string) (SecurityContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SecurityContext{}, fmt.Errorf("read security context: %w", err)
	}
	var sc SecurityContext
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return SecurityContext{}, fmt.Errorf("parse security context %s: %w", path, err)
	}
	return sc, nil
}
