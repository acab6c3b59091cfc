// Package backend talks to the agent orchestration backend over HTTP.
// Credentials are passed explicitly on every call.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pders01/reflexion/internal/models"
)

const (
	// DefaultURL is the default backend endpoint
	DefaultURL = "http://localhost:8080"
	// DefaultTimeout bounds a single backend call
	DefaultTimeout = 30 * time.Second
)

// Header names understood by the backend
const (
	HeaderAuthorization = "Authorization"
	HeaderOrgContext    = "X-Organization-Context"
	HeaderAPIKey        = "X-Api-Key"
	HeaderRequestID     = "X-Request-ID"
)

// Config configures a Client
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Credentials identify the caller of a single request
type Credentials struct {
	AuthToken  string
	OrgContext string
	RequestID  string
}

// Authenticated reports whether a bearer token is present
func (c Credentials) Authenticated() bool {
	return c.AuthToken != ""
}

// Client wraps the backend HTTP API
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a new backend client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    hc,
	}, nil
}

// BaseURL returns the backend base url without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsAvailable checks if the backend answers /info
func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, err := c.Info(ctx, Credentials{})
	return err == nil
}

// Info fetches backend status. Auth is optional.
func (c *Client) Info(ctx context.Context, creds Credentials) (json.RawMessage, error) {
	return c.getJSON(ctx, "/info", nil, creds)
}

// Projects lists the knowledge graph projects visible to the caller
func (c *Client) Projects(ctx context.Context, creds Credentials) (json.RawMessage, error) {
	return c.getJSON(ctx, "/kg/projects", nil, creds)
}

// Apply sends an approved or rejected decision to the backend
func (c *Client) Apply(ctx context.Context, creds Credentials, req models.ApplyRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode apply request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/project/apply", nil, bytes.NewReader(body), creds)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.doJSON(httpReq)
}

// skipForwardHeaders are request headers the transport sets itself
var skipForwardHeaders = map[string]bool{
	"Host":            true,
	"Connection":      true,
	"Content-Length":  true,
	"Accept-Encoding": true,
}

// Forward sends an arbitrary request to path on the backend and returns the
// raw response. The caller closes the body. Host is never forwarded.
func (c *Client) Forward(ctx context.Context, method, path, rawQuery string, header http.Header, body io.Reader) (*http.Response, error) {
	target := c.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range header {
		if skipForwardHeaders[http.CanonicalHeaderKey(k)] {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get(HeaderAuthorization) == "" && req.Header.Get(HeaderAPIKey) == "" && c.apiKey != "" {
		req.Header.Set(HeaderAPIKey, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to proxy %s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, creds Credentials) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if creds.AuthToken != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+creds.AuthToken)
	}
	if creds.OrgContext != "" {
		req.Header.Set(HeaderOrgContext, creds.OrgContext)
	}
	if creds.RequestID != "" {
		req.Header.Set(HeaderRequestID, creds.RequestID)
	}
	if c.apiKey != "" {
		req.Header.Set(HeaderAPIKey, c.apiKey)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, creds Credentials) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, creds)
	if err != nil {
		return nil, err
	}
	return c.doJSON(req)
}

// doJSON executes req and returns the body when it is a 2xx JSON document
func (c *Client) doJSON(req *http.Request) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request %s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode:  resp.StatusCode,
			Body:        body,
			ContentType: resp.Header.Get("Content-Type"),
		}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s %s", ErrInvalidResponse, req.Method, req.URL.Path)
	}
	return json.RawMessage(body), nil
}
