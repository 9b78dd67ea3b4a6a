// Package backend is the typed HTTP client of the remote institute REST API.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/metrics"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

var codec = sonic.ConfigStd

// Client sends requests to the institute backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Tests use it to talk to httptest servers.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithMetrics records every round trip on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for baseURL. Every request is bounded by timeout.
func New(baseURL string, timeout time.Duration, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "backend").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// ResolveURL turns a media reference returned by the backend into an absolute URL.
func (c *Client) ResolveURL(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.baseURL + "/" + strings.TrimLeft(ref, "/")
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   Body
	// Bearer is sent as "Authorization: Bearer <token>" when set.
	Bearer string
}

// Get fetches path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Do sends req and decodes a JSON response into out when out is non-nil.
// Transport failures wrap ErrTransport; non-2xx responses return *APIError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	if req.Body != nil {
		payload, ct, err := req.Body.encode()
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", req.Method, req.Path, err)
		}
		body, contentType = bytes.NewReader(payload), ct
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", req.Method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(req, "transport_error", start)
		c.log.Warn().Err(err).Str("method", req.Method).Str("path", req.Path).Msg("Backend unreachable")
		return fmt.Errorf("%s %s: %w: %w", req.Method, req.Path, ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(req, "transport_error", start)
		return fmt.Errorf("%s %s: read body: %w: %w", req.Method, req.Path, ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(req, "http_error", start)
		c.log.Debug().
			Str("method", req.Method).
			Str("path", req.Path).
			Int("status", resp.StatusCode).
			Msg("Backend rejected request")
		return &APIError{Method: req.Method, Path: req.Path, Status: resp.StatusCode, Body: raw}
	}
	c.observe(req, "ok", start)

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := codec.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: %w: %w", req.Method, req.Path, ErrDecode, err)
	}
	return nil
}

func (c *Client) observe(req Request, outcome string, start time.Time) {
	c.metrics.ObserveBackend(req.Method, req.Path, outcome, time.Since(start))
}
