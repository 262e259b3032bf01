// Package backend is the REST client of the dealership backend. Every console
// request builds a client bound to the operator's upstream token.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout = 15 * time.Second
	signinPath     = "/auth/signin"
	maxErrorBody   = 64 << 10
)

// Metrics receives one observation per upstream call.
type Metrics interface {
	ObserveUpstream(method, route string, status int, d time.Duration)
}

type Client struct {
	baseURL        string
	http           *http.Client
	token          string
	onUnauthorized func()
	once           *sync.Once
	metrics        Metrics
	log            *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout replaces the timeout of the underlying http client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithUnauthorizedHandler sets the logout hook. It runs at most once per
// client, on the first 401 of a request other than sign-in.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithMetrics(m Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		once:    &sync.Once{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForSession returns a copy bound to token with its own logout hook. The
// transport, metrics and logger are shared.
func (c *Client) ForSession(token string, onUnauthorized func()) *Client {
	return &Client{
		baseURL:        c.baseURL,
		http:           c.http,
		token:          token,
		onUnauthorized: onUnauthorized,
		once:           &sync.Once{},
		metrics:        c.metrics,
		log:            c.log,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Token() string { return c.token }

// request is one upstream call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	r := request{method: method, path: path}
	if payload == nil {
		return r, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return r, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	r.body = bytes.NewReader(data)
	r.contentType = "application/json"
	return r, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	r, err := jsonRequest(method, path, payload)
	if err != nil {
		return err
	}
	return c.do(ctx, r, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	body, err := c.raw(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

// raw sends r and returns the body of a 2xx answer.
func (c *Client) raw(ctx context.Context, r request) ([]byte, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(r, 0, start)
		return nil, fmt.Errorf("upstream %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()
	c.observe(r, resp.StatusCode, start)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s %s: %w", r.method, r.path, err)
		}
		return data, nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode == http.StatusUnauthorized {
		if strings.Contains(r.path, signinPath) {
			return nil, ErrInvalidCredentials
		}
		c.unauthorized(r)
		return nil, ErrUnauthorized
	}

	return nil, &APIError{
		Status:  resp.StatusCode,
		Method:  r.method,
		Path:    r.path,
		Message: upstreamMessage(data),
		Body:    data,
	}
}

func (c *Client) unauthorized(r request) {
	c.once.Do(func() {
		c.log.Warn("upstream_unauthorized", "method", r.method, "path", r.path)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	})
}

func (c *Client) observe(r request, status int, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveUpstream(r.method, Route(r.path), status, time.Since(start))
}

// Route replaces ids in an upstream path so it can be used as a metric label,
// e.g. /cars/car/12/images -> /cars/car/:id/images.
func Route(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		if isID(s) {
			segs[i] = ":id"
		}
	}
	return "/" + strings.Join(segs, "/")
}

func isID(s string) bool {
	if s == "" {
		return false
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	// chat session ids are uuids
	_, err := uuid.Parse(s)
	return err == nil
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
