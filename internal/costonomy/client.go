// Package costonomy is a client for the Costonomy REST services that own
// items, base items, products and their ingredient lists.
//
// Every request carries the operator's outlet and user IDs: GET requests as
// query parameters, writes as JSON body fields. Values supplied by the call
// win over the operator defaults.
package costonomy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	applog "github.com/flavourheaven/costonomy/internal/log"
	"github.com/flavourheaven/costonomy/internal/metrics"
)

const defaultTimeout = 15 * time.Second

var (
	// ErrNoContent is returned when an endpoint that must answer with a body did not.
	ErrNoContent = errors.New("costonomy: empty response")
	// ErrWriteRejected is returned when a write reports fewer than one affected row.
	ErrWriteRejected = errors.New("costonomy: write was not applied")
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.Status, e.Body)
}

// Operator identifies who a request is made for.
type Operator struct {
	OutletID int64
	UserID   int64
}

type operatorKey struct{}

// WithOperator returns a context whose requests are made for op. Zero fields
// fall back to the client defaults.
func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// OperatorFrom returns the operator stored by WithOperator.
func OperatorFrom(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorKey{}).(Operator)
	return op, ok
}

// Client talks to the Costonomy API.
type Client struct {
	baseURL  *url.URL
	defaults Operator
	http     *http.Client
	metrics  *metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// New creates a client for baseURL. A missing trailing slash is added so
// relative endpoints resolve under the base path.
func New(baseURL string, defaults Operator, opts ...Option) (*Client, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return nil, errors.New("costonomy: base URL is required")
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("costonomy: parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("costonomy: base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:  u,
		defaults: defaults,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) operator(ctx context.Context) Operator {
	op := c.defaults
	if override, ok := OperatorFrom(ctx); ok {
		if override.OutletID != 0 {
			op.OutletID = override.OutletID
		}
		if override.UserID != 0 {
			op.UserID = override.UserID
		}
	}
	return op
}

func (c *Client) endpointURL(endpoint string) (*url.URL, error) {
	rel, err := url.Parse(strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("costonomy: parse endpoint %q: %w", endpoint, err)
	}
	return c.baseURL.ResolveReference(rel), nil
}

// get issues a GET with the operator defaults merged under params. It
// reports false when the response carried no body.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) (bool, error) {
	u, err := c.endpointURL(endpoint)
	if err != nil {
		return false, err
	}

	op := c.operator(ctx)
	q := u.Query()
	q.Set("outlet", strconv.FormatInt(op.OutletID, 10))
	q.Set("userId", strconv.FormatInt(op.UserID, 10))
	for key, values := range params {
		if len(values) > 0 {
			q.Set(key, values[len(values)-1])
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, fmt.Errorf("costonomy: create request: %w", err)
	}
	return c.do(req, endpoint, out)
}

// post issues a POST whose JSON body is the operator defaults overlaid with payload.
func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) (bool, error) {
	u, err := c.endpointURL(endpoint)
	if err != nil {
		return false, err
	}

	body, err := mergeBody(c.operator(ctx), payload)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("costonomy: create request: %w", err)
	}
	return c.do(req, endpoint, out)
}

func mergeBody(op Operator, payload any) ([]byte, error) {
	merged := map[string]any{
		"outlet": op.OutletID,
		"userId": op.UserID,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("costonomy: marshal request: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("costonomy: request payload must be a JSON object: %w", err)
		}
		for k, v := range fields {
			merged[k] = v
		}
	}
	body, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("costonomy: marshal request: %w", err)
	}
	return body, nil
}

func (c *Client) do(req *http.Request, endpoint string, out any) (ok bool, err error) {
	started := time.Now()
	name := metricName(req.Method, endpoint)
	defer func() {
		c.metrics.RemoteRequest(name, started, err)
		applog.Debug(req.Context(), "costonomy request",
			"method", req.Method,
			"endpoint", endpoint,
			"duration", time.Since(started),
			"error", err,
		)
	}()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("costonomy: %s %s: %w", req.Method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return false, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if resp.StatusCode == http.StatusNoContent || resp.Header.Get("Content-Type") == "" {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("costonomy: decode %s response: %w", endpoint, err)
	}
	return true, nil
}

// metricName collapses numeric path segments so label cardinality stays bounded.
func metricName(method, endpoint string) string {
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return method + " " + strings.Join(parts, "/")
}
