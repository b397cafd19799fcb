// Package pylon provides the REST transport for the Pylon customer-support
// API (https://api.usepylon.com).
//
// The client is a thin pass-through: it marshals request bodies, attaches
// authentication, and returns raw JSON records. It never retries, never
// interprets remote failures beyond wrapping them in [*APIError], and never
// inspects pagination cursors — those are opaque tokens issued by the remote
// service and echoed back verbatim.
//
// All methods are safe for concurrent use.
package pylon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/pylonmcp/internal/observe"
)

// defaultBaseURL is the production Pylon API endpoint.
const defaultBaseURL = "https://api.usepylon.com"

// defaultTimeout bounds a single API round trip when the caller supplies no
// custom HTTP client.
const defaultTimeout = 30 * time.Second

// APIError is any non-success response from the Pylon API. It carries the
// remote status code and body text unchanged so the caller can observe the
// failure exactly as the API reported it.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("pylon: api error: status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an [*APIError] with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Useful in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics sets the metrics instance used for request instrumentation.
// When unset, [observe.DefaultMetrics] is used lazily on first request.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client is the Pylon API transport.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *observe.Metrics
}

// New creates a Client authenticated with apiKey. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("pylon: apiKey must not be empty")
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Request performs a single API round trip and returns the raw response
// body. body is JSON-encoded when non-nil. Any non-2xx response is returned
// as an [*APIError] carrying the remote status and body text verbatim.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("pylon: encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("pylon: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := uuid.NewString()
	ctx, span := observe.StartSpan(ctx, "pylon "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	log := observe.Logger(ctx).With("request_id", requestID, "method", method, "path", path)
	log.Debug("pylon request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	m := c.meter()
	m.APIRequestDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(observe.Attr("method", method), observe.Attr("path", path)),
	)

	if err != nil {
		m.RecordAPIError(ctx, method)
		log.Error("pylon request failed", "err", err)
		return nil, fmt.Errorf("pylon: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		m.RecordAPIError(ctx, method)
		return nil, fmt.Errorf("pylon: read response: %w", err)
	}

	m.RecordAPIRequest(ctx, method, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		m.RecordAPIError(ctx, method)
		log.Warn("pylon api error", "status", resp.StatusCode, "duration", duration)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	log.Debug("pylon response", "status", resp.StatusCode, "duration", duration)
	return json.RawMessage(data), nil
}

func (c *Client) meter() *observe.Metrics {
	if c.metrics != nil {
		return c.metrics
	}
	return observe.DefaultMetrics()
}
