// Package observe provides application-wide observability primitives for
// pylonmcp: OpenTelemetry metrics, tracing helpers, structured logging, and
// HTTP middleware for the ops endpoint.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all pylonmcp metrics.
const meterName = "github.com/MrWong99/pylonmcp"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// APIRequestDuration tracks Pylon API round-trip latency. Use with
	// attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	APIRequestDuration metric.Float64Histogram

	// ToolDuration tracks MCP tool handler latency. Use with attribute:
	//   attribute.String("tool", ...)
	ToolDuration metric.Float64Histogram

	// APIRequests counts Pylon API calls. Use with attributes:
	//   attribute.String("method", ...), attribute.String("status", ...)
	APIRequests metric.Int64Counter

	// APIErrors counts non-success Pylon API responses and transport
	// failures. Use with attribute:
	//   attribute.String("method", ...)
	APIErrors metric.Int64Counter

	// ToolCalls counts tool invocations. Use with attributes:
	//   attribute.String("tool", ...), attribute.String("status", ...)
	ToolCalls metric.Int64Counter

	// FiltersCleaned counts sanitized search filters. Use with attribute:
	//   attribute.Bool("modified", ...) — true when cleaning dropped content.
	FiltersCleaned metric.Int64Counter

	// HTTPRequestDuration tracks ops-endpoint request latency. Use with
	// attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// remote REST round trips.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.APIRequestDuration, err = m.Float64Histogram("pylonmcp.api.request.duration",
		metric.WithDescription("Latency of Pylon API round trips."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ToolDuration, err = m.Float64Histogram("pylonmcp.tool.duration",
		metric.WithDescription("Latency of MCP tool handlers."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.APIRequests, err = m.Int64Counter("pylonmcp.api.requests",
		metric.WithDescription("Total Pylon API requests by method and status."),
	); err != nil {
		return nil, err
	}
	if met.APIErrors, err = m.Int64Counter("pylonmcp.api.errors",
		metric.WithDescription("Total Pylon API failures by method."),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("pylonmcp.tool.calls",
		metric.WithDescription("Total tool invocations by tool name and status."),
	); err != nil {
		return nil, err
	}
	if met.FiltersCleaned, err = m.Int64Counter("pylonmcp.filter.cleaned",
		metric.WithDescription("Total sanitized search filters, by whether cleaning dropped content."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("pylonmcp.http.request.duration",
		metric.WithDescription("Ops HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAPIRequest is a convenience method that records an API request
// counter increment with the standard attribute set.
func (m *Metrics) RecordAPIRequest(ctx context.Context, method, status string) {
	m.APIRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("status", status),
		),
	)
}

// RecordAPIError is a convenience method that records an API failure counter
// increment.
func (m *Metrics) RecordAPIError(ctx context.Context, method string) {
	m.APIErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("method", method)),
	)
}

// RecordToolCall is a convenience method that records a tool call counter
// increment with the standard attribute set.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string) {
	m.ToolCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		),
	)
}

// RecordFilterCleaned is a convenience method that records a sanitized
// search filter, tagged by whether cleaning altered it.
func (m *Metrics) RecordFilterCleaned(ctx context.Context, modified bool) {
	m.FiltersCleaned.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("modified", modified)),
	)
}
