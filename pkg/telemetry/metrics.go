package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/verustcode/giteebridge/pkg/logger"
)

const (
	// MeterName is the default meter name for the application
	MeterName = "github.com/verustcode/giteebridge"
)

// Metrics holds all application metrics. Every field may be nil when
// instrument creation failed; the Record methods tolerate that.
type Metrics struct {
	// Hosting service API metrics
	APIRequestsTotal   metric.Int64Counter
	APIRequestDuration metric.Float64Histogram
	APIRetriesTotal    metric.Int64Counter
	PagesFetchedTotal  metric.Int64Counter
	ListingItemsTotal  metric.Int64Counter

	// Bridge server metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Git metrics
	GitCloneTotal    metric.Int64Counter
	GitCloneDuration metric.Float64Histogram

	// Credential helper
	CredentialLookupsTotal metric.Int64Counter
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		var err error
		globalMetrics, err = initMetrics(otel.Meter(MeterName))
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			globalMetrics = &Metrics{}
		}
	})
	return globalMetrics
}

type instrumentBuilder struct {
	meter metric.Meter
	err   error
}

func (b *instrumentBuilder) counter(name, desc, unit string) metric.Int64Counter {
	if b.err != nil {
		return nil
	}
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.err = err
	return c
}

func (b *instrumentBuilder) histogram(name, desc string, bounds ...float64) metric.Float64Histogram {
	if b.err != nil {
		return nil
	}
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.err = err
	return h
}

func initMetrics(meter metric.Meter) (*Metrics, error) {
	b := &instrumentBuilder{meter: meter}
	m := &Metrics{
		APIRequestsTotal: b.counter("giteebridge_api_requests_total",
			"Total number of hosting service API requests", "{request}"),
		APIRequestDuration: b.histogram("giteebridge_api_request_duration_seconds",
			"Duration of hosting service API requests in seconds",
			0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
		APIRetriesTotal: b.counter("giteebridge_api_retries_total",
			"Total number of retried API requests", "{retry}"),
		PagesFetchedTotal: b.counter("giteebridge_pages_fetched_total",
			"Total number of result pages fetched", "{page}"),
		ListingItemsTotal: b.counter("giteebridge_listing_items_total",
			"Total number of items returned by paged listings", "{item}"),
		HTTPRequestsTotal: b.counter("giteebridge_http_requests_total",
			"Total number of bridge server HTTP requests", "{request}"),
		HTTPRequestDuration: b.histogram("giteebridge_http_request_duration_seconds",
			"Duration of bridge server HTTP requests in seconds",
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
		GitCloneTotal: b.counter("giteebridge_clone_total",
			"Total number of git clone operations", "{clone}"),
		GitCloneDuration: b.histogram("giteebridge_clone_duration_seconds",
			"Duration of git clone operations in seconds",
			1, 5, 10, 30, 60, 120, 300),
		CredentialLookupsTotal: b.counter("giteebridge_credential_lookups_total",
			"Total number of git credential helper lookups", "{lookup}"),
	}
	if b.err != nil {
		return nil, b.err
	}

	logger.Debug("Metrics initialized successfully")
	return m, nil
}

// RecordAPIRequest records one round trip to the hosting service.
// statusCode is 0 when the request failed before a response arrived.
func (m *Metrics) RecordAPIRequest(ctx context.Context, method string, statusCode int, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Int("status_code", statusCode),
	)
	if m.APIRequestsTotal != nil {
		m.APIRequestsTotal.Add(ctx, 1, attrs)
	}
	if m.APIRequestDuration != nil {
		m.APIRequestDuration.Record(ctx, durationSeconds, attrs)
	}
}

// RecordAPIRetry records a retried request and the reason for it.
func (m *Metrics) RecordAPIRetry(ctx context.Context, reason string) {
	if m.APIRetriesTotal == nil {
		return
	}
	m.APIRetriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordPage records one fetched page of a paged listing.
func (m *Metrics) RecordPage(ctx context.Context, items int) {
	if m.PagesFetchedTotal != nil {
		m.PagesFetchedTotal.Add(ctx, 1)
	}
	if m.ListingItemsTotal != nil {
		m.ListingItemsTotal.Add(ctx, int64(items))
	}
}

// RecordHTTPRequest records a bridge server HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	if m.HTTPRequestsTotal != nil {
		m.HTTPRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
				attribute.Int("status_code", statusCode),
			),
		)
	}
	if m.HTTPRequestDuration != nil {
		m.HTTPRequestDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
			),
		)
	}
}

// RecordGitClone records a git clone operation
func (m *Metrics) RecordGitClone(ctx context.Context, provider string, success bool, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.Bool("success", success),
	)
	if m.GitCloneTotal != nil {
		m.GitCloneTotal.Add(ctx, 1, attrs)
	}
	if m.GitCloneDuration != nil {
		m.GitCloneDuration.Record(ctx, durationSeconds, attrs)
	}
}

// RecordCredentialLookup records a credential helper request and whether it was answered.
func (m *Metrics) RecordCredentialLookup(ctx context.Context, operation string, answered bool) {
	if m.CredentialLookupsTotal == nil {
		return
	}
	m.CredentialLookupsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.Bool("answered", answered),
		),
	)
}
