package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the default tracer name for the application
	TracerName = "github.com/verustcode/giteebridge"
)

// Tracer returns the global tracer for the application
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a new span with the given name and returns the context and span.
// The caller is responsible for calling span.End() when the operation is complete.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// SetSpanError records an error on the span and sets its status to error
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanOK sets the span status to OK
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Common attribute keys for consistent naming
var (
	// Repository attributes
	AttrRepoFullName = attribute.Key("repo.full_name")
	AttrRepoOwner    = attribute.Key("repo.owner")
	AttrRepoName     = attribute.Key("repo.name")
	AttrRepoHost     = attribute.Key("repo.host")

	// API request attributes
	AttrHTTPMethod   = attribute.Key("http.request.method")
	AttrHTTPURL      = attribute.Key("url.full")
	AttrHTTPStatus   = attribute.Key("http.response.status_code")
	AttrRetryAttempt = attribute.Key("retry.attempt")

	// Paging attributes
	AttrFetchID   = attribute.Key("fetch.id")
	AttrPageIndex = attribute.Key("page.index")
	AttrPageItems = attribute.Key("page.items")
)

// WithRepoAttributes returns span start options describing a repository
func WithRepoAttributes(host, owner, repo string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrRepoHost.String(host),
		AttrRepoOwner.String(owner),
		AttrRepoName.String(repo),
		AttrRepoFullName.String(owner+"/"+repo),
	)
}

// WithRequestAttributes returns span start options describing an API request
func WithRequestAttributes(method, url string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrHTTPMethod.String(method),
		AttrHTTPURL.String(url),
	)
}
