package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingTracer(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return rec, tp
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "list-issues")
	require.NotNil(t, span)
	defer span.End()

	assert.Equal(t, span, trace.SpanFromContext(ctx))
}

func TestSpanStatusHelpers(t *testing.T) {
	rec, tp := newRecordingTracer(t)
	tracer := tp.Tracer(TracerName)

	_, failed := tracer.Start(context.Background(), "failed")
	SetSpanError(failed, errors.New("status 500"))
	failed.End()

	_, ok := tracer.Start(context.Background(), "ok")
	SetSpanError(ok, nil)
	SetSpanOK(ok)
	AddSpanEvent(ok, "page", AttrPageIndex.Int(2))
	ok.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "status 500", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1) // recorded exception

	assert.Equal(t, codes.Ok, spans[1].Status().Code)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "page", spans[1].Events()[0].Name)
}

func TestWithRepoAttributes(t *testing.T) {
	rec, tp := newRecordingTracer(t)

	_, span := tp.Tracer(TracerName).Start(context.Background(), "clone",
		WithRepoAttributes("git.oschina.net", "alice", "demo"))
	span.End()

	attrs := map[string]string{}
	for _, kv := range rec.Ended()[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "git.oschina.net", attrs["repo.host"])
	assert.Equal(t, "alice/demo", attrs["repo.full_name"])
}

func TestWithRequestAttributes(t *testing.T) {
	rec, tp := newRecordingTracer(t)

	_, span := tp.Tracer(TracerName).Start(context.Background(), "GET",
		WithRequestAttributes("GET", "https://git.oschina.net/api/v3/user"))
	span.End()

	attrs := map[string]string{}
	for _, kv := range rec.Ended()[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "GET", attrs["http.request.method"])
	assert.Equal(t, "https://git.oschina.net/api/v3/user", attrs["url.full"])
}

func TestTracerName(t *testing.T) {
	assert.Equal(t, "github.com/verustcode/giteebridge", TracerName)
	assert.NotNil(t, Tracer())
}
