package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestGetMetrics(t *testing.T) {
	m := GetMetrics()
	require.NotNil(t, m)
	assert.Same(t, m, GetMetrics())
}

func TestRecordAPIRequestAndPages(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := initMetrics(mp.Meter(MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordAPIRequest(ctx, "GET", 200, 0.12)
	m.RecordAPIRequest(ctx, "GET", 503, 0.40)
	m.RecordAPIRetry(ctx, "status")
	m.RecordPage(ctx, 20)
	m.RecordPage(ctx, 5)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if data, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(2), sums["giteebridge_api_requests_total"])
	assert.Equal(t, int64(1), sums["giteebridge_api_retries_total"])
	assert.Equal(t, int64(2), sums["giteebridge_pages_fetched_total"])
	assert.Equal(t, int64(25), sums["giteebridge_listing_items_total"])
}

func TestMetricsNilSafe(t *testing.T) {
	m := &Metrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordAPIRequest(ctx, "GET", 0, 1)
		m.RecordAPIRetry(ctx, "timeout")
		m.RecordPage(ctx, 3)
		m.RecordHTTPRequest(ctx, "GET", "/health", 200, 0.01)
		m.RecordGitClone(ctx, "gitee", true, 2.5)
		m.RecordCredentialLookup(ctx, "get", false)
	})
}
