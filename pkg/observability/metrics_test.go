package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry.
func TestMetricsRegistered(t *testing.T) {
	ToolCallsTotal.WithLabelValues("directory", "search_providers", StatusSuccess).Inc()
	ToolCallDuration.WithLabelValues("directory", "search_providers").Observe(0.01)
	EndpointConnectsTotal.WithLabelValues("directory", StatusSuccess).Inc()
	CatalogRefreshesTotal.Inc()
	SweepAlertsTotal.WithLabelValues("critical").Inc()
	SweepRunsTotal.WithLabelValues(StatusSuccess).Inc()
	TurnsTotal.WithLabelValues(StatusSuccess).Inc()
	ModelLatency.WithLabelValues("test").Observe(0.1)
	HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/healthz").Observe(0.1)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := make(map[string]bool)
	for _, mf := range families {
		found[mf.GetName()] = true
	}

	for _, name := range []string{
		"credentialwatch_tool_calls_total",
		"credentialwatch_tool_call_duration_seconds",
		"credentialwatch_endpoint_connects_total",
		"credentialwatch_catalog_refreshes_total",
		"credentialwatch_sweep_alerts_total",
		"credentialwatch_sweep_runs_total",
		"credentialwatch_turns_total",
		"credentialwatch_model_latency_seconds",
		"credentialwatch_http_requests_total",
		"credentialwatch_http_request_duration_seconds",
	} {
		assert.True(t, found[name], "metric %q not registered", name)
	}
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sweep", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := MetricsMiddleware(mux)

	counter := HTTPRequestsTotal.WithLabelValues("POST", "POST /api/sweep", "2xx")
	before := testutil.ToFloat64(counter)
	hBefore := histogramCount(t, HTTPRequestDuration, "POST", "POST /api/sweep")

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/sweep", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, hBefore+1, histogramCount(t, HTTPRequestDuration, "POST", "POST /api/sweep"))
}

func TestMiddlewareUnmatchedRoute(t *testing.T) {
	handler := MetricsMiddleware(http.NotFoundHandler())

	counter := HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "4xx")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nope", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestStatusWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	sw.WriteHeader(http.StatusBadGateway)
	sw.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusBadGateway, sw.status)
	assert.Same(t, rec, sw.Unwrap())
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)
	require.NoError(t, obs.(prometheus.Metric).Write(m))
	return m.GetHistogram().GetSampleCount()
}
