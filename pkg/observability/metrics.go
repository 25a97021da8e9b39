// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring credentialwatch.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// ToolBuckets covers remote tool calls, from 5ms to 30s.
var ToolBuckets = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Tool call outcomes.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusMock    = "mock"
)

var (
	// ToolCallsTotal counts tool calls by endpoint, operation and outcome
	// (success, error, mock).
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credentialwatch_tool_calls_total",
			Help: "Tool calls",
		},
		[]string{"endpoint", "operation", "status"},
	)

	// ToolCallDuration records remote tool call latency in seconds.
	ToolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credentialwatch_tool_call_duration_seconds",
			Help:    "Tool call duration",
			Buckets: ToolBuckets,
		},
		[]string{"endpoint", "operation"},
	)

	// EndpointConnectsTotal counts connection attempts per endpoint.
	EndpointConnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credentialwatch_endpoint_connects_total",
			Help: "Endpoint connection attempts",
		},
		[]string{"endpoint", "status"},
	)

	// CatalogRefreshesTotal counts catalog refreshes triggered by failed lookups.
	CatalogRefreshesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credentialwatch_catalog_refreshes_total",
			Help: "Tool catalog refreshes",
		},
	)

	// SweepAlertsTotal counts alerts created by sweeps, by severity.
	SweepAlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credentialwatch_sweep_alerts_total",
			Help: "Alerts created by sweeps",
		},
		[]string{"severity"},
	)

	// SweepRunsTotal counts completed sweeps. Status is "error" when at
	// least one item failed.
	SweepRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credentialwatch_sweep_runs_total",
			Help: "Sweep runs",
		},
		[]string{"status"},
	)

	// TurnsTotal counts conversation turns by outcome.
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credentialwatch_turns_total",
			Help: "Conversation turns",
		},
		[]string{"status"},
	)

	// ModelLatency records language model latency in seconds.
	ModelLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credentialwatch_model_latency_seconds",
			Help:    "Model latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider"},
	)

	// HTTPRequestsTotal counts HTTP requests by method, route and status class.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credentialwatch_http_requests_total",
			Help: "HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration records HTTP request duration in seconds.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credentialwatch_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(
		ToolCallsTotal,
		ToolCallDuration,
		EndpointConnectsTotal,
		CatalogRefreshesTotal,
		SweepAlertsTotal,
		SweepRunsTotal,
		TurnsTotal,
		ModelLatency,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
