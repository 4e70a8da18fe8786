// Package metrics provides Prometheus metrics for the builder server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeforge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codeforge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LLM metrics
	llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeforge_llm_requests_total",
			Help: "Total completion requests sent to model providers",
		},
		[]string{"provider", "status"},
	)

	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codeforge_llm_request_duration_seconds",
			Help:    "Completion request duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"provider"},
	)

	llmTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeforge_llm_tokens_total",
			Help: "Total tokens reported by model providers",
		},
		[]string{"provider", "direction"},
	)

	// Build step metrics
	stepsParsedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeforge_steps_parsed_total",
			Help: "Total build steps parsed from model responses",
		},
		[]string{"kind"},
	)

	stepsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codeforge_steps_skipped_total",
			Help: "Total malformed action tags skipped by the parser",
		},
	)

	stepsAppliedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeforge_steps_applied_total",
			Help: "Total build steps folded into session trees",
		},
		[]string{"status"},
	)

	// Session metrics
	sessionTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeforge_session_turns_total",
			Help: "Total session turns",
		},
		[]string{"kind", "status"},
	)

	// Sandbox metrics
	sandboxMountsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeforge_sandbox_mounts_total",
			Help: "Total sandbox mounts",
		},
		[]string{"status"},
	)

	sandboxCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeforge_sandbox_commands_total",
			Help: "Total sandbox commands",
		},
		[]string{"status"},
	)

	sandboxCommandDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codeforge_sandbox_command_duration_seconds",
			Help:    "Sandbox command duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLLMRequest records one completion call and its token usage.
func RecordLLMRequest(provider string, duration time.Duration, inputTokens, outputTokens int, success bool) {
	llmRequestsTotal.WithLabelValues(provider, outcome(success)).Inc()
	llmRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if inputTokens > 0 {
		llmTokensTotal.WithLabelValues(provider, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		llmTokensTotal.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}

// RecordStepsParsed records the steps one document produced, by kind.
func RecordStepsParsed(kinds map[string]int, skipped int) {
	for kind, n := range kinds {
		stepsParsedTotal.WithLabelValues(kind).Add(float64(n))
	}
	if skipped > 0 {
		stepsSkippedTotal.Add(float64(skipped))
	}
}

// RecordStepApplied records a step leaving the pending state.
func RecordStepApplied(status string) {
	stepsAppliedTotal.WithLabelValues(status).Inc()
}

// RecordSessionTurn records a session turn ("start", "message", "file").
func RecordSessionTurn(kind string, success bool) {
	sessionTurnsTotal.WithLabelValues(kind, outcome(success)).Inc()
}

// RecordSandboxMount records a sandbox mount.
func RecordSandboxMount(success bool) {
	sandboxMountsTotal.WithLabelValues(outcome(success)).Inc()
}

// RecordSandboxCommand records a sandbox command. status is "success", "error" or "rejected".
func RecordSandboxCommand(status string, duration time.Duration) {
	sandboxCommandsTotal.WithLabelValues(status).Inc()
	if duration > 0 {
		sandboxCommandDuration.Observe(duration.Seconds())
	}
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
// Requests are labelled with the matched mux pattern to keep label cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		RecordHTTPRequest(r.Method, route, rw.statusCode, time.Since(start))
	})
}
