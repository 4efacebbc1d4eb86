package observability

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var (
	globalMetrics Metrics = NoopMetrics{}
	metricsMu     sync.RWMutex
)

// Metrics records what the reasoning loop does.
type Metrics interface {
	RecordRun(ctx context.Context, duration time.Duration, iterations int, outcome string)
	RecordToolCall(ctx context.Context, tool string, duration time.Duration, outcome string)
	RecordLLMCall(ctx context.Context, model string, duration time.Duration, inputTokens, outputTokens int, err error)
	RecordParseFailure(ctx context.Context)
}

// PrometheusMetrics records into an otel meter backed by a Prometheus
// registry. The zero value is a valid no-op.
type PrometheusMetrics struct {
	provider *sdkmetric.MeterProvider
	registry *promclient.Registry

	runDuration   metric.Float64Histogram
	runsTotal     metric.Int64Counter
	runIterations metric.Int64Histogram

	toolDuration metric.Float64Histogram
	toolCalls    metric.Int64Counter

	llmDuration     metric.Float64Histogram
	llmErrors       metric.Int64Counter
	llmInputTokens  metric.Int64Counter
	llmOutputTokens metric.Int64Counter

	parseFailures metric.Int64Counter
}

// InitMetrics creates the instruments. When metrics are disabled the
// returned value records nothing and serves an empty handler.
func InitMetrics(cfg MetricsConfig) (*PrometheusMetrics, error) {
	if !cfg.Enabled {
		return &PrometheusMetrics{}, nil
	}

	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
		prometheus.WithNamespace(cfg.Namespace),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(instrumentationName)

	m := &PrometheusMetrics{provider: provider, registry: registry}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		desc string
	}{
		{&m.runDuration, "agent_run_duration_seconds", "Agent run duration in seconds"},
		{&m.toolDuration, "tool_call_duration_seconds", "Tool call duration in seconds"},
		{&m.llmDuration, "llm_request_duration_seconds", "LLM request duration in seconds"},
	}
	for _, h := range histograms {
		if *h.dst, err = meter.Float64Histogram(h.name, metric.WithDescription(h.desc), metric.WithUnit("s")); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", h.name, err)
		}
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.runsTotal, "agent_runs", "Agent runs by outcome"},
		{&m.toolCalls, "tool_calls", "Tool calls by tool and outcome"},
		{&m.llmErrors, "llm_errors", "Failed LLM requests"},
		{&m.llmInputTokens, "llm_tokens_input", "Input tokens sent to the LLM"},
		{&m.llmOutputTokens, "llm_tokens_output", "Output tokens returned by the LLM"},
		{&m.parseFailures, "parse_failures", "Model outputs that could not be parsed"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", c.name, err)
		}
	}

	if m.runIterations, err = meter.Int64Histogram("agent_run_iterations", metric.WithDescription("Iterations used per run")); err != nil {
		return nil, fmt.Errorf("failed to create agent_run_iterations: %w", err)
	}

	return m, nil
}

func (m *PrometheusMetrics) RecordRun(ctx context.Context, duration time.Duration, iterations int, outcome string) {
	if m == nil || m.runsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
	m.runsTotal.Add(ctx, 1, attrs)
	m.runIterations.Record(ctx, int64(iterations), attrs)
}

func (m *PrometheusMetrics) RecordToolCall(ctx context.Context, tool string, duration time.Duration, outcome string) {
	if m == nil || m.toolCalls == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("tool", tool), attribute.String("outcome", outcome))
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
	m.toolCalls.Add(ctx, 1, attrs)
}

func (m *PrometheusMetrics) RecordLLMCall(ctx context.Context, model string, duration time.Duration, inputTokens, outputTokens int, err error) {
	if m == nil || m.llmDuration == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.llmDuration.Record(ctx, duration.Seconds(), attrs)
	if inputTokens > 0 {
		m.llmInputTokens.Add(ctx, int64(inputTokens), attrs)
	}
	if outputTokens > 0 {
		m.llmOutputTokens.Add(ctx, int64(outputTokens), attrs)
	}
	if err != nil {
		m.llmErrors.Add(ctx, 1, attrs)
	}
}

func (m *PrometheusMetrics) RecordParseFailure(ctx context.Context) {
	if m == nil || m.parseFailures == nil {
		return
	}
	m.parseFailures.Add(ctx, 1)
}

// Handler serves the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (m *PrometheusMetrics) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RecordRun(context.Context, time.Duration, int, string) {}
func (NoopMetrics) RecordToolCall(context.Context, string, time.Duration, string) {}
func (NoopMetrics) RecordLLMCall(context.Context, string, time.Duration, int, int, error) {}
func (NoopMetrics) RecordParseFailure(context.Context) {}

func SetGlobalMetrics(m Metrics) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if m == nil {
		m = NoopMetrics{}
	}
	globalMetrics = m
}

func GetGlobalMetrics() Metrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return globalMetrics
}
