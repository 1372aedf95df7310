// Package observability exposes panel metrics through OpenTelemetry
// with a Prometheus exporter.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 9090
	}
}

func InitMetrics(ctx context.Context, cfg MetricsConfig) (*PrometheusMetrics, error) {
	if !cfg.Enabled {
		return &PrometheusMetrics{}, nil
	}

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)

	meter := meterProvider.Meter("agora")

	queryDuration, err := meter.Float64Histogram(
		"agora_query_duration_seconds",
		metric.WithDescription("End-to-end query duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query duration histogram: %w", err)
	}

	queriesTotal, err := meter.Int64Counter(
		"agora_queries_total",
		metric.WithDescription("Total panel queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create queries counter: %w", err)
	}

	queryErrors, err := meter.Int64Counter(
		"agora_query_errors_total",
		metric.WithDescription("Total failed panel queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query errors counter: %w", err)
	}

	llmDuration, err := meter.Float64Histogram(
		"agora_llm_request_duration_seconds",
		metric.WithDescription("LLM request duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm duration histogram: %w", err)
	}

	llmTokens, err := meter.Int64Counter(
		"agora_llm_tokens_total",
		metric.WithDescription("Total tokens reported by LLM providers"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm tokens counter: %w", err)
	}

	llmErrors, err := meter.Int64Counter(
		"agora_llm_errors_total",
		metric.WithDescription("Total LLM errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm errors counter: %w", err)
	}

	toolCalls, err := meter.Int64Counter(
		"agora_debate_tool_calls_total",
		metric.WithDescription("Total debate agent tool calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool calls counter: %w", err)
	}

	debateRounds, err := meter.Int64Counter(
		"agora_debate_rounds_total",
		metric.WithDescription("Total debate rounds generated"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create debate rounds counter: %w", err)
	}

	cacheHits, err := meter.Int64Counter(
		"agora_cache_hits_total",
		metric.WithDescription("Total response cache hits"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache hits counter: %w", err)
	}

	cacheMisses, err := meter.Int64Counter(
		"agora_cache_misses_total",
		metric.WithDescription("Total response cache misses"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache misses counter: %w", err)
	}

	return NewPrometheusMetrics(
		queryDuration,
		queriesTotal,
		queryErrors,
		llmDuration,
		llmTokens,
		llmErrors,
		toolCalls,
		debateRounds,
		cacheHits,
		cacheMisses,
	), nil
}
