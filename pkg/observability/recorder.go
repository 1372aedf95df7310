package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	globalMetrics Metrics
	metricsMu     sync.RWMutex
)

type Metrics interface {
	RecordQuery(ctx context.Context, selectionMethod string, duration time.Duration, err error)
	RecordLLMCall(ctx context.Context, model string, duration time.Duration, tokens int, err error)
	RecordToolUse(ctx context.Context, tool string)
	RecordDebateRound(ctx context.Context, roundType string, responses int)
	RecordCacheLookup(ctx context.Context, hit bool)
}

type PrometheusMetrics struct {
	queryDuration metric.Float64Histogram
	queriesTotal  metric.Int64Counter
	queryErrors   metric.Int64Counter

	llmDuration metric.Float64Histogram
	llmTokens   metric.Int64Counter
	llmErrors   metric.Int64Counter

	toolCalls    metric.Int64Counter
	debateRounds metric.Int64Counter

	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
}

func NewPrometheusMetrics(
	queryDuration metric.Float64Histogram,
	queriesTotal metric.Int64Counter,
	queryErrors metric.Int64Counter,
	llmDuration metric.Float64Histogram,
	llmTokens metric.Int64Counter,
	llmErrors metric.Int64Counter,
	toolCalls metric.Int64Counter,
	debateRounds metric.Int64Counter,
	cacheHits metric.Int64Counter,
	cacheMisses metric.Int64Counter,
) *PrometheusMetrics {
	return &PrometheusMetrics{
		queryDuration: queryDuration,
		queriesTotal:  queriesTotal,
		queryErrors:   queryErrors,
		llmDuration:   llmDuration,
		llmTokens:     llmTokens,
		llmErrors:     llmErrors,
		toolCalls:     toolCalls,
		debateRounds:  debateRounds,
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
	}
}

func (m *PrometheusMetrics) RecordQuery(ctx context.Context, selectionMethod string, duration time.Duration, err error) {
	if m == nil || m.queryDuration == nil || m.queriesTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("selection_method", selectionMethod),
	}

	m.queryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.queriesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err != nil && m.queryErrors != nil {
		m.queryErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func (m *PrometheusMetrics) RecordLLMCall(ctx context.Context, model string, duration time.Duration, tokens int, err error) {
	if m == nil || m.llmDuration == nil || m.llmTokens == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("model", model),
	}

	m.llmDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if tokens > 0 {
		m.llmTokens.Add(ctx, int64(tokens), metric.WithAttributes(attrs...))
	}

	if err != nil && m.llmErrors != nil {
		m.llmErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func (m *PrometheusMetrics) RecordToolUse(ctx context.Context, tool string) {
	if m == nil || m.toolCalls == nil {
		return
	}
	m.toolCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", tool)))
}

func (m *PrometheusMetrics) RecordDebateRound(ctx context.Context, roundType string, responses int) {
	if m == nil || m.debateRounds == nil {
		return
	}
	m.debateRounds.Add(ctx, 1, metric.WithAttributes(
		attribute.String("round_type", roundType),
		attribute.Int("responses", responses),
	))
}

func (m *PrometheusMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		if m.cacheHits != nil {
			m.cacheHits.Add(ctx, 1)
		}
		return
	}
	if m.cacheMisses != nil {
		m.cacheMisses.Add(ctx, 1)
	}
}

func SetGlobalMetrics(m Metrics) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = m
}

func GetGlobalMetrics() Metrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return globalMetrics
}
