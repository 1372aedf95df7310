package observability

import (
	"context"
	"time"
)

// NoopMetrics is a metrics implementation that does nothing. Used
// when observability is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordQuery(_ context.Context, _ string, _ time.Duration, _ error) {}

func (NoopMetrics) RecordLLMCall(_ context.Context, _ string, _ time.Duration, _ int, _ error) {}

func (NoopMetrics) RecordToolUse(_ context.Context, _ string) {}

func (NoopMetrics) RecordDebateRound(_ context.Context, _ string, _ int) {}

func (NoopMetrics) RecordCacheLookup(_ context.Context, _ bool) {}

var (
	_ Metrics = (*PrometheusMetrics)(nil)
	_ Metrics = NoopMetrics{}
)
