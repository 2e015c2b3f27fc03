package httpretry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// scope is the instrumentation scope name for OpenTelemetry.
const scope = "github.com/halcyon-labs/backstop-go/httpretry"

// metrics holds the metric instruments for the retry engine.
type metrics struct {
	// retryAttempts counts re-issued attempts.
	// Incremented each time a request is retried.
	retryAttempts metric.Int64Counter

	// retryExhausted counts calls that spent their whole attempt budget.
	// A high value indicates downstream service issues.
	retryExhausted metric.Int64Counter

	// callDuration measures total wall time of a logical call, all attempts
	// and waits included.
	callDuration metric.Float64Histogram
}

// newMetrics creates and registers metric instruments.
func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}
	var err error

	m.retryAttempts, err = meter.Int64Counter(
		"httpretry.retry.attempts",
		metric.WithDescription("Number of retried request attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	m.retryExhausted, err = meter.Int64Counter(
		"httpretry.retry.exhausted",
		metric.WithDescription("Number of calls that exhausted their attempt budget"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	m.callDuration, err = meter.Float64Histogram(
		"httpretry.call.duration",
		metric.WithDescription("Total duration of a logical call across all attempts in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// recordRetryAttempt records one re-issued attempt.
func (m *metrics) recordRetryAttempt(ctx context.Context, attempt int) {
	if m == nil || m.retryAttempts == nil {
		return
	}
	m.retryAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("retry.attempt", attempt),
	))
}

// recordRetryExhausted records a call that spent its whole budget.
func (m *metrics) recordRetryExhausted(ctx context.Context) {
	if m == nil || m.retryExhausted == nil {
		return
	}
	m.retryExhausted.Add(ctx, 1)
}

// recordCallDuration records the total wall time of a logical call.
func (m *metrics) recordCallDuration(ctx context.Context, duration time.Duration) {
	if m == nil || m.callDuration == nil {
		return
	}
	m.callDuration.Record(ctx, duration.Seconds())
}
