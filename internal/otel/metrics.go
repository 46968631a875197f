package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the board's metric instruments.
type Metrics struct {
	StoreDuration metric.Float64Histogram
	StoreErrors   metric.Int64Counter
	TaskMutations metric.Int64Counter
}

// NewMetrics creates all metric instruments from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.StoreDuration, err = meter.Float64Histogram("goboard.store.duration",
		metric.WithDescription("Task store operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.StoreErrors, err = meter.Int64Counter("goboard.store.errors",
		metric.WithDescription("Task store operations that returned an error"),
	)
	if err != nil {
		return nil, err
	}

	m.TaskMutations, err = meter.Int64Counter("goboard.task.mutations",
		metric.WithDescription("Successful task inserts, status updates and deletes"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordStoreOp records one store call. A nil receiver is a no-op.
func (m *Metrics) RecordStoreOp(ctx context.Context, op string, elapsed time.Duration, mutation bool, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(AttrStoreOp.String(op))
	m.StoreDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.StoreErrors.Add(ctx, 1, attrs)
		return
	}
	if mutation {
		m.TaskMutations.Add(ctx, 1, attrs)
	}
}
