package otel

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewMetrics_AllInstrumentsCreated(t *testing.T) {
	p, err := Init(context.Background(), Config{
		Enabled:  true,
		Exporter: "none",
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer p.Shutdown(context.Background())

	m, err := NewMetrics(p.Meter)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	if m.StoreDuration == nil {
		t.Error("StoreDuration is nil")
	}
	if m.StoreErrors == nil {
		t.Error("StoreErrors is nil")
	}
	if m.TaskMutations == nil {
		t.Error("TaskMutations is nil")
	}
}

func TestNewMetrics_NoopMeter(t *testing.T) {
	m, err := NewMetrics(Disabled().Meter)
	if err != nil {
		t.Fatalf("NewMetrics with noop meter: %v", err)
	}
	m.RecordStoreOp(context.Background(), "insert", time.Millisecond, true, nil)
	m.RecordStoreOp(context.Background(), "insert", time.Millisecond, true, errors.New("boom"))
}

func TestRecordStoreOp_NilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordStoreOp(context.Background(), "load_all", time.Millisecond, false, nil)
}
