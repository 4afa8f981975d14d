package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "taskgate"

// Metrics holds all taskgate metric instruments.
type Metrics struct {
	SyncsStarted   metric.Int64Counter
	SyncsCompleted metric.Int64Counter
	SyncsFailed    metric.Int64Counter
	ItemsCreated   metric.Int64Counter
	ItemsUpdated   metric.Int64Counter
	ItemsSkipped   metric.Int64Counter
	ToolCalls      metric.Int64Counter
	SyncDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.SyncsStarted, err = meter.Int64Counter("taskgate.syncs.started",
		metric.WithDescription("Number of sync runs started"))
	if err != nil {
		return nil, err
	}

	m.SyncsCompleted, err = meter.Int64Counter("taskgate.syncs.completed",
		metric.WithDescription("Number of sync runs completed"))
	if err != nil {
		return nil, err
	}

	m.SyncsFailed, err = meter.Int64Counter("taskgate.syncs.failed",
		metric.WithDescription("Number of sync runs failed"))
	if err != nil {
		return nil, err
	}

	m.ItemsCreated, err = meter.Int64Counter("taskgate.items.created",
		metric.WithDescription("Number of mirror items created by sync runs"))
	if err != nil {
		return nil, err
	}

	m.ItemsUpdated, err = meter.Int64Counter("taskgate.items.updated",
		metric.WithDescription("Number of mirror items updated by sync runs"))
	if err != nil {
		return nil, err
	}

	m.ItemsSkipped, err = meter.Int64Counter("taskgate.items.skipped",
		metric.WithDescription("Number of source tasks skipped as already mirrored"))
	if err != nil {
		return nil, err
	}

	m.ToolCalls, err = meter.Int64Counter("taskgate.toolcalls",
		metric.WithDescription("Number of MCP tool invocations"))
	if err != nil {
		return nil, err
	}

	m.SyncDuration, err = meter.Float64Histogram("taskgate.sync.duration_seconds",
		metric.WithDescription("Sync run duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
