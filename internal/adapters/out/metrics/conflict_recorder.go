// Package metrics exports application counters through OpenTelemetry.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName                = "pharmadelivery"
	writeConflictsInstrument = "order_write_conflicts"
)

// ConflictRecorder implements ports.ConflictRecorder with an OpenTelemetry
// counter labelled by aggregate.
type ConflictRecorder struct {
	conflicts metric.Int64Counter
}

func NewConflictRecorder(provider metric.MeterProvider) (*ConflictRecorder, error) {
	counter, err := provider.Meter(meterName).Int64Counter(
		writeConflictsInstrument,
		metric.WithDescription("Compare-and-swap conflicts on aggregate writes"),
		metric.WithUnit("{conflict}"),
	)
	if err != nil {
		return nil, err
	}
	return &ConflictRecorder{conflicts: counter}, nil
}

func (r *ConflictRecorder) RecordConflict(ctx context.Context, aggregate string) {
	r.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("aggregate", aggregate)))
}
