package ports

import "context"

// ConflictRecorder counts compare-and-swap conflicts on aggregate writes.
type ConflictRecorder interface {
	RecordConflict(ctx context.Context, aggregate string)
}

// NopConflictRecorder discards conflicts.
type NopConflictRecorder struct{}

func (NopConflictRecorder) RecordConflict(context.Context, string) {}
