package commands

import (
	"context"
	"errors"
	"log/slog"

	"pharmadelivery/internal/core/ports"
	"pharmadelivery/internal/pkg/errs"
)

// DefaultWriteAttempts bounds how often an order write is re-applied after
// compare-and-swap conflicts.
const DefaultWriteAttempts = 3

// ConflictRetrier re-runs a write against fresh state when the stored
// version moved underneath it. Each attempt must open its own unit of work
// and reload the aggregate.
//
// Example:
//
//	retrier := NewConflictRetrier(3, recorder, logger)
//	err := retrier.Do(ctx, "order", func(ctx context.Context) error {
//	    uow := factory.Create()
//	    // load, apply, update, commit
//	})
type ConflictRetrier struct {
	attempts  int
	conflicts ports.ConflictRecorder
	logger    *slog.Logger
}

func NewConflictRetrier(attempts int, conflicts ports.ConflictRecorder, logger *slog.Logger) ConflictRetrier {
	if attempts < 1 {
		attempts = DefaultWriteAttempts
	}
	if conflicts == nil {
		conflicts = ports.NopConflictRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return ConflictRetrier{
		attempts:  attempts,
		conflicts: conflicts,
		logger:    logger.With("component", "conflict_retrier"),
	}
}

// Do returns the first non-conflict outcome of attempt. When every attempt
// conflicts the last errs.ErrVersionIsInvalid is returned.
func (r ConflictRetrier) Do(ctx context.Context, aggregate string, attempt func(ctx context.Context) error) error {
	var err error
	for i := 1; i <= r.attempts; i++ {
		err = attempt(ctx)
		if !errors.Is(err, errs.ErrVersionIsInvalid) {
			return err
		}

		r.conflicts.RecordConflict(ctx, aggregate)
		r.logger.WarnContext(ctx, "Write conflict, re-applying on fresh state",
			"aggregate", aggregate,
			"attempt", i,
			"maxAttempts", r.attempts,
		)

		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
