// Package realtime keeps order observers in sync with committed state.
//
// A subscription watches one order through one view. Change notifications
// only carry identifiers, so every relevant notification triggers a full
// re-read through the tracking query: timing and run correlation are always
// recomputed from stored state, never patched.
package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"pharmadelivery/internal/core/application/usecases/queries"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/ports"
	"pharmadelivery/internal/pkg/errs"
)

// DefaultStaleRefetches bounds re-reads of a snapshot older than the last
// published one.
const DefaultStaleRefetches = 3

// SnapshotReader is the tracking query.
type SnapshotReader interface {
	Handle(ctx context.Context, query queries.GetOrderTrackingQuery) (queries.OrderSnapshot, error)
}

type Bridge struct {
	feed           ports.ChangeFeed
	reader         SnapshotReader
	staleRefetches int
	logger         *slog.Logger
}

func NewBridge(feed ports.ChangeFeed, reader SnapshotReader, logger *slog.Logger) *Bridge {
	return &Bridge{
		feed:           feed,
		reader:         reader,
		staleRefetches: DefaultStaleRefetches,
		logger:         logger.With("component", "realtime_bridge"),
	}
}

// Subscription delivers snapshots of one order. The channel holds at most
// one snapshot: a slow reader skips intermediate states and always receives
// the newest one.
type Subscription struct {
	snapshots chan queries.OrderSnapshot
	cancel    context.CancelFunc
	done      chan struct{}
	once      sync.Once
}

// Snapshots is closed after Close or when the subscribe context ends.
func (s *Subscription) Snapshots() <-chan queries.OrderSnapshot {
	return s.snapshots
}

// Close releases the feed subscription and waits for the worker to exit.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

// Subscribe reads the current state, publishes it as the first snapshot and
// keeps following changes until Close or until ctx ends. A failing first
// read is returned to the caller.
func (b *Bridge) Subscribe(ctx context.Context, orderID kernel.UUID, view queries.View) (*Subscription, error) {
	query, err := queries.NewGetOrderTrackingQuery(orderID, view)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	changes, unsubscribe, err := b.feed.Subscribe(subCtx)
	if err != nil {
		cancel()
		return nil, err
	}

	initial, err := b.reader.Handle(subCtx, query)
	if err != nil {
		unsubscribe()
		cancel()
		return nil, err
	}

	sub := &Subscription{
		snapshots: make(chan queries.OrderSnapshot, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	w := &worker{
		bridge:  b,
		query:   query,
		orderID: orderID.String(),
		out:     sub.snapshots,
		logger:  b.logger.With("orderId", orderID.String(), "view", view.String()),
	}
	w.publish(initial)

	go func() {
		defer close(sub.done)
		defer close(sub.snapshots)
		defer unsubscribe()
		w.run(subCtx, changes)
	}()

	return sub, nil
}

type worker struct {
	bridge  *Bridge
	query   queries.GetOrderTrackingQuery
	orderID string
	out     chan queries.OrderSnapshot
	logger  *slog.Logger

	last      queries.OrderSnapshot
	lastBytes []byte
}

func (w *worker) run(ctx context.Context, changes <-chan ports.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if !change.Touches(w.orderID, w.last.RunID()) {
				continue
			}
			w.refresh(ctx, change)
		}
	}
}

// refresh re-reads the order. A snapshot older than what was already
// published, or than the version the change announced, is a stale read:
// it is logged and read again, never published.
func (w *worker) refresh(ctx context.Context, change ports.Change) {
	minVersion := w.last.Version
	if change.Kind == ports.ChangeKindOrder && change.ID == w.orderID && change.Version > minVersion {
		minVersion = change.Version
	}

	for attempt := 0; attempt <= w.bridge.staleRefetches; attempt++ {
		snapshot, err := w.bridge.reader.Handle(ctx, w.query)
		if err != nil {
			if ctx.Err() == nil {
				w.logger.WarnContext(ctx, "Refresh failed, keeping last snapshot", "error", err)
			}
			return
		}

		if snapshot.Version < minVersion {
			staleErr := errs.NewStaleReadError("order", snapshot.Version, minVersion)
			w.logger.WarnContext(ctx, "Stale read, refetching", "error", staleErr, "attempt", attempt+1)
			continue
		}

		w.publish(snapshot)
		return
	}

	w.logger.ErrorContext(ctx, "Giving up on stale snapshot", "minVersion", minVersion)
}

// publish drops snapshots identical to the last published one and replaces
// an unread snapshot with the new one.
func (w *worker) publish(snapshot queries.OrderSnapshot) {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		w.logger.Error("Encode snapshot", "error", err)
		return
	}
	if w.lastBytes != nil && bytes.Equal(encoded, w.lastBytes) {
		return
	}
	w.last, w.lastBytes = snapshot, encoded

	select {
	case w.out <- snapshot:
		return
	default:
	}
	select {
	case <-w.out:
	default:
	}
	w.out <- snapshot
}
