// Package changefeed fans committed changes out to in-process subscribers.
// The Hub is fed either directly by the unit of work (single process,
// SQLite) or by a Listener relaying PostgreSQL notifications.
package changefeed

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"pharmadelivery/internal/core/ports"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 64

var ErrHubIsClosed = errors.New("change hub is closed")

type subscriber struct {
	ch chan ports.Change
}

// Hub implements ports.ChangeFeed and ports.ChangePublisher.
//
// Publish never blocks: when a subscriber's queue is full its pending
// changes are replaced by a single resync, which tells it to re-read
// everything it watches.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	closed      bool
	buffer      int
	logger      *slog.Logger
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		buffer:      buffer,
		logger:      logger.With("component", "change_hub"),
	}
}

func (h *Hub) Subscribe(ctx context.Context) (<-chan ports.Change, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, nil, ErrHubIsClosed
	}

	sub := &subscriber{ch: make(chan ports.Change, h.buffer)}
	h.subscribers[sub] = struct{}{}

	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(stop)
			h.remove(sub)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stop:
		}
	}()

	return sub.ch, cancel, nil
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub.ch)
}

func (h *Hub) Publish(ctx context.Context, change ports.Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		select {
		case sub.ch <- change:
			continue
		default:
		}

		h.logger.WarnContext(ctx, "Subscriber queue full, replacing with resync", "buffer", h.buffer)
	drain:
		for {
			select {
			case <-sub.ch:
			default:
				break drain
			}
		}
		select {
		case sub.ch <- ports.Change{Resync: true}:
		default:
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close ends every subscription. Later Subscribe calls fail.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		close(sub.ch)
	}
}
