package changefeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"pharmadelivery/internal/core/ports"

	"github.com/lib/pq"
)

const (
	minReconnectInterval = 100 * time.Millisecond
	maxReconnectInterval = 10 * time.Second
	pingInterval         = 90 * time.Second
)

// Listener relays PostgreSQL notifications on one channel to a publisher.
// After the connection is re-established it publishes a resync, since
// notifications sent while disconnected are lost.
type Listener struct {
	dsn       string
	channel   string
	publisher ports.ChangePublisher
	logger    *slog.Logger
}

func NewListener(dsn, channel string, publisher ports.ChangePublisher, logger *slog.Logger) *Listener {
	return &Listener{
		dsn:       dsn,
		channel:   channel,
		publisher: publisher,
		logger:    logger.With("component", "change_listener", "channel", channel),
	}
}

// Run listens until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, minReconnectInterval, maxReconnectInterval, l.onEvent)
	defer func() { _ = listener.Close() }()

	if err := listener.Listen(l.channel); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "Listening for changes")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				l.logger.InfoContext(ctx, "Reconnected, requesting resync")
				l.publisher.Publish(ctx, ports.Change{Resync: true})
				continue
			}
			l.publisher.Publish(ctx, l.decode(ctx, n.Extra))
		case <-ticker.C:
			l.ping(ctx, listener)
		}
	}
}

type pinger interface {
	Ping() error
}

// ping runs on the Run goroutine so nothing outlives the deferred Close.
func (l *Listener) ping(ctx context.Context, p pinger) {
	if err := p.Ping(); err != nil {
		l.logger.WarnContext(ctx, "Listener ping failed", "error", err)
	}
}

func (l *Listener) onEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventDisconnected:
		l.logger.Warn("Change feed disconnected", "error", err)
	case pq.ListenerEventConnectionAttemptFailed:
		l.logger.Error("Change feed reconnect failed", "error", err)
	case pq.ListenerEventConnected, pq.ListenerEventReconnected:
	}
}

// decode turns a payload into a change. Unreadable payloads become a resync.
func (l *Listener) decode(ctx context.Context, payload string) ports.Change {
	var change ports.Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		l.logger.WarnContext(ctx, "Unreadable change payload", "error", err, "payload", payload)
		return ports.Change{Resync: true}
	}
	return change
}
