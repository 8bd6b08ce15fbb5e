package ports

import (
	"context"
)

// ChangeKind names the aggregate a change notification is about.
type ChangeKind string

const (
	ChangeKindOrder       ChangeKind = "order"
	ChangeKindDeliveryRun ChangeKind = "delivery_run"
)

// Change is a committed write. It carries identifiers only; consumers
// re-fetch the full record instead of trusting a delta.
type Change struct {
	Kind ChangeKind `json:"kind,omitempty"`
	ID   string     `json:"id,omitempty"`
	// OrderIDs lists the orders claimed by a delivery run.
	OrderIDs []string `json:"orderIds,omitempty"`
	Version  int64    `json:"version,omitempty"`
	// Resync is set after a transport reconnect: anything may have changed.
	Resync bool `json:"resync,omitempty"`
}

// Touches reports whether the change can affect the view of orderID, given
// the id of the run currently correlated with it (empty when none).
func (c Change) Touches(orderID, runID string) bool {
	if c.Resync {
		return true
	}
	switch c.Kind {
	case ChangeKindOrder:
		return c.ID == orderID
	case ChangeKindDeliveryRun:
		if runID != "" && c.ID == runID {
			return true
		}
		for _, id := range c.OrderIDs {
			if id == orderID {
				return true
			}
		}
	}
	return false
}

// ChangeFeed delivers committed changes to subscribers.
type ChangeFeed interface {
	// Subscribe returns a channel of changes and a cancel function. The
	// channel is closed after cancel is called or ctx ends.
	Subscribe(ctx context.Context) (<-chan Change, func(), error)
}

// ChangePublisher hands committed changes to the feed.
type ChangePublisher interface {
	Publish(ctx context.Context, change Change)
}
