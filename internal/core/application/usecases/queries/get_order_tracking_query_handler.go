package queries

import (
	"context"
	"log/slog"
	"time"

	"pharmadelivery/internal/core/domain/model/deliveryrun"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/domain/services"
)

type (
	OrderReader interface {
		Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
	}

	DeliveryRunReader interface {
		FindByOrder(ctx context.Context, orderID kernel.UUID) ([]*deliveryrun.DeliveryRun, error)
	}
)

// GetOrderTrackingQueryHandler builds order snapshots. It is the single read
// path used by the HTTP detail endpoint and by the realtime bridge, so both
// always agree on timing, correlation and view projection.
//
// Reads are fail-fast: they run under the configured timeout and a deadline
// or connection failure surfaces as errs.ErrNetworkUnavailable.
type GetOrderTrackingQueryHandler struct {
	orders      OrderReader
	runs        DeliveryRunReader
	timing      services.DeliveryTimingCalculator
	correlator  services.DeliveryRunCorrelator
	readTimeout time.Duration
	logger      *slog.Logger
}

func NewGetOrderTrackingQueryHandler(
	orders OrderReader,
	runs DeliveryRunReader,
	readTimeout time.Duration,
	logger *slog.Logger,
) GetOrderTrackingQueryHandler {
	return GetOrderTrackingQueryHandler{
		orders:      orders,
		runs:        runs,
		timing:      services.NewDeliveryTimingCalculator(),
		correlator:  services.NewDeliveryRunCorrelator(),
		readTimeout: readTimeout,
		logger:      logger.With("component", "order_tracking_query"),
	}
}

func (h GetOrderTrackingQueryHandler) Handle(ctx context.Context, query GetOrderTrackingQuery) (OrderSnapshot, error) {
	if err := query.Validate(); err != nil {
		return OrderSnapshot{}, err
	}

	var (
		o    *order.Order
		runs []*deliveryrun.DeliveryRun
	)
	err := failFast(ctx, h.readTimeout, "get order tracking", func(ctx context.Context) error {
		var err error
		if o, err = h.orders.Get(ctx, query.OrderID()); err != nil {
			return err
		}
		runs, err = h.runs.FindByOrder(ctx, query.OrderID())
		return err
	})
	if err != nil {
		return OrderSnapshot{}, err
	}

	corr := h.correlator.Correlate(o.ID(), runs)
	if ambiguity := corr.Ambiguity(o.ID()); ambiguity != nil {
		h.logger.WarnContext(ctx, "Order claimed by several active runs",
			"orderId", o.ID().String(),
			"candidates", corr.Candidates,
			"chosenRunId", corr.Run.ID().String(),
			"error", ambiguity,
		)
	}

	return NewOrderSnapshot(o, h.timing.Calculate(o.History().Entries()), corr, query.View()), nil
}
