package commands

import (
	"context"
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/ports"
)

// SubmitReviewCommandHandler stores a review. Handle reports applied == false
// when the prompt had already been resolved; nothing is written then.
type SubmitReviewCommandHandler struct {
	uowFactory OrderUoWFactory
	retrier    ConflictRetrier
	clock      ports.Clock
}

func NewSubmitReviewCommandHandler(
	uowFactory OrderUoWFactory,
	retrier ConflictRetrier,
	clock ports.Clock,
) SubmitReviewCommandHandler {
	return SubmitReviewCommandHandler{uowFactory: uowFactory, retrier: retrier, clock: clock}
}

func (h SubmitReviewCommandHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	return resolveReview(ctx, h.uowFactory, h.retrier, cmd, func(o *order.Order, at time.Time) (bool, error) {
		return o.SubmitReview(cmd.Rating(), cmd.Comment(), at)
	}, h.clock)
}

// DeclineReviewCommandHandler resolves the prompt without a rating.
type DeclineReviewCommandHandler struct {
	uowFactory OrderUoWFactory
	retrier    ConflictRetrier
	clock      ports.Clock
}

func NewDeclineReviewCommandHandler(
	uowFactory OrderUoWFactory,
	retrier ConflictRetrier,
	clock ports.Clock,
) DeclineReviewCommandHandler {
	return DeclineReviewCommandHandler{uowFactory: uowFactory, retrier: retrier, clock: clock}
}

func (h DeclineReviewCommandHandler) Handle(ctx context.Context, cmd DeclineReviewCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	return resolveReview(ctx, h.uowFactory, h.retrier, cmd, func(o *order.Order, at time.Time) (bool, error) {
		return o.DeclineReview(at)
	}, h.clock)
}

type orderCommand interface {
	OrderID() kernel.UUID
}

func resolveReview(
	ctx context.Context,
	uowFactory OrderUoWFactory,
	retrier ConflictRetrier,
	cmd orderCommand,
	resolve func(o *order.Order, at time.Time) (bool, error),
	clock ports.Clock,
) (bool, error) {
	var applied bool
	err := retrier.Do(ctx, "order", func(ctx context.Context) error {
		applied = false

		uow := uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		orderRepo := uow.OrderRepository()
		o, err := orderRepo.Get(ctx, cmd.OrderID())
		if err != nil {
			return err
		}

		ok, err := resolve(o, clock.Now())
		if err != nil || !ok {
			return err
		}

		if err = orderRepo.Update(ctx, o); err != nil {
			return err
		}
		if err = uow.Commit(ctx); err != nil {
			return err
		}

		applied = true
		return nil
	})
	return applied, err
}
