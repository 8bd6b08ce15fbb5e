package commands

import (
	"context"
	"errors"
	"log/slog"

	"pharmadelivery/internal/core/domain/model/deliveryrun"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/ports"
	"pharmadelivery/internal/pkg/errs"
)

var ErrDeliverymanHasActiveRun = errors.New("deliveryman already has an active delivery run")

// StartDeliveryRunCommandHandler opens a run for a deliveryman that has none
// active. Every order must exist.
type StartDeliveryRunCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
	logger     *slog.Logger
}

func NewStartDeliveryRunCommandHandler(
	uowFactory UoWFactory,
	clock ports.Clock,
	logger *slog.Logger,
) StartDeliveryRunCommandHandler {
	return StartDeliveryRunCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With("component", "start_delivery_run_handler"),
	}
}

func (h StartDeliveryRunCommandHandler) Handle(ctx context.Context, cmd StartDeliveryRunCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliverymanRepository().Get(ctx, cmd.DeliverymanID())
	if err != nil {
		return err
	}

	runRepo := uow.DeliveryRunRepository()
	active, err := runRepo.FindActiveByDeliveryman(ctx, d.ID())
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return errs.NewValueIsInvalidErrorWithCause("deliverymanId", ErrDeliverymanHasActiveRun)
	}

	if err = ensureOrdersExist(ctx, uow.OrderRepository(), cmd.OrderIDs()); err != nil {
		return err
	}

	run, err := deliveryrun.NewDeliveryRun(cmd.RunID(), d.ID(), d.PharmacyUnitID(), cmd.OrderIDs(), h.clock.Now())
	if err != nil {
		return err
	}

	if err = runRepo.Add(ctx, run); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Delivery run started",
		"runId", run.ID().String(),
		"deliverymanId", d.ID().String(),
		"orders", len(run.OrderIDs()),
	)
	return nil
}

// AddOrdersToRunCommandHandler claims more orders for an active run.
type AddOrdersToRunCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

func NewAddOrdersToRunCommandHandler(uowFactory UoWFactory, clock ports.Clock) AddOrdersToRunCommandHandler {
	return AddOrdersToRunCommandHandler{uowFactory: uowFactory, clock: clock}
}

func (h AddOrdersToRunCommandHandler) Handle(ctx context.Context, cmd AddOrdersToRunCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	runRepo := uow.DeliveryRunRepository()
	run, err := runRepo.Get(ctx, cmd.RunID())
	if err != nil {
		return err
	}

	if err = ensureOrdersExist(ctx, uow.OrderRepository(), cmd.OrderIDs()); err != nil {
		return err
	}

	if err = run.AddOrders(cmd.OrderIDs(), h.clock.Now()); err != nil {
		return err
	}

	if err = runRepo.Update(ctx, run); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// RecordCheckpointCommandHandler appends a GPS fix to an active run.
// Checkpoints are inserted, never updated, so concurrent fixes do not race.
type RecordCheckpointCommandHandler struct {
	uowFactory DeliveryRunUoWFactory
	clock      ports.Clock
}

func NewRecordCheckpointCommandHandler(
	uowFactory DeliveryRunUoWFactory,
	clock ports.Clock,
) RecordCheckpointCommandHandler {
	return RecordCheckpointCommandHandler{uowFactory: uowFactory, clock: clock}
}

func (h RecordCheckpointCommandHandler) Handle(ctx context.Context, cmd RecordCheckpointCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	at := cmd.Timestamp()
	if at.IsZero() {
		at = h.clock.Now()
	}
	checkpoint, err := deliveryrun.NewCheckpoint(cmd.Latitude(), cmd.Longitude(), at)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	runRepo := uow.DeliveryRunRepository()
	run, err := runRepo.Get(ctx, cmd.RunID())
	if err != nil {
		return err
	}

	if err = run.AppendCheckpoint(checkpoint); err != nil {
		return err
	}

	if err = runRepo.Update(ctx, run); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// CompleteDeliveryRunCommandHandler closes a run and finalizes its distance.
type CompleteDeliveryRunCommandHandler struct {
	uowFactory DeliveryRunUoWFactory
	clock      ports.Clock
	logger     *slog.Logger
}

func NewCompleteDeliveryRunCommandHandler(
	uowFactory DeliveryRunUoWFactory,
	clock ports.Clock,
	logger *slog.Logger,
) CompleteDeliveryRunCommandHandler {
	return CompleteDeliveryRunCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With("component", "complete_delivery_run_handler"),
	}
}

func (h CompleteDeliveryRunCommandHandler) Handle(ctx context.Context, cmd CompleteDeliveryRunCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	runRepo := uow.DeliveryRunRepository()
	run, err := runRepo.Get(ctx, cmd.RunID())
	if err != nil {
		return err
	}

	if err = run.Complete(h.clock.Now()); err != nil {
		return err
	}

	if err = runRepo.Update(ctx, run); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Delivery run completed",
		"runId", run.ID().String(),
		"totalDistanceMeters", run.TotalDistance(),
	)
	return nil
}

func ensureOrdersExist(ctx context.Context, repo ports.OrderRepository, orderIDs []kernel.UUID) error {
	for _, id := range orderIDs {
		if _, err := repo.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
