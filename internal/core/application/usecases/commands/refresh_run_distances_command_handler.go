package commands

import (
	"context"
	"errors"
	"log/slog"

	"pharmadelivery/internal/core/domain/model/deliveryrun"
	"pharmadelivery/internal/core/domain/model/kernel"
)

// RefreshRunDistancesCommandHandler writes each active run in its own unit of
// work so one failing run does not hold back the others. Runs completed in
// between are skipped.
type RefreshRunDistancesCommandHandler struct {
	uowFactory DeliveryRunUoWFactory
	logger     *slog.Logger
}

func NewRefreshRunDistancesCommandHandler(
	uowFactory DeliveryRunUoWFactory,
	logger *slog.Logger,
) RefreshRunDistancesCommandHandler {
	return RefreshRunDistancesCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "refresh_run_distances_handler"),
	}
}

// Handle returns the number of runs whose distance changed.
func (h RefreshRunDistancesCommandHandler) Handle(ctx context.Context, cmd RefreshRunDistancesCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	active, err := h.uowFactory.Create().DeliveryRunRepository().FindActive(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	var errList []error
	for _, run := range active {
		changed, refreshErr := h.refresh(ctx, run.ID())
		switch {
		case errors.Is(refreshErr, deliveryrun.ErrDeliveryRunIsCompleted):
			continue
		case refreshErr != nil:
			errList = append(errList, refreshErr)
		case changed:
			refreshed++
		}
	}

	if refreshed > 0 {
		h.logger.DebugContext(ctx, "Run distances refreshed", "runs", refreshed)
	}
	return refreshed, errors.Join(errList...)
}

func (h RefreshRunDistancesCommandHandler) refresh(ctx context.Context, runID kernel.UUID) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	runRepo := uow.DeliveryRunRepository()
	run, err := runRepo.Get(ctx, runID)
	if err != nil {
		return false, err
	}

	if !run.RefreshDistance() {
		return false, nil
	}

	if err = runRepo.Update(ctx, run); err != nil {
		return false, err
	}

	return true, uow.Commit(ctx)
}
