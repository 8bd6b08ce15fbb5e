package commands

import (
	"errors"
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/errs"
	"pharmadelivery/internal/pkg/guard"
)

var (
	ErrStartDeliveryRunCommandIsNotConstructed = errors.New(
		"StartDeliveryRunCommand must be created via NewStartDeliveryRunCommand constructor",
	)
	ErrAddOrdersToRunCommandIsNotConstructed = errors.New(
		"AddOrdersToRunCommand must be created via NewAddOrdersToRunCommand constructor",
	)
	ErrRecordCheckpointCommandIsNotConstructed = errors.New(
		"RecordCheckpointCommand must be created via NewRecordCheckpointCommand constructor",
	)
	ErrCompleteDeliveryRunCommandIsNotConstructed = errors.New(
		"CompleteDeliveryRunCommand must be created via NewCompleteDeliveryRunCommand constructor",
	)
	ErrOrderIDsAreRequired = errs.NewValueIsRequiredError("orderIds")
)

// StartDeliveryRunCommand opens a courier trip carrying orderIDs.
type StartDeliveryRunCommand struct { //nolint:recvcheck //using for validation
	runID         kernel.UUID
	deliverymanID kernel.UUID
	orderIDs      []kernel.UUID

	guard guard.ConstructorGuard
}

func NewStartDeliveryRunCommand(
	runID, deliverymanID kernel.UUID,
	orderIDs []kernel.UUID,
) (StartDeliveryRunCommand, error) {
	if err := errors.Join(runID.Validate(), deliverymanID.Validate(), validateOrderIDs(orderIDs, false)); err != nil {
		return StartDeliveryRunCommand{}, err
	}

	return StartDeliveryRunCommand{
		runID:         runID,
		deliverymanID: deliverymanID,
		orderIDs:      append([]kernel.UUID(nil), orderIDs...),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c StartDeliveryRunCommand) Validate() error {
	return c.guard.Validate(ErrStartDeliveryRunCommandIsNotConstructed)
}

func (c StartDeliveryRunCommand) RunID() kernel.UUID {
	return c.runID
}

func (c StartDeliveryRunCommand) DeliverymanID() kernel.UUID {
	return c.deliverymanID
}

func (c StartDeliveryRunCommand) OrderIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.orderIDs...)
}

// AddOrdersToRunCommand claims more orders for an active run.
type AddOrdersToRunCommand struct { //nolint:recvcheck //using for validation
	runID    kernel.UUID
	orderIDs []kernel.UUID

	guard guard.ConstructorGuard
}

func NewAddOrdersToRunCommand(runID kernel.UUID, orderIDs []kernel.UUID) (AddOrdersToRunCommand, error) {
	if err := errors.Join(runID.Validate(), validateOrderIDs(orderIDs, true)); err != nil {
		return AddOrdersToRunCommand{}, err
	}

	return AddOrdersToRunCommand{
		runID:    runID,
		orderIDs: append([]kernel.UUID(nil), orderIDs...),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c AddOrdersToRunCommand) Validate() error {
	return c.guard.Validate(ErrAddOrdersToRunCommandIsNotConstructed)
}

func (c AddOrdersToRunCommand) RunID() kernel.UUID {
	return c.runID
}

func (c AddOrdersToRunCommand) OrderIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.orderIDs...)
}

// RecordCheckpointCommand carries one GPS fix from the courier app. The
// timestamp is the device time of the fix.
type RecordCheckpointCommand struct { //nolint:recvcheck //using for validation
	runID     kernel.UUID
	latitude  float64
	longitude float64
	timestamp time.Time

	guard guard.ConstructorGuard
}

func NewRecordCheckpointCommand(
	runID kernel.UUID,
	latitude, longitude float64,
	timestamp time.Time,
) (RecordCheckpointCommand, error) {
	if err := runID.Validate(); err != nil {
		return RecordCheckpointCommand{}, err
	}

	return RecordCheckpointCommand{
		runID:     runID,
		latitude:  latitude,
		longitude: longitude,
		timestamp: timestamp,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RecordCheckpointCommand) Validate() error {
	return c.guard.Validate(ErrRecordCheckpointCommandIsNotConstructed)
}

func (c RecordCheckpointCommand) RunID() kernel.UUID {
	return c.runID
}

func (c RecordCheckpointCommand) Latitude() float64 {
	return c.latitude
}

func (c RecordCheckpointCommand) Longitude() float64 {
	return c.longitude
}

// Timestamp is the device time; zero means "now".
func (c RecordCheckpointCommand) Timestamp() time.Time {
	return c.timestamp
}

// CompleteDeliveryRunCommand closes a run when the courier is back.
type CompleteDeliveryRunCommand struct { //nolint:recvcheck //using for validation
	runID kernel.UUID

	guard guard.ConstructorGuard
}

func NewCompleteDeliveryRunCommand(runID kernel.UUID) (CompleteDeliveryRunCommand, error) {
	if err := runID.Validate(); err != nil {
		return CompleteDeliveryRunCommand{}, err
	}
	return CompleteDeliveryRunCommand{runID: runID, guard: guard.NewConstructorGuard()}, nil
}

func (c CompleteDeliveryRunCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveryRunCommandIsNotConstructed)
}

func (c CompleteDeliveryRunCommand) RunID() kernel.UUID {
	return c.runID
}

func validateOrderIDs(orderIDs []kernel.UUID, required bool) error {
	if required && len(orderIDs) == 0 {
		return ErrOrderIDsAreRequired
	}
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("orderIds", err)
		}
	}
	return nil
}
