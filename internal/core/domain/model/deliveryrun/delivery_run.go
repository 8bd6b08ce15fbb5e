package deliveryrun

import (
	"errors"
	"slices"
	"sort"
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/errs"
	"pharmadelivery/internal/pkg/guard"
)

var (
	// ErrDeliveryRunIsNotConstructed is returned when using an improperly initialized DeliveryRun.
	ErrDeliveryRunIsNotConstructed = errors.New("DeliveryRun must be created via NewDeliveryRun constructor")
	// ErrDeliveryRunIsCompleted is returned when mutating a completed run.
	ErrDeliveryRunIsCompleted = errors.New("delivery run is completed")
)

// DeliveryRun is the movement log of one courier trip out of a pharmacy
// unit. It claims the orders carried on the trip and accumulates GPS
// checkpoints while active.
//
// Business rules:
//   - checkpoints are append-only; recorded ones are never rewritten
//   - a completed run accepts no orders and no checkpoints
//   - totalDistance is refreshed while active and finalized by Complete
//   - membership is never pruned; a delivered order stays claimed by its run
type DeliveryRun struct {
	id             kernel.UUID
	deliverymanID  kernel.UUID
	pharmacyUnitID kernel.UUID
	status         Status
	orderIDs       []kernel.UUID
	checkpoints    []Checkpoint
	totalDistance  float64
	startedAt      time.Time
	updatedAt      time.Time
	completedAt    *time.Time

	// newOrderIDs and newCheckpoints are the changes not yet persisted.
	newOrderIDs    []kernel.UUID
	newCheckpoints []Checkpoint

	guard guard.ConstructorGuard
}

// NewDeliveryRun starts an active run carrying orderIDs. The run may start
// empty and receive orders later through AddOrders.
func NewDeliveryRun(
	id, deliverymanID, pharmacyUnitID kernel.UUID,
	orderIDs []kernel.UUID,
	startedAt time.Time,
) (*DeliveryRun, error) {
	r := &DeliveryRun{
		status: StatusActive,
		guard:  guard.NewConstructorGuard(),
	}

	var startedErr error
	if startedAt.IsZero() {
		startedErr = errs.NewValueIsRequiredError("startedAt")
	}

	if err := errors.Join(
		r.setIDs(id, deliverymanID, pharmacyUnitID),
		startedErr,
	); err != nil {
		return nil, err
	}

	r.startedAt = startedAt.UTC()
	r.updatedAt = r.startedAt
	if err := r.AddOrders(orderIDs, startedAt); err != nil {
		return nil, err
	}

	return r, nil
}

// RestoreParams carries a persisted run back into the domain.
type RestoreParams struct {
	ID             kernel.UUID
	DeliverymanID  kernel.UUID
	PharmacyUnitID kernel.UUID
	Status         Status
	OrderIDs       []kernel.UUID
	Checkpoints    []Checkpoint
	TotalDistance  float64
	StartedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
}

func RestoreDeliveryRun(p RestoreParams) (*DeliveryRun, error) {
	r := &DeliveryRun{
		orderIDs:      slices.Clone(p.OrderIDs),
		checkpoints:   slices.Clone(p.Checkpoints),
		totalDistance: p.TotalDistance,
		startedAt:     p.StartedAt.UTC(),
		updatedAt:     p.UpdatedAt.UTC(),
		guard:         guard.NewConstructorGuard(),
	}
	if p.CompletedAt != nil {
		completedAt := p.CompletedAt.UTC()
		r.completedAt = &completedAt
	}

	if err := errors.Join(
		r.setIDs(p.ID, p.DeliverymanID, p.PharmacyUnitID),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}
	r.status = p.Status

	return r, nil
}

func (r *DeliveryRun) Validate() error {
	if r == nil {
		return ErrDeliveryRunIsNotConstructed
	}
	return r.guard.Validate(ErrDeliveryRunIsNotConstructed)
}

func (r *DeliveryRun) IsEqual(other *DeliveryRun) bool {
	return other != nil && r.id.IsEqual(other.id)
}

func (r *DeliveryRun) ID() kernel.UUID {
	return r.id
}

func (r *DeliveryRun) DeliverymanID() kernel.UUID {
	return r.deliverymanID
}

func (r *DeliveryRun) PharmacyUnitID() kernel.UUID {
	return r.pharmacyUnitID
}

func (r *DeliveryRun) Status() Status {
	return r.status
}

func (r *DeliveryRun) IsActive() bool {
	return r.status == StatusActive
}

func (r *DeliveryRun) OrderIDs() []kernel.UUID {
	return slices.Clone(r.orderIDs)
}

// Checkpoints returns the recorded fixes ordered by timestamp. Concurrent
// writers may insert out of order; the sort is stable so ties keep their
// recorded order.
func (r *DeliveryRun) Checkpoints() []Checkpoint {
	sorted := slices.Clone(r.checkpoints)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].timestamp.Before(sorted[j].timestamp)
	})
	return sorted
}

// TotalDistance is the stored distance in meters.
func (r *DeliveryRun) TotalDistance() float64 {
	return r.totalDistance
}

func (r *DeliveryRun) StartedAt() time.Time {
	return r.startedAt
}

func (r *DeliveryRun) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *DeliveryRun) CompletedAt() *time.Time {
	if r.completedAt == nil {
		return nil
	}
	completedAt := *r.completedAt
	return &completedAt
}

// NewOrderIDs returns the orders added since the run was loaded.
func (r *DeliveryRun) NewOrderIDs() []kernel.UUID {
	return slices.Clone(r.newOrderIDs)
}

// NewCheckpoints returns the checkpoints appended since the run was loaded.
func (r *DeliveryRun) NewCheckpoints() []Checkpoint {
	return slices.Clone(r.newCheckpoints)
}

// ClearChanges is called by the persistence layer once pending changes are stored.
func (r *DeliveryRun) ClearChanges() {
	r.newOrderIDs = nil
	r.newCheckpoints = nil
}

func (r *DeliveryRun) ContainsOrder(orderID kernel.UUID) bool {
	return slices.ContainsFunc(r.orderIDs, func(id kernel.UUID) bool {
		return id.IsEqual(orderID)
	})
}

// AddOrders claims orders for the run. Orders already claimed are skipped.
func (r *DeliveryRun) AddOrders(orderIDs []kernel.UUID, at time.Time) error {
	if err := r.checkActive(); err != nil {
		return err
	}
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("orderIds", err)
		}
	}

	for _, id := range orderIDs {
		if r.ContainsOrder(id) {
			continue
		}
		r.orderIDs = append(r.orderIDs, id)
		r.newOrderIDs = append(r.newOrderIDs, id)
	}
	r.touch(at)
	return nil
}

// AppendCheckpoint records a GPS fix.
func (r *DeliveryRun) AppendCheckpoint(c Checkpoint) error {
	if err := errors.Join(r.checkActive(), c.Validate()); err != nil {
		return err
	}
	r.checkpoints = append(r.checkpoints, c)
	r.newCheckpoints = append(r.newCheckpoints, c)
	r.touch(c.timestamp)
	return nil
}

// LastCheckpoint returns the most recent fix, the courier's current
// position. ok is false when none was recorded yet.
func (r *DeliveryRun) LastCheckpoint() (Checkpoint, bool) {
	sorted := r.Checkpoints()
	if len(sorted) == 0 {
		return Checkpoint{}, false
	}
	return sorted[len(sorted)-1], true
}

// LiveDistance sums the great-circle legs between consecutive checkpoints.
func (r *DeliveryRun) LiveDistance() float64 {
	sorted := r.Checkpoints()
	var total float64
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1].location, sorted[i].location
		total += kernel.HaversineMeters(prev.Latitude(), prev.Longitude(), cur.Latitude(), cur.Longitude())
	}
	return total
}

// Distance is the live distance while active and the finalized one afterwards.
func (r *DeliveryRun) Distance() float64 {
	if r.IsActive() {
		return r.LiveDistance()
	}
	return r.totalDistance
}

// RefreshDistance stores the live distance of an active run and reports
// whether it changed.
func (r *DeliveryRun) RefreshDistance() bool {
	if !r.IsActive() {
		return false
	}
	live := r.LiveDistance()
	if live == r.totalDistance {
		return false
	}
	r.totalDistance = live
	return true
}

// Complete closes the run and finalizes totalDistance.
func (r *DeliveryRun) Complete(at time.Time) error {
	if err := r.checkActive(); err != nil {
		return err
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("completedAt")
	}

	r.totalDistance = r.LiveDistance()
	r.status = StatusCompleted
	r.touch(at)
	completedAt := r.updatedAt
	r.completedAt = &completedAt
	return nil
}

func (r *DeliveryRun) checkActive() error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.status == StatusCompleted {
		return errs.NewValueIsInvalidErrorWithCause("deliveryRun", ErrDeliveryRunIsCompleted)
	}
	return nil
}

func (r *DeliveryRun) touch(at time.Time) {
	if at.After(r.updatedAt) {
		r.updatedAt = at.UTC()
	}
}

func (r *DeliveryRun) setIDs(id, deliverymanID, pharmacyUnitID kernel.UUID) error {
	var deliverymanErr, unitErr error
	if err := deliverymanID.Validate(); err != nil {
		deliverymanErr = errs.NewValueIsRequiredErrorWithCause("deliverymanId", err)
	}
	if err := pharmacyUnitID.Validate(); err != nil {
		unitErr = errs.NewValueIsRequiredErrorWithCause("pharmacyUnitId", err)
	}
	if err := errors.Join(id.Validate(), deliverymanErr, unitErr); err != nil {
		return err
	}
	r.id = id
	r.deliverymanID = deliverymanID
	r.pharmacyUnitID = pharmacyUnitID
	return nil
}
