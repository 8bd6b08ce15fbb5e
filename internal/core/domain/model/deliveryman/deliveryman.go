package deliveryman

import (
	"errors"
	"fmt"
	"strings"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/errs"
	"pharmadelivery/internal/pkg/guard"
)

// Domain errors for deliveryman operations.
var (
	// ErrNameIsRequired is returned when attempting to create a deliveryman without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrDeliverymanIsNotConstructed is returned when using an improperly initialized Deliveryman.
	ErrDeliverymanIsNotConstructed = errors.New("Deliveryman must be created via NewDeliveryman constructor")
	// ErrDeliverymanIsBusy is returned when occupying a deliveryman already carrying another order.
	ErrDeliverymanIsBusy = errors.New("deliveryman is already delivering another order")
	// ErrDeliverymanIsOffDuty is returned when occupying a deliveryman that is off duty.
	ErrDeliverymanIsOffDuty = errors.New("deliveryman is off duty")
)

// Deliveryman is a courier employed by a pharmacy unit.
//
// Business rules:
//   - a deliveryman carries at most one order at a time (orderID)
//   - status is delivering exactly when orderID is set
//   - an off duty deliveryman cannot be occupied
//
// chavePix is the payout key disclosed to customers who want to tip.
type Deliveryman struct {
	id             kernel.UUID
	name           string
	pharmacyUnitID kernel.UUID
	status         Status
	orderID        *kernel.UUID
	chavePix       string
	guard          guard.ConstructorGuard
}

// NewDeliveryman creates an available deliveryman.
//
//	d, err := NewDeliveryman(kernel.NewUUID(), "João Lima", unitID, "joao@pix.example")
//	if err != nil {
//	    // handle validation error
//	}
func NewDeliveryman(id kernel.UUID, name string, pharmacyUnitID kernel.UUID, chavePix string) (*Deliveryman, error) {
	d := &Deliveryman{
		status:   StatusAvailable,
		chavePix: strings.TrimSpace(chavePix),
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setPharmacyUnit(pharmacyUnitID),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDeliveryman reconstructs a Deliveryman from persistent storage.
func RestoreDeliveryman(
	id kernel.UUID,
	name string,
	pharmacyUnitID kernel.UUID,
	status Status,
	orderID *kernel.UUID,
	chavePix string,
) (*Deliveryman, error) {
	d := &Deliveryman{
		chavePix: chavePix,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setPharmacyUnit(pharmacyUnitID),
		d.setState(status, orderID),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// IsEqual compares two deliverymen by identity.
func (d *Deliveryman) IsEqual(other *Deliveryman) bool {
	if other == nil {
		return false
	}
	return d.id.IsEqual(other.id)
}

// Validate checks if the Deliveryman was properly constructed.
func (d *Deliveryman) Validate() error {
	if d == nil {
		return ErrDeliverymanIsNotConstructed
	}
	return d.guard.Validate(ErrDeliverymanIsNotConstructed)
}

func (d *Deliveryman) ID() kernel.UUID {
	return d.id
}

func (d *Deliveryman) Name() string {
	return d.name
}

func (d *Deliveryman) PharmacyUnitID() kernel.UUID {
	return d.pharmacyUnitID
}

func (d *Deliveryman) Status() Status {
	return d.status
}

// OrderID returns the order being delivered, or nil.
func (d *Deliveryman) OrderID() *kernel.UUID {
	if d.orderID == nil {
		return nil
	}
	id := *d.orderID
	return &id
}

func (d *Deliveryman) ChavePix() string {
	return d.chavePix
}

// IsOccupiedBy reports whether the deliveryman is carrying orderID.
func (d *Deliveryman) IsOccupiedBy(orderID kernel.UUID) bool {
	return d.orderID != nil && d.orderID.IsEqual(orderID)
}

// Occupy marks the deliveryman as delivering orderID. Occupying with the
// order already carried is a no-op.
func (d *Deliveryman) Occupy(orderID kernel.UUID) error {
	if err := errors.Join(d.Validate(), orderID.Validate()); err != nil {
		return err
	}
	if d.IsOccupiedBy(orderID) {
		return nil
	}
	if d.orderID != nil {
		return errs.NewValueIsInvalidErrorWithCause("deliveryman", ErrDeliverymanIsBusy)
	}
	if d.status == StatusOffDuty {
		return errs.NewValueIsInvalidErrorWithCause("deliveryman", ErrDeliverymanIsOffDuty)
	}

	d.orderID = &orderID
	d.status = StatusDelivering
	return nil
}

// Release frees the deliveryman if it is carrying orderID and reports
// whether anything changed.
func (d *Deliveryman) Release(orderID kernel.UUID) bool {
	if !d.IsOccupiedBy(orderID) {
		return false
	}
	d.orderID = nil
	d.status = StatusAvailable
	return true
}

// GoOffDuty takes an idle deliveryman out of rotation.
func (d *Deliveryman) GoOffDuty() error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.orderID != nil {
		return errs.NewValueIsInvalidErrorWithCause("deliveryman", ErrDeliverymanIsBusy)
	}
	d.status = StatusOffDuty
	return nil
}

// GoOnDuty makes an off duty deliveryman available again.
func (d *Deliveryman) GoOnDuty() error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.status == StatusOffDuty {
		d.status = StatusAvailable
	}
	return nil
}

func (d *Deliveryman) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Deliveryman) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}

func (d *Deliveryman) setPharmacyUnit(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("pharmacyUnitId", err)
	}
	d.pharmacyUnitID = id
	return nil
}

func (d *Deliveryman) setState(status Status, orderID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if (status == StatusDelivering) != (orderID != nil) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s deliveryman with order %v", status, orderID != nil),
		)
	}
	if orderID != nil {
		if err := orderID.Validate(); err != nil {
			return err
		}
		id := *orderID
		d.orderID = &id
	}
	d.status = status
	return nil
}
