package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrOrderIsDelivered    = errors.New("order is already delivered")
	ErrOrderIsCancelled    = errors.New("order is cancelled; only reactivation is allowed")
	ErrReasonIsRequired    = errs.NewValueIsRequiredError("reason")
	ErrTransitionSkipsStep = errors.New("transition skips the canonical sequence")
	ErrOrderIsNotCancelled = errors.New("only cancelled orders can be reactivated")
)

// ReactivationNote is written on the history entry appended by Reactivate.
const ReactivationNote = "reactivated"

// Assignment is the courier currently responsible for an order.
type Assignment struct {
	DeliverymanID   kernel.UUID
	DeliverymanName string
	LicensePlate    string
}

// Review is the one-time post-delivery rating.
type Review struct {
	Rating  int
	Comment string
	Date    time.Time
}

// Order is the aggregate root observed and mutated by customers, couriers
// and back-office staff. It owns the status history ledger.
//
// Invariants:
//   - statusHistory is append-only and its timestamps are non-decreasing
//   - every accepted transition appends exactly one entry
//   - rating and comment are set at most once; reviewRequested never goes back to false
//   - the convenience flags (IsPending, ...) are derived from status only
type Order struct {
	id     kernel.UUID
	number string

	status           Status
	createdAt        time.Time
	updatedAt        time.Time
	lastStatusUpdate time.Time

	customerName  string
	customerPhone string
	address       string
	location      *kernel.Location
	items         []string
	price         kernel.Money
	pharmacyUnit  kernel.UUID

	assignment   *Assignment
	cancelReason string

	review          *Review
	reviewRequested bool

	history History

	// version is the stored version this aggregate was read at.
	version int64

	isConstructed bool
}

// NewOrderParams carries the data captured when an order is placed.
type NewOrderParams struct {
	ID             kernel.UUID
	Number         string
	CustomerName   string
	CustomerPhone  string
	Address        string
	Location       *kernel.Location
	Items          []string
	Price          kernel.Money
	PharmacyUnitID kernel.UUID
	CreatedAt      time.Time
	CreatedBy      Actor
}

// NewOrder creates an order in Pending status with its first history entry.
// All validation failures are reported together.
func NewOrder(p NewOrderParams) (*Order, error) {
	o := &Order{
		status:        Pending,
		price:         p.Price,
		isConstructed: true,
	}

	var createdAtErr error
	if p.CreatedAt.IsZero() {
		createdAtErr = errs.NewValueIsRequiredError("createdAt")
	}

	if err := errors.Join(
		o.setID(p.ID),
		o.setNumber(p.Number),
		o.setCustomer(p.CustomerName, p.CustomerPhone),
		o.setAddress(p.Address),
		o.setLocation(p.Location),
		o.setItems(p.Items),
		o.setPharmacyUnit(p.PharmacyUnitID),
		createdAtErr,
	); err != nil {
		return nil, err
	}

	createdBy := p.CreatedBy
	if createdBy == "" {
		createdBy = ActorSystem
	}

	entry, err := NewHistoryEntry(Pending, p.CreatedAt, createdBy, "", "")
	if err != nil {
		return nil, err
	}

	stamped := o.history.append(entry)
	o.createdAt = stamped.Timestamp()
	o.updatedAt = stamped.Timestamp()
	o.lastStatusUpdate = stamped.Timestamp()

	return o, nil
}

// RestoreParams carries a persisted order back into the domain.
type RestoreParams struct {
	NewOrderParams

	Status           Status
	UpdatedAt        time.Time
	LastStatusUpdate time.Time
	Assignment       *Assignment
	CancelReason     string
	Review           *Review
	ReviewRequested  bool
	History          History
	Version          int64
}

// RestoreOrder rebuilds an order read from storage. The stored history is
// taken as is.
func RestoreOrder(p RestoreParams) (*Order, error) {
	o := &Order{
		price:            p.Price,
		createdAt:        p.CreatedAt.UTC(),
		updatedAt:        p.UpdatedAt.UTC(),
		lastStatusUpdate: p.LastStatusUpdate.UTC(),
		cancelReason:     p.CancelReason,
		reviewRequested:  p.ReviewRequested,
		history:          p.History,
		version:          p.Version,
		isConstructed:    true,
	}

	if p.Assignment != nil {
		assignment := *p.Assignment
		o.assignment = &assignment
	}
	if p.Review != nil {
		review := *p.Review
		o.review = &review
	}

	if err := errors.Join(
		o.setID(p.ID),
		o.setNumber(p.Number),
		o.setCustomer(p.CustomerName, p.CustomerPhone),
		o.setAddress(p.Address),
		o.setLocation(p.Location),
		o.setItems(p.Items),
		o.setPharmacyUnit(p.PharmacyUnitID),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}
	o.status = p.Status

	return o, nil
}

// Validate ensures the Order was built by NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Number() string {
	return o.number
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) LastStatusUpdate() time.Time {
	return o.lastStatusUpdate
}

func (o *Order) CustomerName() string {
	return o.customerName
}

func (o *Order) CustomerPhone() string {
	return o.customerPhone
}

func (o *Order) Address() string {
	return o.address
}

// Location returns the delivery coordinate. Orders without one are valid;
// ok is false and the UI flags them.
func (o *Order) Location() (kernel.Location, bool) {
	if o.location == nil {
		return kernel.Location{}, false
	}
	return *o.location, true
}

func (o *Order) Items() []string {
	items := make([]string, len(o.items))
	copy(items, o.items)
	return items
}

func (o *Order) Price() kernel.Money {
	return o.price
}

func (o *Order) PharmacyUnitID() kernel.UUID {
	return o.pharmacyUnit
}

// Assignment returns the assigned courier, or nil.
func (o *Order) Assignment() *Assignment {
	if o.assignment == nil {
		return nil
	}
	assignment := *o.assignment
	return &assignment
}

// DeliverymanID returns the assigned courier id, or nil.
func (o *Order) DeliverymanID() *kernel.UUID {
	if o.assignment == nil {
		return nil
	}
	id := o.assignment.DeliverymanID
	return &id
}

func (o *Order) CancelReason() string {
	return o.cancelReason
}

// Review returns the submitted review, or nil when none was submitted.
func (o *Order) Review() *Review {
	if o.review == nil {
		return nil
	}
	review := *o.review
	return &review
}

// ReviewRequested reports whether the review prompt has been resolved
// (accepted or declined).
func (o *Order) ReviewRequested() bool {
	return o.reviewRequested
}

func (o *Order) History() History {
	return NewHistory(o.history.entries...)
}

func (o *Order) Version() int64 {
	return o.version
}

// AdvanceVersion is called by the persistence layer after a successful
// compare-and-swap write.
func (o *Order) AdvanceVersion() {
	o.version++
}

func (o *Order) IsPending() bool {
	return o.status == Pending
}

func (o *Order) IsInPreparation() bool {
	return o.status == InPreparation
}

func (o *Order) IsInDelivery() bool {
	return o.status == OnTheWay
}

func (o *Order) IsDelivered() bool {
	return o.status == Delivered
}

func (o *Order) IsCancelled() bool {
	return o.status == Cancelled
}

// AssignDeliveryman records the courier and vehicle responsible for the order.
// Terminal orders cannot be reassigned.
func (o *Order) AssignDeliveryman(assignment Assignment, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.status.IsTerminal() {
		return errs.NewValueIsInvalidErrorWithCause(
			"order",
			fmt.Errorf("%s orders cannot be assigned", o.status),
		)
	}

	var nameErr error
	if strings.TrimSpace(assignment.DeliverymanName) == "" {
		nameErr = errs.NewValueIsRequiredError("deliverymanName")
	}
	if err := errors.Join(assignment.DeliverymanID.Validate(), nameErr); err != nil {
		return err
	}

	assignment.LicensePlate = strings.ToUpper(strings.TrimSpace(assignment.LicensePlate))
	o.assignment = &assignment
	o.touch(at)
	return nil
}

func (o *Order) touch(at time.Time) {
	if at.After(o.updatedAt) {
		o.updatedAt = at.UTC()
	}
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return errs.NewValueIsRequiredError("number")
	}
	o.number = number
	return nil
}

func (o *Order) setCustomer(name, phone string) error {
	var nameErr, phoneErr error
	if strings.TrimSpace(name) == "" {
		nameErr = errs.NewValueIsRequiredError("customerName")
	}
	if strings.TrimSpace(phone) == "" {
		phoneErr = errs.NewValueIsRequiredError("customerPhone")
	}
	if err := errors.Join(nameErr, phoneErr); err != nil {
		return err
	}
	o.customerName = strings.TrimSpace(name)
	o.customerPhone = strings.TrimSpace(phone)
	return nil
}

func (o *Order) setAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return errs.NewValueIsRequiredError("address")
	}
	o.address = strings.TrimSpace(address)
	return nil
}

func (o *Order) setLocation(location *kernel.Location) error {
	if location == nil {
		o.location = nil
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	loc := *location
	o.location = &loc
	return nil
}

func (o *Order) setItems(items []string) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	cleaned := make([]string, 0, len(items))
	for i, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			return errs.NewValueIsInvalidErrorWithCause("items", fmt.Errorf("item %d is blank", i))
		}
		cleaned = append(cleaned, item)
	}
	o.items = cleaned
	return nil
}

func (o *Order) setPharmacyUnit(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("pharmacyUnitId", err)
	}
	o.pharmacyUnit = id
	return nil
}
