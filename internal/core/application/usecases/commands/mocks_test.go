package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"pharmadelivery/internal/core/application/usecases/commands"
	"pharmadelivery/internal/core/domain/model/deliveryman"
	"pharmadelivery/internal/core/domain/model/deliveryrun"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func fixedClock() ports.Clock {
	return ports.ClockFunc(func() time.Time { return now })
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Find(ctx context.Context, filter ports.OrderFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockDeliverymanRepository struct{ mock.Mock }

func (m *MockDeliverymanRepository) Add(ctx context.Context, d *deliveryman.Deliveryman) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliverymanRepository) Update(ctx context.Context, d *deliveryman.Deliveryman) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliverymanRepository) Get(ctx context.Context, id kernel.UUID) (*deliveryman.Deliveryman, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deliveryman.Deliveryman), args.Error(1)
}

type MockDeliveryRunRepository struct{ mock.Mock }

func (m *MockDeliveryRunRepository) Add(ctx context.Context, r *deliveryrun.DeliveryRun) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockDeliveryRunRepository) Update(ctx context.Context, r *deliveryrun.DeliveryRun) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockDeliveryRunRepository) Get(ctx context.Context, id kernel.UUID) (*deliveryrun.DeliveryRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deliveryrun.DeliveryRun), args.Error(1)
}

func (m *MockDeliveryRunRepository) FindByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) ([]*deliveryrun.DeliveryRun, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*deliveryrun.DeliveryRun), args.Error(1)
}

func (m *MockDeliveryRunRepository) FindActiveByDeliveryman(
	ctx context.Context,
	deliverymanID kernel.UUID,
) ([]*deliveryrun.DeliveryRun, error) {
	args := m.Called(ctx, deliverymanID)
	return args.Get(0).([]*deliveryrun.DeliveryRun), args.Error(1)
}

func (m *MockDeliveryRunRepository) FindActive(ctx context.Context) ([]*deliveryrun.DeliveryRun, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*deliveryrun.DeliveryRun), args.Error(1)
}

// MockUoW satisfies every unit of work interface of the package.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) DeliverymanRepository() ports.DeliverymanRepository {
	args := m.Called()
	return args.Get(0).(ports.DeliverymanRepository)
}

func (m *MockUoW) DeliveryRunRepository() ports.DeliveryRunRepository {
	args := m.Called()
	return args.Get(0).(ports.DeliveryRunRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockDeliverymanUoWFactory struct{ mock.Mock }

func (m *MockDeliverymanUoWFactory) Create() commands.DeliverymanUoW {
	args := m.Called()
	return args.Get(0).(commands.DeliverymanUoW)
}

type MockDeliveryRunUoWFactory struct{ mock.Mock }

func (m *MockDeliveryRunUoWFactory) Create() commands.DeliveryRunUoW {
	args := m.Called()
	return args.Get(0).(commands.DeliveryRunUoW)
}

type MockConflictRecorder struct{ mock.Mock }

func (m *MockConflictRecorder) RecordConflict(ctx context.Context, aggregate string) {
	m.Called(ctx, aggregate)
}

// mockedUoW wires a MockUoW returning the given repositories any number of times.
func mockedUoW(orders ports.OrderRepository, deliverymen ports.DeliverymanRepository, runs ports.DeliveryRunRepository) *MockUoW {
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	if orders != nil {
		uow.On("OrderRepository").Return(orders)
	}
	if deliverymen != nil {
		uow.On("DeliverymanRepository").Return(deliverymen)
	}
	if runs != nil {
		uow.On("DeliveryRunRepository").Return(runs)
	}
	return uow
}

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	return newTestOrderWithID(t, kernel.NewUUID())
}

// newTestOrderWithID builds equal orders for tests that reload the same record.
func newTestOrderWithID(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.NewOrderParams{
		ID:             id,
		Number:         "1042",
		CustomerName:   "Maria Souza",
		CustomerPhone:  "+55 11 99999-0000",
		Address:        "Av. Paulista, 1000",
		Items:          []string{"Dipirona 500mg"},
		Price:          kernel.MustMoney("12.50"),
		PharmacyUnitID: kernel.NewUUID(),
		CreatedAt:      now.Add(-time.Hour),
	})
	require.NoError(t, err)
	return o
}

func newTestDeliveryman(t *testing.T) *deliveryman.Deliveryman {
	t.Helper()
	d, err := deliveryman.NewDeliveryman(kernel.NewUUID(), "João Lima", kernel.NewUUID(), "joao@pix.example")
	require.NoError(t, err)
	return d
}

// assignedOrder returns an order in status s assigned to d.
func assignedOrder(t *testing.T, d *deliveryman.Deliveryman, s order.Status) *order.Order {
	t.Helper()
	o := newTestOrder(t)
	require.NoError(t, o.AssignDeliveryman(order.Assignment{
		DeliverymanID:   d.ID(),
		DeliverymanName: d.Name(),
		LicensePlate:    "ABC1D23",
	}, now.Add(-50*time.Minute)))
	if s != order.Pending {
		require.NoError(t, o.ApplyTransition(order.TransitionRequest{
			Target: s,
			Actor:  order.ActorAdmin,
			Reason: "teste",
			At:     now.Add(-40 * time.Minute),
		}, order.PermissivePolicy))
	}
	return o
}
