// Package postgres provides the GORM implementation of the unit of work and
// the schema migration for all persisted aggregates.
//
// A unit of work wraps one database transaction. Every aggregate written
// through its repositories is tracked, and on Commit a change notification
// is emitted per aggregate:
//
//   - with a notify channel on PostgreSQL, pg_notify runs inside the
//     transaction, so listeners only see changes that actually committed
//   - with a publisher, changes are handed to it after the commit succeeded
//
// A rolled back unit of work emits nothing.
package postgres

import (
	"context"
	"encoding/json"
	"log/slog"

	"pharmadelivery/internal/adapters/out/postgres/deliverymanrepo"
	"pharmadelivery/internal/adapters/out/postgres/deliveryrunrepo"
	"pharmadelivery/internal/adapters/out/postgres/orderrepo"
	"pharmadelivery/internal/core/domain/model/deliveryrun"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/ports"

	"gorm.io/gorm"
)

// MaxNotifyPayload stays under the 8000 byte pg_notify limit.
const MaxNotifyPayload = 7900

type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

type GormUnitOfWorkFactory struct {
	db            *gorm.DB
	notifyChannel string
	publisher     ports.ChangePublisher
	logger        *slog.Logger
}

type Option func(*GormUnitOfWorkFactory)

// WithNotifyChannel makes Commit issue pg_notify on channel. Ignored on
// dialects other than postgres.
func WithNotifyChannel(channel string) Option {
	return func(f *GormUnitOfWorkFactory) {
		f.notifyChannel = channel
	}
}

// WithPublisher makes Commit hand changes to publisher after the commit.
func WithPublisher(publisher ports.ChangePublisher) Option {
	return func(f *GormUnitOfWorkFactory) {
		f.publisher = publisher
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *GormUnitOfWorkFactory) {
		f.logger = logger
	}
}

func NewGormUnitOfWorkFactory(db *gorm.DB, opts ...Option) *GormUnitOfWorkFactory {
	f := &GormUnitOfWorkFactory{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "unit_of_work")
	return f
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		factory:           f,
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

type GormUnitOfWork struct {
	factory           *GormUnitOfWorkFactory
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	changes := uow.changes()
	if err := uow.notify(changes); err != nil {
		_ = uow.tx.Rollback().Error
		uow.tx = nil
		uow.trackedAggregates = uow.trackedAggregates[:0]
		return err
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	if err != nil {
		return err
	}

	if uow.factory.publisher != nil {
		for _, change := range changes {
			uow.factory.publisher.Publish(ctx, change)
		}
	}
	return nil
}

func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) DeliverymanRepository() ports.DeliverymanRepository {
	return deliverymanrepo.NewGormDeliverymanRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) DeliveryRunRepository() ports.DeliveryRunRepository {
	return deliveryrunrepo.NewGormDeliveryRunRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// changes builds one notification per written order or run. Repeated writes
// of the same aggregate keep the last state. Deliverymen are not observed.
func (uow *GormUnitOfWork) changes() []ports.Change {
	changes := make([]ports.Change, 0, len(uow.trackedAggregates))
	index := make(map[string]int, len(uow.trackedAggregates))

	for _, tracked := range uow.trackedAggregates {
		var change ports.Change
		switch a := tracked.Aggregate.(type) {
		case *order.Order:
			change = ports.Change{
				Kind:    ports.ChangeKindOrder,
				ID:      a.ID().String(),
				Version: a.Version(),
			}
		case *deliveryrun.DeliveryRun:
			orderIDs := a.OrderIDs()
			ids := make([]string, 0, len(orderIDs))
			for _, id := range orderIDs {
				ids = append(ids, id.String())
			}
			change = ports.Change{
				Kind:     ports.ChangeKindDeliveryRun,
				ID:       a.ID().String(),
				OrderIDs: ids,
			}
		default:
			continue
		}

		key := string(change.Kind) + ":" + change.ID
		if i, ok := index[key]; ok {
			changes[i] = change
			continue
		}
		index[key] = len(changes)
		changes = append(changes, change)
	}
	return changes
}

func (uow *GormUnitOfWork) notify(changes []ports.Change) error {
	channel := uow.factory.notifyChannel
	if channel == "" || uow.db.Dialector.Name() != "postgres" {
		return nil
	}

	for _, change := range changes {
		payload, err := json.Marshal(change)
		if err != nil {
			return err
		}
		if len(payload) > MaxNotifyPayload {
			uow.factory.logger.Warn("Change payload too large, sending resync",
				"kind", change.Kind, "id", change.ID, "size", len(payload))
			payload, _ = json.Marshal(ports.Change{Resync: true})
		}
		if err := uow.tx.Exec("SELECT pg_notify(?, ?)", channel, string(payload)).Error; err != nil {
			return err
		}
	}
	return nil
}

// Migrate creates or updates the tables of every aggregate.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&deliverymanrepo.DeliverymanDTO{},
		&deliveryrunrepo.DeliveryRunDTO{},
		&deliveryrunrepo.DeliveryRunOrderDTO{},
		&deliveryrunrepo.CheckpointDTO{},
	)
}
