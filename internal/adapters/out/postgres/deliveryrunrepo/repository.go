package deliveryrunrepo

import (
	"context"
	"errors"

	"pharmadelivery/internal/core/domain/model/deliveryrun"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDeliveryRunRepository implements ports.DeliveryRunRepository using GORM.
type GormDeliveryRunRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormDeliveryRunRepository(db *gorm.DB, tracker aggregateTracker) *GormDeliveryRunRepository {
	return &GormDeliveryRunRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormDeliveryRunRepository) Add(ctx context.Context, aggregate *deliveryrun.DeliveryRun) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	aggregate.ClearChanges()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the run row guarded by status = 'active' and inserts the
// orders and checkpoints added since load. Existing checkpoint rows are
// never touched, so concurrent fixes for the same run do not conflict.
func (r *GormDeliveryRunRepository) Update(ctx context.Context, aggregate *deliveryrun.DeliveryRun) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&DeliveryRunDTO{}).
			Where("id = ? AND status = ?", dto.ID, deliveryrun.StatusActive.String()).
			Updates(map[string]any{
				"status":         dto.Status,
				"total_distance": dto.TotalDistance,
				"updated_at":     dto.UpdatedAt,
				"completed_at":   dto.CompletedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.missingOrCompleted(tx, aggregate.ID())
		}

		if orders := orderDTOs(dto.ID, aggregate.NewOrderIDs(), aggregate.UpdatedAt()); len(orders) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&orders).Error; err != nil {
				return err
			}
		}
		if checkpoints := checkpointDTOs(dto.ID, aggregate.NewCheckpoints()); len(checkpoints) > 0 {
			if err := tx.Create(&checkpoints).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	aggregate.ClearChanges()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormDeliveryRunRepository) missingOrCompleted(tx *gorm.DB, id kernel.UUID) error {
	var count int64
	if err := tx.Model(&DeliveryRunDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("deliveryRun", id.String())
	}
	return errs.NewValueIsInvalidErrorWithCause("deliveryRun", deliveryrun.ErrDeliveryRunIsCompleted)
}

func (r *GormDeliveryRunRepository) Get(ctx context.Context, id kernel.UUID) (*deliveryrun.DeliveryRun, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryRunDTO
	if err := r.preloaded(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("deliveryRun", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormDeliveryRunRepository) FindByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) ([]*deliveryrun.DeliveryRun, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	membership := r.db.WithContext(ctx).
		Model(&DeliveryRunOrderDTO{}).
		Select("run_id").
		Where("order_id = ?", orderID.Bytes())

	return r.find(r.preloaded(ctx).Where("id IN (?)", membership))
}

func (r *GormDeliveryRunRepository) FindActiveByDeliveryman(
	ctx context.Context,
	deliverymanID kernel.UUID,
) ([]*deliveryrun.DeliveryRun, error) {
	if err := deliverymanID.Validate(); err != nil {
		return nil, err
	}

	return r.find(r.preloaded(ctx).Where(
		"deliveryman_id = ? AND status = ?",
		deliverymanID.Bytes(),
		deliveryrun.StatusActive.String(),
	))
}

func (r *GormDeliveryRunRepository) FindActive(ctx context.Context) ([]*deliveryrun.DeliveryRun, error) {
	return r.find(r.preloaded(ctx).Where("status = ?", deliveryrun.StatusActive.String()))
}

func (r *GormDeliveryRunRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Order("added_at").Order("order_id")
		}).
		Preload("Checkpoints", func(db *gorm.DB) *gorm.DB {
			return db.Order("recorded_at").Order("id")
		})
}

func (r *GormDeliveryRunRepository) find(query *gorm.DB) ([]*deliveryrun.DeliveryRun, error) {
	var dtos []DeliveryRunDTO
	if err := query.Order("updated_at DESC").Find(&dtos).Error; err != nil {
		return nil, err
	}

	runs := make([]*deliveryrun.DeliveryRun, 0, len(dtos))
	for _, dto := range dtos {
		run, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
