package deliverymanrepo

import (
	"context"
	"errors"

	"pharmadelivery/internal/core/domain/model/deliveryman"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDeliverymanRepository implements ports.DeliverymanRepository using GORM.
type GormDeliverymanRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormDeliverymanRepository(db *gorm.DB, tracker aggregateTracker) *GormDeliverymanRepository {
	return &GormDeliverymanRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormDeliverymanRepository) Add(ctx context.Context, aggregate *deliveryman.Deliveryman) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormDeliverymanRepository) Update(ctx context.Context, aggregate *deliveryman.Deliveryman) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&DeliverymanDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("deliveryman", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormDeliverymanRepository) Get(ctx context.Context, id kernel.UUID) (*deliveryman.Deliveryman, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliverymanDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("deliveryman", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
