// Package deliveryrunrepo persists delivery runs in three tables: the run
// row, its order membership and its append-only checkpoints.
package deliveryrunrepo

import (
	"time"

	"pharmadelivery/internal/core/domain/model/deliveryrun"
	"pharmadelivery/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type DeliveryRunDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeliverymanID  uuid.UUID `gorm:"type:uuid;not null;index"`
	PharmacyUnitID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status         string    `gorm:"not null;index"`
	TotalDistance  float64   `gorm:"not null;default:0"`
	StartedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime:false"`
	CompletedAt    *time.Time

	Orders      []DeliveryRunOrderDTO `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	Checkpoints []CheckpointDTO       `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (DeliveryRunDTO) TableName() string {
	return "delivery_runs"
}

// DeliveryRunOrderDTO is one order claimed by a run.
type DeliveryRunOrderDTO struct {
	RunID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	AddedAt time.Time `gorm:"not null"`
}

func (DeliveryRunOrderDTO) TableName() string {
	return "delivery_run_orders"
}

// CheckpointDTO is one GPS fix. Rows are inserted and never updated.
type CheckpointDTO struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	RunID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Latitude   float64   `gorm:"not null"`
	Longitude  float64   `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null;index"`
}

func (CheckpointDTO) TableName() string {
	return "delivery_run_checkpoints"
}

func fromDomain(run *deliveryrun.DeliveryRun) DeliveryRunDTO {
	dto := DeliveryRunDTO{
		ID:             run.ID().Bytes(),
		DeliverymanID:  run.DeliverymanID().Bytes(),
		PharmacyUnitID: run.PharmacyUnitID().Bytes(),
		Status:         run.Status().String(),
		TotalDistance:  run.TotalDistance(),
		StartedAt:      run.StartedAt(),
		UpdatedAt:      run.UpdatedAt(),
		CompletedAt:    run.CompletedAt(),
	}
	dto.Orders = orderDTOs(dto.ID, run.OrderIDs(), run.UpdatedAt())
	dto.Checkpoints = checkpointDTOs(dto.ID, run.Checkpoints())
	return dto
}

func orderDTOs(runID uuid.UUID, orderIDs []kernel.UUID, at time.Time) []DeliveryRunOrderDTO {
	dtos := make([]DeliveryRunOrderDTO, 0, len(orderIDs))
	for _, id := range orderIDs {
		dtos = append(dtos, DeliveryRunOrderDTO{RunID: runID, OrderID: id.Bytes(), AddedAt: at})
	}
	return dtos
}

func checkpointDTOs(runID uuid.UUID, checkpoints []deliveryrun.Checkpoint) []CheckpointDTO {
	dtos := make([]CheckpointDTO, 0, len(checkpoints))
	for _, c := range checkpoints {
		dtos = append(dtos, CheckpointDTO{
			RunID:      runID,
			Latitude:   c.Latitude(),
			Longitude:  c.Longitude(),
			RecordedAt: c.Timestamp(),
		})
	}
	return dtos
}

func toDomain(dto DeliveryRunDTO) (*deliveryrun.DeliveryRun, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	deliverymanID, err := kernel.UUIDFromBytes(dto.DeliverymanID[:])
	if err != nil {
		return nil, err
	}
	unitID, err := kernel.UUIDFromBytes(dto.PharmacyUnitID[:])
	if err != nil {
		return nil, err
	}
	status, err := deliveryrun.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]kernel.UUID, 0, len(dto.Orders))
	for _, m := range dto.Orders {
		orderID, idErr := kernel.UUIDFromBytes(m.OrderID[:])
		if idErr != nil {
			return nil, idErr
		}
		orderIDs = append(orderIDs, orderID)
	}

	checkpoints := make([]deliveryrun.Checkpoint, 0, len(dto.Checkpoints))
	for _, c := range dto.Checkpoints {
		checkpoint, cpErr := deliveryrun.NewCheckpoint(c.Latitude, c.Longitude, c.RecordedAt)
		if cpErr != nil {
			return nil, cpErr
		}
		checkpoints = append(checkpoints, checkpoint)
	}

	return deliveryrun.RestoreDeliveryRun(deliveryrun.RestoreParams{
		ID:             id,
		DeliverymanID:  deliverymanID,
		PharmacyUnitID: unitID,
		Status:         status,
		OrderIDs:       orderIDs,
		Checkpoints:    checkpoints,
		TotalDistance:  dto.TotalDistance,
		StartedAt:      dto.StartedAt,
		UpdatedAt:      dto.UpdatedAt,
		CompletedAt:    dto.CompletedAt,
	})
}
