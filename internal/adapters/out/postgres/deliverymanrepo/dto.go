// Package deliverymanrepo persists deliverymen and their duty state.
package deliverymanrepo

import (
	"pharmadelivery/internal/core/domain/model/deliveryman"
	"pharmadelivery/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type DeliverymanDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name           string     `gorm:"not null"`
	PharmacyUnitID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status         string     `gorm:"not null;index"`
	OrderID        *uuid.UUID `gorm:"type:uuid;index"`
	ChavePix       string
}

func (DeliverymanDTO) TableName() string {
	return "deliverymen"
}

func fromDomain(d *deliveryman.Deliveryman) DeliverymanDTO {
	var orderID *uuid.UUID
	if id := d.OrderID(); id != nil {
		raw := id.Bytes()
		orderID = &raw
	}

	return DeliverymanDTO{
		ID:             d.ID().Bytes(),
		Name:           d.Name(),
		PharmacyUnitID: d.PharmacyUnitID().Bytes(),
		Status:         d.Status().String(),
		OrderID:        orderID,
		ChavePix:       d.ChavePix(),
	}
}

func toDomain(dto DeliverymanDTO) (*deliveryman.Deliveryman, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	unitID, err := kernel.UUIDFromBytes(dto.PharmacyUnitID[:])
	if err != nil {
		return nil, err
	}
	status, err := deliveryman.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var orderID *kernel.UUID
	if dto.OrderID != nil {
		oID, idErr := kernel.UUIDFromBytes((*dto.OrderID)[:])
		if idErr != nil {
			return nil, idErr
		}
		orderID = &oID
	}

	return deliveryman.RestoreDeliveryman(id, dto.Name, unitID, status, orderID, dto.ChavePix)
}
