// Package orderrepo persists the order aggregate in the orders table. The
// status history and the item list are JSON columns of the same row, so a
// status change and its ledger entry are always written together.
package orderrepo

import (
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderDTO is the orders row. The is_* flags are generated by the database
// from status and are never written by the application.
type OrderDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Number           string    `gorm:"not null;index"`
	Status           string    `gorm:"not null;index"`
	CreatedAt        time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime:false"`
	LastStatusUpdate time.Time `gorm:"not null"`

	CustomerName  string `gorm:"not null"`
	CustomerPhone string `gorm:"not null"`
	Address       string `gorm:"not null"`
	Latitude      *float64
	Longitude     *float64
	Items         datatypes.JSONSlice[string] `gorm:"not null"`
	PriceNumber   decimal.Decimal             `gorm:"type:numeric(12,2);not null"`
	Price         string                      `gorm:"not null"`

	PharmacyUnitID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	DeliveryMan     *uuid.UUID `gorm:"type:uuid;index"`
	DeliveryManName *string
	LicensePlate    *string
	CancelReason    *string

	Rating          *int
	ReviewComment   *string
	ReviewDate      *time.Time
	ReviewRequested bool `gorm:"not null;default:false"`

	StatusHistory datatypes.JSONSlice[HistoryEntryDTO] `gorm:"not null"`
	Version       int64                                `gorm:"not null;default:0"`

	IsPending       bool `gorm:"->;type:boolean GENERATED ALWAYS AS (status = 'Pendente') STORED"`
	IsInPreparation bool `gorm:"->;type:boolean GENERATED ALWAYS AS (status = 'Em Preparação') STORED"`
	IsInDelivery    bool `gorm:"->;type:boolean GENERATED ALWAYS AS (status = 'A caminho') STORED"`
	IsDelivered     bool `gorm:"->;type:boolean GENERATED ALWAYS AS (status = 'Entregue') STORED"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// HistoryEntryDTO is one element of the status_history JSON array.
type HistoryEntryDTO struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor,omitempty"`
}

func fromDomain(o *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:               o.ID().Bytes(),
		Number:           o.Number(),
		Status:           o.Status().String(),
		CreatedAt:        o.CreatedAt(),
		UpdatedAt:        o.UpdatedAt(),
		LastStatusUpdate: o.LastStatusUpdate(),
		CustomerName:     o.CustomerName(),
		CustomerPhone:    o.CustomerPhone(),
		Address:          o.Address(),
		Items:            datatypes.JSONSlice[string](o.Items()),
		PriceNumber:      o.Price().Amount(),
		Price:            o.Price().String(),
		PharmacyUnitID:   o.PharmacyUnitID().Bytes(),
		CancelReason:     optionalString(o.CancelReason()),
		ReviewRequested:  o.ReviewRequested(),
		Version:          o.Version(),
	}

	if loc, ok := o.Location(); ok {
		lat, lng := loc.Latitude(), loc.Longitude()
		dto.Latitude, dto.Longitude = &lat, &lng
	}
	if a := o.Assignment(); a != nil {
		id := a.DeliverymanID.Bytes()
		dto.DeliveryMan = &id
		dto.DeliveryManName = optionalString(a.DeliverymanName)
		dto.LicensePlate = optionalString(a.LicensePlate)
	}
	if r := o.Review(); r != nil {
		rating, date := r.Rating, r.Date
		dto.Rating = &rating
		dto.ReviewComment = optionalString(r.Comment)
		dto.ReviewDate = &date
	}

	entries := o.History().Entries()
	history := make([]HistoryEntryDTO, 0, len(entries))
	for _, e := range entries {
		history = append(history, HistoryEntryDTO{
			Status:    e.Status().String(),
			Timestamp: e.Timestamp(),
			Reason:    e.Reason(),
			Note:      e.Note(),
			Actor:     e.Actor().String(),
		})
	}
	dto.StatusHistory = history

	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	unitID, err := kernel.UUIDFromBytes(dto.PharmacyUnitID[:])
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	price, err := kernel.NewMoney(dto.PriceNumber)
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.Latitude != nil && dto.Longitude != nil {
		loc, locErr := kernel.NewLocation(*dto.Latitude, *dto.Longitude)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	var assignment *order.Assignment
	if dto.DeliveryMan != nil {
		deliverymanID, idErr := kernel.UUIDFromBytes((*dto.DeliveryMan)[:])
		if idErr != nil {
			return nil, idErr
		}
		assignment = &order.Assignment{
			DeliverymanID:   deliverymanID,
			DeliverymanName: valueOf(dto.DeliveryManName),
			LicensePlate:    valueOf(dto.LicensePlate),
		}
	}

	var review *order.Review
	if dto.Rating != nil {
		review = &order.Review{Rating: *dto.Rating, Comment: valueOf(dto.ReviewComment)}
		if dto.ReviewDate != nil {
			review.Date = dto.ReviewDate.UTC()
		}
	}

	entries := make([]order.HistoryEntry, 0, len(dto.StatusHistory))
	for _, e := range dto.StatusHistory {
		entryStatus, parseErr := order.ParseStatus(e.Status)
		if parseErr != nil {
			return nil, parseErr
		}
		entry, entryErr := order.NewHistoryEntry(entryStatus, e.Timestamp, order.Actor(e.Actor), e.Reason, e.Note)
		if entryErr != nil {
			return nil, entryErr
		}
		entries = append(entries, entry)
	}

	return order.RestoreOrder(order.RestoreParams{
		NewOrderParams: order.NewOrderParams{
			ID:             id,
			Number:         dto.Number,
			CustomerName:   dto.CustomerName,
			CustomerPhone:  dto.CustomerPhone,
			Address:        dto.Address,
			Location:       location,
			Items:          []string(dto.Items),
			Price:          price,
			PharmacyUnitID: unitID,
			CreatedAt:      dto.CreatedAt,
		},
		Status:           status,
		UpdatedAt:        dto.UpdatedAt,
		LastStatusUpdate: dto.LastStatusUpdate,
		Assignment:       assignment,
		CancelReason:     valueOf(dto.CancelReason),
		Review:           review,
		ReviewRequested:  dto.ReviewRequested,
		History:          order.NewHistory(entries...),
		Version:          dto.Version,
	})
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
