package queries

import (
	"context"
	"database/sql"
	"time"

	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListOrdersQueryHandler reads the order listing straight from the orders
// table without loading the aggregates.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

type listOrdersRow struct {
	ID               uuid.UUID
	Number           string
	Status           string
	CustomerName     string
	Address          string
	Latitude         sql.NullFloat64
	Price            string
	DeliveryManName  sql.NullString
	CreatedAt        time.Time
	LastStatusUpdate time.Time
}

func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]ListOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	filter := query.Filter()
	tx := h.db.WithContext(ctx).
		Table("orders").
		Select(`id, number, status, customer_name, address, latitude, price,
			delivery_man_name, created_at, last_status_update`)

	if filter.From != nil {
		tx = tx.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		tx = tx.Where("created_at <= ?", filter.To.UTC())
	}
	if filter.PharmacyUnitID != nil {
		tx = tx.Where("pharmacy_unit_id = ?", filter.PharmacyUnitID.String())
	}
	if filter.DeliverymanID != nil {
		tx = tx.Where("delivery_man = ?", filter.DeliverymanID.String())
	}
	if filter.Status != nil {
		tx = tx.Where("status = ?", filter.Status.String())
	}

	var rows []listOrdersRow
	if err := tx.Order("created_at DESC").Order("id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]ListOrdersQueryResponse, 0, len(rows))
	for _, row := range rows {
		id, err := kernel.UUIDFromBytes(row.ID[:])
		if err != nil {
			return nil, err
		}
		status, err := order.ParseStatus(row.Status)
		if err != nil {
			return nil, err
		}

		orders = append(orders, ListOrdersQueryResponse{
			ID:               id,
			Number:           row.Number,
			Status:           status,
			CustomerName:     row.CustomerName,
			Address:          row.Address,
			HasLocation:      row.Latitude.Valid,
			Price:            row.Price,
			DeliverymanName:  row.DeliveryManName.String,
			CreatedAt:        row.CreatedAt.UTC(),
			LastStatusUpdate: row.LastStatusUpdate.UTC(),
		})
	}

	return orders, nil
}
