package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/pkg/errs"

	"gorm.io/gorm"
)

var ErrTipRequiresDelivery = errors.New("tips are only available for delivered orders")

// GetTipKeyQueryHandler reads the chave Pix of the deliveryman assigned to a
// delivered order.
type GetTipKeyQueryHandler struct {
	db          *gorm.DB
	readTimeout time.Duration
}

func NewGetTipKeyQueryHandler(db *gorm.DB, readTimeout time.Duration) GetTipKeyQueryHandler {
	return GetTipKeyQueryHandler{db: db, readTimeout: readTimeout}
}

type tipKeyRow struct {
	Status   string
	Name     sql.NullString
	ChavePix sql.NullString
}

func (h GetTipKeyQueryHandler) Handle(ctx context.Context, query GetTipKeyQuery) (GetTipKeyQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetTipKeyQueryResponse{}, err
	}

	var rows []tipKeyRow
	err := failFast(ctx, h.readTimeout, "get tip key", func(ctx context.Context) error {
		return h.db.WithContext(ctx).Raw(`
			SELECT
				o.status,
				d.name,
				d.chave_pix
			FROM orders o
			LEFT JOIN deliverymen d ON d.id = o.delivery_man
			WHERE o.id = ?
		`, query.OrderID().String()).Scan(&rows).Error
	})
	if err != nil {
		return GetTipKeyQueryResponse{}, err
	}
	if len(rows) == 0 {
		return GetTipKeyQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	row := rows[0]
	if row.Status != order.Delivered.String() {
		return GetTipKeyQueryResponse{}, errs.NewValueIsInvalidErrorWithCause(
			"order",
			fmt.Errorf("%w: status is %s", ErrTipRequiresDelivery, row.Status),
		)
	}
	if !row.ChavePix.Valid || row.ChavePix.String == "" {
		return GetTipKeyQueryResponse{}, errs.NewObjectNotFoundError("chavePix", query.OrderID().String())
	}

	return GetTipKeyQueryResponse{DeliverymanName: row.Name.String, ChavePix: row.ChavePix.String}, nil
}
