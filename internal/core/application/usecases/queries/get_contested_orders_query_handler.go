package queries

import (
	"context"

	"pharmadelivery/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetContestedOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetContestedOrdersQueryHandler(db *gorm.DB) GetContestedOrdersQueryHandler {
	return GetContestedOrdersQueryHandler{db: db}
}

func (h GetContestedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetContestedOrdersQuery,
) ([]GetContestedOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			m.order_id,
			m.run_id
		FROM delivery_run_orders m
		JOIN delivery_runs r ON r.id = m.run_id
		WHERE r.status = 'active'
		  AND m.order_id IN (
			SELECT m2.order_id
			FROM delivery_run_orders m2
			JOIN delivery_runs r2 ON r2.id = m2.run_id
			WHERE r2.status = 'active'
			GROUP BY m2.order_id
			HAVING COUNT(*) > 1
		  )
		ORDER BY m.order_id, r.updated_at DESC
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contested := make([]GetContestedOrdersQueryResponse, 0)
	for rows.Next() {
		var orderID, runID uuid.UUID
		if err = rows.Scan(&orderID, &runID); err != nil {
			return nil, err
		}

		oid, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return nil, idErr
		}
		rid, idErr := kernel.UUIDFromBytes(runID[:])
		if idErr != nil {
			return nil, idErr
		}

		last := len(contested) - 1
		if last < 0 || !contested[last].OrderID.IsEqual(oid) {
			contested = append(contested, GetContestedOrdersQueryResponse{OrderID: oid})
			last++
		}
		contested[last].RunIDs = append(contested[last].RunIDs, rid)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return contested, nil
}
