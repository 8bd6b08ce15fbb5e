package http

import (
	"encoding/json"
	"strings"
	"time"

	"pharmadelivery/internal/core/application/usecases/queries"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/pkg/errs"
)

type CreateOrderRequest struct {
	ID             string      `json:"id"`
	Number         string      `json:"number"`
	CustomerName   string      `json:"customerName"`
	CustomerPhone  string      `json:"customerPhone"`
	Address        string      `json:"address"`
	Latitude       *float64    `json:"latitude"`
	Longitude      *float64    `json:"longitude"`
	Items          []string    `json:"items"`
	PriceNumber    json.Number `json:"priceNumber"`
	PharmacyUnitID string      `json:"pharmacyUnitId"`
}

type TransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	Note   string `json:"note"`
}

type ReactivationRequest struct {
	Note string `json:"note"`
}

type AssignDeliverymanRequest struct {
	DeliverymanID string `json:"deliverymanId"`
	LicensePlate  string `json:"licensePlate"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewResponse struct {
	Applied bool `json:"applied"`
}

type TipResponse struct {
	DeliverymanName string `json:"deliverymanName"`
	ChavePix        string `json:"chavePix"`
}

type CreateDeliverymanRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PharmacyUnitID string `json:"pharmacyUnitId"`
	ChavePix       string `json:"chavePix"`
}

type StartRunRequest struct {
	ID            string   `json:"id"`
	DeliverymanID string   `json:"deliverymanId"`
	OrderIDs      []string `json:"orderIds"`
}

type AddOrdersRequest struct {
	OrderIDs []string `json:"orderIds"`
}

type CheckpointRequest struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timestamp *time.Time `json:"timestamp"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type OrderListItem struct {
	ID               string    `json:"id"`
	Number           string    `json:"number"`
	Status           string    `json:"status"`
	CustomerName     string    `json:"customerName"`
	Address          string    `json:"address"`
	HasLocation      bool      `json:"hasLocation"`
	Price            string    `json:"price"`
	DeliveryManName  string    `json:"deliveryManName,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	LastStatusUpdate time.Time `json:"lastStatusUpdate"`
}

func newOrderListItems(rows []queries.ListOrdersQueryResponse) []OrderListItem {
	items := make([]OrderListItem, len(rows))
	for i, row := range rows {
		items[i] = OrderListItem{
			ID:               row.ID.String(),
			Number:           row.Number,
			Status:           row.Status.String(),
			CustomerName:     row.CustomerName,
			Address:          row.Address,
			HasLocation:      row.HasLocation,
			Price:            row.Price,
			DeliveryManName:  row.DeliverymanName,
			CreatedAt:        row.CreatedAt,
			LastStatusUpdate: row.LastStatusUpdate,
		}
	}
	return items
}

func parseID(field, raw string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(strings.TrimSpace(raw))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(field, err)
	}
	return id, nil
}

// parseOptionalID generates an id when the client did not choose one.
func parseOptionalID(field, raw string) (kernel.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return kernel.NewUUID(), nil
	}
	return parseID(field, raw)
}

func parseIDs(field string, raw []string) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(field, r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseOptionalTime(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(field, err)
	}
	return &t, nil
}
