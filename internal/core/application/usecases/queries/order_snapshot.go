package queries

import (
	"fmt"
	"time"

	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/domain/services"
	"pharmadelivery/internal/pkg/errs"
)

// View selects which fields of an order an observer may see.
type View string

const (
	// ViewCustomer hides history actors and notes, the deliveryman id and the
	// pharmacy unit.
	ViewCustomer View = "customer"
	// ViewCourier hides the review.
	ViewCourier View = "courier"
	// ViewAdmin shows everything.
	ViewAdmin View = "admin"
)

func ParseView(s string) (View, error) {
	v := View(s)
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

func (v View) Validate() error {
	switch v {
	case ViewCustomer, ViewCourier, ViewAdmin:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("view", fmt.Errorf("%q is not a known view", string(v)))
	}
}

func (v View) String() string {
	return string(v)
}

// OrderSnapshot is the full, view-projected state of an order as served to
// readers and pushed to subscribers.
type OrderSnapshot struct {
	ID               string    `json:"id"`
	Number           string    `json:"number"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	LastStatusUpdate time.Time `json:"lastStatusUpdate"`

	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	Address       string        `json:"address"`
	Location      *LocationView `json:"location"`
	HasLocation   bool          `json:"hasLocation"`
	Items         []string      `json:"items"`
	PriceNumber   string        `json:"priceNumber"`
	Price         string        `json:"price"`

	PharmacyUnitID  string `json:"pharmacyUnitId,omitempty"`
	DeliveryMan     string `json:"deliveryMan,omitempty"`
	DeliveryManName string `json:"deliveryManName,omitempty"`
	LicensePlate    string `json:"licensePlate,omitempty"`
	CancelReason    string `json:"cancelReason,omitempty"`

	Rating          *int       `json:"rating,omitempty"`
	ReviewComment   string     `json:"reviewComment,omitempty"`
	ReviewDate      *time.Time `json:"reviewDate,omitempty"`
	ReviewRequested bool       `json:"reviewRequested"`
	ReviewEligible  bool       `json:"reviewEligible"`

	IsPending       bool `json:"isPending"`
	IsInPreparation bool `json:"isInPreparation"`
	IsInDelivery    bool `json:"isInDelivery"`
	IsDelivered     bool `json:"isDelivered"`
	IsCancelled     bool `json:"isCancelled"`

	StatusHistory []HistoryEntryView `json:"statusHistory"`
	Timing        TimingView         `json:"timing"`
	Run           *RunView           `json:"run"`

	Version int64 `json:"version"`
}

type LocationView struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type HistoryEntryView struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor,omitempty"`
}

type TimingView struct {
	HasData      bool        `json:"hasData"`
	Stages       []StageView `json:"stages"`
	TotalMinutes int         `json:"totalMinutes"`
	Total        string      `json:"total"`
}

type StageView struct {
	Status  string `json:"status"`
	Minutes int    `json:"minutes"`
	Label   string `json:"label"`
}

// RunView is the delivery run correlated with the order.
type RunView struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	Active         bool            `json:"active"`
	Position       *CheckpointView `json:"position"`
	PositionKnown  bool            `json:"positionKnown"`
	DistanceMeters float64         `json:"distanceMeters"`
	Ambiguous      bool            `json:"ambiguous"`
}

type CheckpointView struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderSnapshot projects an order with its derived timing and run
// correlation for view.
func NewOrderSnapshot(
	o *order.Order,
	timing services.DeliveryTiming,
	corr services.Correlation,
	view View,
) OrderSnapshot {
	s := OrderSnapshot{
		ID:               o.ID().String(),
		Number:           o.Number(),
		Status:           o.Status().String(),
		CreatedAt:        o.CreatedAt(),
		UpdatedAt:        o.UpdatedAt(),
		LastStatusUpdate: o.LastStatusUpdate(),
		CustomerName:     o.CustomerName(),
		CustomerPhone:    o.CustomerPhone(),
		Address:          o.Address(),
		Items:            o.Items(),
		PriceNumber:      o.Price().Amount().StringFixed(2),
		Price:            o.Price().String(),
		PharmacyUnitID:   o.PharmacyUnitID().String(),
		CancelReason:     o.CancelReason(),
		ReviewRequested:  o.ReviewRequested(),
		ReviewEligible:   o.ReviewEligible(),
		IsPending:        o.IsPending(),
		IsInPreparation:  o.IsInPreparation(),
		IsInDelivery:     o.IsInDelivery(),
		IsDelivered:      o.IsDelivered(),
		IsCancelled:      o.IsCancelled(),
		Timing:           newTimingView(timing),
		Run:              newRunView(corr),
		Version:          o.Version(),
	}

	if loc, ok := o.Location(); ok {
		s.Location = &LocationView{Latitude: loc.Latitude(), Longitude: loc.Longitude()}
		s.HasLocation = true
	}
	if a := o.Assignment(); a != nil {
		s.DeliveryMan = a.DeliverymanID.String()
		s.DeliveryManName = a.DeliverymanName
		s.LicensePlate = a.LicensePlate
	}
	if r := o.Review(); r != nil {
		rating := r.Rating
		date := r.Date
		s.Rating = &rating
		s.ReviewComment = r.Comment
		s.ReviewDate = &date
	}

	entries := o.History().Entries()
	s.StatusHistory = make([]HistoryEntryView, 0, len(entries))
	for _, e := range entries {
		s.StatusHistory = append(s.StatusHistory, HistoryEntryView{
			Status:    e.Status().String(),
			Timestamp: e.Timestamp(),
			Reason:    e.Reason(),
			Note:      e.Note(),
			Actor:     e.Actor().String(),
		})
	}

	return s.project(view)
}

func (s OrderSnapshot) project(view View) OrderSnapshot {
	switch view {
	case ViewCustomer:
		s.PharmacyUnitID = ""
		s.DeliveryMan = ""
		history := make([]HistoryEntryView, len(s.StatusHistory))
		for i, e := range s.StatusHistory {
			e.Actor = ""
			e.Note = ""
			history[i] = e
		}
		s.StatusHistory = history
	case ViewCourier:
		s.Rating = nil
		s.ReviewComment = ""
		s.ReviewDate = nil
	case ViewAdmin:
	}
	return s
}

func newTimingView(t services.DeliveryTiming) TimingView {
	v := TimingView{
		HasData: t.HasData,
		Stages:  make([]StageView, 0, len(t.StageOrder)),
	}
	if !t.HasData {
		v.Total = "no data"
		return v
	}
	for _, status := range t.StageOrder {
		d := t.Stages[status]
		v.Stages = append(v.Stages, StageView{
			Status:  status.String(),
			Minutes: services.Minutes(d),
			Label:   services.FormatDuration(d),
		})
	}
	v.TotalMinutes = t.TotalMinutes()
	v.Total = services.FormatDuration(t.Total)
	return v
}

func newRunView(corr services.Correlation) *RunView {
	if !corr.Found() {
		return nil
	}
	v := &RunView{
		ID:             corr.Run.ID().String(),
		Status:         corr.Run.Status().String(),
		Active:         corr.Active,
		DistanceMeters: corr.DistanceMeters,
		Ambiguous:      corr.Ambiguous(),
	}
	if corr.Position != nil {
		v.Position = &CheckpointView{
			Latitude:  corr.Position.Latitude(),
			Longitude: corr.Position.Longitude(),
			Timestamp: corr.Position.Timestamp(),
		}
		v.PositionKnown = true
	}
	return v
}

// RunID returns the id of the correlated run, or "".
func (s OrderSnapshot) RunID() string {
	if s.Run == nil {
		return ""
	}
	return s.Run.ID
}
