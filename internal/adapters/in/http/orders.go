package http

import (
	"net/http"

	"pharmadelivery/internal/core/application/usecases/commands"
	"pharmadelivery/internal/core/application/usecases/queries"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/ports"
	"pharmadelivery/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /api/v1/orders - places a new order.
func (s *Server) CreateOrder(c echo.Context) error {
	p, err := requireStaff(c, "create an order")
	if err != nil {
		return s.fail(c, err)
	}

	var req CreateOrderRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	orderID, err := parseOptionalID("id", req.ID)
	if err != nil {
		return s.fail(c, err)
	}
	unitID, err := parseID("pharmacyUnitId", req.PharmacyUnitID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderParams{
		OrderID:        orderID,
		Number:         req.Number,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Address:        req.Address,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Items:          req.Items,
		Price:          req.PriceNumber.String(),
		PharmacyUnitID: unitID,
		Actor:          p.Actor,
	})
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.CreateOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, CreatedResponse{ID: orderID.String()})
}

// ListOrders handles GET /api/v1/orders - the back-office listing, newest first.
func (s *Server) ListOrders(c echo.Context) error {
	if _, err := requireStaff(c, "list orders"); err != nil {
		return s.fail(c, err)
	}

	var (
		filter ports.OrderFilter
		err    error
	)
	if filter.From, err = parseOptionalTime("from", c.QueryParam("from")); err != nil {
		return s.fail(c, err)
	}
	if filter.To, err = parseOptionalTime("to", c.QueryParam("to")); err != nil {
		return s.fail(c, err)
	}
	if raw := c.QueryParam("pharmacyUnitId"); raw != "" {
		id, idErr := parseID("pharmacyUnitId", raw)
		if idErr != nil {
			return s.fail(c, idErr)
		}
		filter.PharmacyUnitID = &id
	}
	if raw := c.QueryParam("deliverymanId"); raw != "" {
		id, idErr := parseID("deliverymanId", raw)
		if idErr != nil {
			return s.fail(c, idErr)
		}
		filter.DeliverymanID = &id
	}
	if raw := c.QueryParam("status"); raw != "" {
		status, statusErr := order.ParseStatus(raw)
		if statusErr != nil {
			return s.fail(c, statusErr)
		}
		filter.Status = &status
	}

	query, err := queries.NewListOrdersQuery(filter)
	if err != nil {
		return s.fail(c, err)
	}

	rows, err := s.handlers.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, newOrderListItems(rows))
}

// GetOrder handles GET /api/v1/orders/:id - one order with timing and run
// correlation, projected for the requested view.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	view, err := resolveView(c)
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetOrderTrackingQuery(orderID, view)
	if err != nil {
		return s.fail(c, err)
	}

	snapshot, err := s.handlers.OrderTracking.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, snapshot)
}

// ChangeOrderStatus handles POST /api/v1/orders/:id/transitions.
func (s *Server) ChangeOrderStatus(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return s.fail(c, err)
	}
	orderID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	var req TransitionRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, target, p.Actor, req.Reason, req.Note)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.ChangeOrderStatus.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ReactivateOrder handles POST /api/v1/orders/:id/reactivation - the staff
// override that reverses a cancellation.
func (s *Server) ReactivateOrder(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return s.fail(c, err)
	}
	orderID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	var req ReactivationRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	cmd, err := commands.NewReactivateOrderCommand(orderID, p.Actor, req.Note)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.ReactivateOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AssignDeliveryman handles PUT /api/v1/orders/:id/deliveryman.
func (s *Server) AssignDeliveryman(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return s.fail(c, err)
	}
	orderID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	var req AssignDeliverymanRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	deliverymanID, err := parseID("deliverymanId", req.DeliverymanID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewAssignDeliverymanCommand(orderID, deliverymanID, req.LicensePlate, p.Actor)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.AssignDeliveryman.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SubmitReview handles POST /api/v1/orders/:id/review. Repeating it is a
// no-op reported as applied=false.
func (s *Server) SubmitReview(c echo.Context) error {
	orderID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	var req ReviewRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	cmd, err := commands.NewSubmitReviewCommand(orderID, req.Rating, req.Comment)
	if err != nil {
		return s.fail(c, err)
	}

	applied, err := s.handlers.SubmitReview.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, ReviewResponse{Applied: applied})
}

// DeclineReview handles POST /api/v1/orders/:id/review/decline.
func (s *Server) DeclineReview(c echo.Context) error {
	orderID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewDeclineReviewCommand(orderID)
	if err != nil {
		return s.fail(c, err)
	}

	applied, err := s.handlers.DeclineReview.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, ReviewResponse{Applied: applied})
}

// GetTipKey handles GET /api/v1/orders/:id/tip.
func (s *Server) GetTipKey(c echo.Context) error {
	orderID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetTipKeyQuery(orderID)
	if err != nil {
		return s.fail(c, err)
	}

	tip, err := s.handlers.TipKey.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, TipResponse{DeliverymanName: tip.DeliverymanName, ChavePix: tip.ChavePix})
}

// CreateDeliveryman handles POST /api/v1/deliverymen.
func (s *Server) CreateDeliveryman(c echo.Context) error {
	if _, err := requireStaff(c, "create a deliveryman"); err != nil {
		return s.fail(c, err)
	}

	var req CreateDeliverymanRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	deliverymanID, err := parseOptionalID("id", req.ID)
	if err != nil {
		return s.fail(c, err)
	}
	unitID, err := parseID("pharmacyUnitId", req.PharmacyUnitID)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateDeliverymanCommand(deliverymanID, req.Name, unitID, req.ChavePix)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.CreateDeliveryman.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, CreatedResponse{ID: deliverymanID.String()})
}

// resolveView picks the projection for a tracking read. Without an explicit
// view the caller's role decides. The customer view is public, the courier
// view needs any token and the admin view needs staff.
func resolveView(c echo.Context) (queries.View, error) {
	p, authenticated := principalFrom(c)

	raw := c.QueryParam("view")
	if raw == "" {
		switch {
		case !authenticated:
			return queries.ViewCustomer, nil
		case p.Actor == order.ActorCourier:
			return queries.ViewCourier, nil
		default:
			return queries.ViewAdmin, nil
		}
	}

	view, err := queries.ParseView(raw)
	if err != nil {
		return "", err
	}

	switch view {
	case queries.ViewCourier:
		if !authenticated {
			return "", ErrUnauthorized
		}
	case queries.ViewAdmin:
		if !authenticated {
			return "", ErrUnauthorized
		}
		if p.Actor == order.ActorCourier {
			return "", errs.NewForbiddenError(p.Actor.String(), "read the admin view")
		}
	case queries.ViewCustomer:
	}
	return view, nil
}
