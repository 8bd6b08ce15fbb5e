package http

import (
	"net/http"
	"time"

	"pharmadelivery/internal/core/application/usecases/commands"
	"pharmadelivery/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// StartDeliveryRun handles POST /api/v1/runs.
func (s *Server) StartDeliveryRun(c echo.Context) error {
	if _, err := requirePrincipal(c); err != nil {
		return s.fail(c, err)
	}

	var req StartRunRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	runID, err := parseOptionalID("id", req.ID)
	if err != nil {
		return s.fail(c, err)
	}
	deliverymanID, err := parseID("deliverymanId", req.DeliverymanID)
	if err != nil {
		return s.fail(c, err)
	}
	orderIDs, err := parseIDs("orderIds", req.OrderIDs)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewStartDeliveryRunCommand(runID, deliverymanID, orderIDs)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.StartDeliveryRun.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, CreatedResponse{ID: runID.String()})
}

// AddOrdersToRun handles POST /api/v1/runs/:id/orders.
func (s *Server) AddOrdersToRun(c echo.Context) error {
	if _, err := requirePrincipal(c); err != nil {
		return s.fail(c, err)
	}
	runID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	var req AddOrdersRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	orderIDs, err := parseIDs("orderIds", req.OrderIDs)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewAddOrdersToRunCommand(runID, orderIDs)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.AddOrdersToRun.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RecordCheckpoint handles POST /api/v1/runs/:id/checkpoints. A missing
// timestamp is stamped with server time.
func (s *Server) RecordCheckpoint(c echo.Context) error {
	if _, err := requirePrincipal(c); err != nil {
		return s.fail(c, err)
	}
	runID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	var req CheckpointRequest
	if err = c.Bind(&req); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	var at time.Time
	if req.Timestamp != nil {
		at = *req.Timestamp
	}

	cmd, err := commands.NewRecordCheckpointCommand(runID, req.Latitude, req.Longitude, at)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.RecordCheckpoint.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.NoContent(http.StatusAccepted)
}

// CompleteDeliveryRun handles POST /api/v1/runs/:id/completion.
func (s *Server) CompleteDeliveryRun(c echo.Context) error {
	if _, err := requirePrincipal(c); err != nil {
		return s.fail(c, err)
	}
	runID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCompleteDeliveryRunCommand(runID)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.CompleteRun.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
