// Package http exposes the order lifecycle over a JSON API built on echo.
//
// Staff and courier actions carry a bearer JWT whose role claim becomes the
// order.Actor of the command. Customer facing endpoints (tracking with the
// customer view, review, tip) are public.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"pharmadelivery/internal/core/application/realtime"
	"pharmadelivery/internal/core/application/usecases/commands"
	"pharmadelivery/internal/core/application/usecases/queries"
	"pharmadelivery/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// CommandHandler is any use case that only reports failure.
type CommandHandler[C any] interface {
	Handle(ctx context.Context, cmd C) error
}

// ResultHandler is any use case that returns a result.
type ResultHandler[R any, T any] interface {
	Handle(ctx context.Context, request R) (T, error)
}

// Subscriber opens realtime snapshot subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, orderID kernel.UUID, view queries.View) (*realtime.Subscription, error)
}

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	// Command handlers
	CreateOrder       CommandHandler[commands.CreateOrderCommand]
	ChangeOrderStatus CommandHandler[commands.ChangeOrderStatusCommand]
	ReactivateOrder   CommandHandler[commands.ReactivateOrderCommand]
	AssignDeliveryman CommandHandler[commands.AssignDeliverymanCommand]
	SubmitReview      ResultHandler[commands.SubmitReviewCommand, bool]
	DeclineReview     ResultHandler[commands.DeclineReviewCommand, bool]
	CreateDeliveryman CommandHandler[commands.CreateDeliverymanCommand]
	StartDeliveryRun  CommandHandler[commands.StartDeliveryRunCommand]
	AddOrdersToRun    CommandHandler[commands.AddOrdersToRunCommand]
	RecordCheckpoint  CommandHandler[commands.RecordCheckpointCommand]
	CompleteRun       CommandHandler[commands.CompleteDeliveryRunCommand]

	// Query handlers
	ListOrders    ResultHandler[queries.ListOrdersQuery, []queries.ListOrdersQueryResponse]
	OrderTracking ResultHandler[queries.GetOrderTrackingQuery, queries.OrderSnapshot]
	TipKey        ResultHandler[queries.GetTipKeyQuery, queries.GetTipKeyQueryResponse]

	Realtime Subscriber
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers  Handlers
	auth      Authenticator
	validator *RequestValidator
	logger    *slog.Logger
}

func NewServer(handlers Handlers, auth Authenticator, logger *slog.Logger) (*Server, error) {
	validator, err := NewRequestValidator()
	if err != nil {
		return nil, err
	}
	return &Server{
		handlers:  handlers,
		auth:      auth,
		validator: validator,
		logger:    logger.With("component", "http_server"),
	}, nil
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", s.validator.Document())
	})

	api := e.Group("/api/v1", s.auth.Middleware(), s.validator.Middleware())

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/transitions", s.ChangeOrderStatus)
	api.POST("/orders/:id/reactivation", s.ReactivateOrder)
	api.PUT("/orders/:id/deliveryman", s.AssignDeliveryman)
	api.POST("/orders/:id/review", s.SubmitReview)
	api.POST("/orders/:id/review/decline", s.DeclineReview)
	api.GET("/orders/:id/tip", s.GetTipKey)
	api.GET("/orders/:id/stream", s.StreamOrder)

	api.POST("/deliverymen", s.CreateDeliveryman)

	api.POST("/runs", s.StartDeliveryRun)
	api.POST("/runs/:id/orders", s.AddOrdersToRun)
	api.POST("/runs/:id/checkpoints", s.RecordCheckpoint)
	api.POST("/runs/:id/completion", s.CompleteDeliveryRun)
}

// NewEcho returns an echo instance with the routes of s mounted.
func (s *Server) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	s.Register(e)
	return e
}
