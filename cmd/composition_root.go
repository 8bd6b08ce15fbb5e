package cmd

import (
	"context"
	"fmt"
	"log/slog"

	httpin "pharmadelivery/internal/adapters/in/http"
	"pharmadelivery/internal/adapters/out/changefeed"
	"pharmadelivery/internal/adapters/out/metrics"
	"pharmadelivery/internal/adapters/out/postgres"
	"pharmadelivery/internal/core/application/realtime"
	"pharmadelivery/internal/core/application/usecases/commands"
	"pharmadelivery/internal/core/application/usecases/queries"
	"pharmadelivery/internal/core/ports"
	"pharmadelivery/internal/jobs"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters to use cases. With postgres, committed
// changes travel through pg_notify and a LISTEN connection into the hub, so
// every replica sees every write. With sqlite the unit of work publishes
// straight into the in-process hub.
type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	logger     *slog.Logger
	uowFactory *postgres.GormUnitOfWorkFactory
	hub        *changefeed.Hub
	listener   *changefeed.Listener
	conflicts  ports.ConflictRecorder
	clock      ports.Clock
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	conflicts, err := metrics.NewConflictRecorder(otel.GetMeterProvider())
	if err != nil {
		return nil, fmt.Errorf("conflict recorder: %w", err)
	}

	c := &CompositionRoot{
		cfg:       cfg,
		gormDB:    gormDB,
		logger:    logger,
		hub:       changefeed.NewHub(changefeed.DefaultBuffer, logger),
		conflicts: conflicts,
		clock:     ports.SystemClock,
	}

	opts := []postgres.Option{postgres.WithLogger(logger)}
	if cfg.DBDriver == DriverPostgres {
		opts = append(opts, postgres.WithNotifyChannel(cfg.ChangeFeedChannel))
		c.listener = changefeed.NewListener(cfg.PostgresDSN(), cfg.ChangeFeedChannel, c.hub, logger)
	} else {
		opts = append(opts, postgres.WithPublisher(c.hub))
	}
	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, opts...)

	return c, nil
}

// RunChangeFeed relays database notifications into the hub until ctx ends.
// It returns at once when the in-process publisher is used.
func (c *CompositionRoot) RunChangeFeed(ctx context.Context) error {
	if c.listener == nil {
		return nil
	}
	return c.listener.Run(ctx)
}

func (c *CompositionRoot) Close() {
	c.hub.Close()
}

func (c *CompositionRoot) retrier() commands.ConflictRetrier {
	return commands.NewConflictRetrier(c.cfg.WriteRetries, c.conflicts, c.logger)
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) deliverymanUoW() commands.DeliverymanUoWFactory {
	return FuncDeliverymanUoWFactory(func() commands.DeliverymanUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) deliveryRunUoW() commands.DeliveryRunUoWFactory {
	return FuncDeliveryRunUoWFactory(func() commands.DeliveryRunUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoW(), c.clock)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.uow(), c.retrier(), c.cfg.TransitionPolicy(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateReactivateOrderCommandHandler() commands.ReactivateOrderCommandHandler {
	return commands.NewReactivateOrderCommandHandler(c.uow(), c.retrier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateAssignDeliverymanCommandHandler() commands.AssignDeliverymanCommandHandler {
	return commands.NewAssignDeliverymanCommandHandler(c.uow(), c.retrier(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateSubmitReviewCommandHandler() commands.SubmitReviewCommandHandler {
	return commands.NewSubmitReviewCommandHandler(c.orderUoW(), c.retrier(), c.clock)
}

func (c *CompositionRoot) CreateDeclineReviewCommandHandler() commands.DeclineReviewCommandHandler {
	return commands.NewDeclineReviewCommandHandler(c.orderUoW(), c.retrier(), c.clock)
}

func (c *CompositionRoot) CreateCreateDeliverymanCommandHandler() commands.CreateDeliverymanCommandHandler {
	return commands.NewCreateDeliverymanCommandHandler(c.deliverymanUoW())
}

func (c *CompositionRoot) CreateStartDeliveryRunCommandHandler() commands.StartDeliveryRunCommandHandler {
	return commands.NewStartDeliveryRunCommandHandler(c.uow(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateAddOrdersToRunCommandHandler() commands.AddOrdersToRunCommandHandler {
	return commands.NewAddOrdersToRunCommandHandler(c.uow(), c.clock)
}

func (c *CompositionRoot) CreateRecordCheckpointCommandHandler() commands.RecordCheckpointCommandHandler {
	return commands.NewRecordCheckpointCommandHandler(c.deliveryRunUoW(), c.clock)
}

func (c *CompositionRoot) CreateCompleteDeliveryRunCommandHandler() commands.CompleteDeliveryRunCommandHandler {
	return commands.NewCompleteDeliveryRunCommandHandler(c.deliveryRunUoW(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateRefreshRunDistancesCommandHandler() commands.RefreshRunDistancesCommandHandler {
	return commands.NewRefreshRunDistancesCommandHandler(c.deliveryRunUoW(), c.logger)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

// CreateGetOrderTrackingQueryHandler reads through repositories of a unit of
// work that is never begun, so reads run on the pool and nothing is tracked.
func (c *CompositionRoot) CreateGetOrderTrackingQueryHandler() queries.GetOrderTrackingQueryHandler {
	reader := c.uowFactory.Create()
	return queries.NewGetOrderTrackingQueryHandler(
		reader.OrderRepository(),
		reader.DeliveryRunRepository(),
		c.cfg.ReadTimeout,
		c.logger,
	)
}

func (c *CompositionRoot) CreateGetTipKeyQueryHandler() queries.GetTipKeyQueryHandler {
	return queries.NewGetTipKeyQueryHandler(c.gormDB, c.cfg.ReadTimeout)
}

func (c *CompositionRoot) CreateGetContestedOrdersQueryHandler() queries.GetContestedOrdersQueryHandler {
	return queries.NewGetContestedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateRealtimeBridge() *realtime.Bridge {
	return realtime.NewBridge(c.hub, c.CreateGetOrderTrackingQueryHandler(), c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateGetContestedOrdersQueryHandler(),
		c.CreateRefreshRunDistancesCommandHandler(),
		c.cfg.Schedules(),
		c.logger,
	)
}

func (c *CompositionRoot) CreateHTTPServer() (*httpin.Server, error) {
	auth, err := httpin.NewAuthenticator(c.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	return httpin.NewServer(httpin.Handlers{
		CreateOrder:       c.CreateCreateOrderCommandHandler(),
		ChangeOrderStatus: c.CreateChangeOrderStatusCommandHandler(),
		ReactivateOrder:   c.CreateReactivateOrderCommandHandler(),
		AssignDeliveryman: c.CreateAssignDeliverymanCommandHandler(),
		SubmitReview:      c.CreateSubmitReviewCommandHandler(),
		DeclineReview:     c.CreateDeclineReviewCommandHandler(),
		CreateDeliveryman: c.CreateCreateDeliverymanCommandHandler(),
		StartDeliveryRun:  c.CreateStartDeliveryRunCommandHandler(),
		AddOrdersToRun:    c.CreateAddOrdersToRunCommandHandler(),
		RecordCheckpoint:  c.CreateRecordCheckpointCommandHandler(),
		CompleteRun:       c.CreateCompleteDeliveryRunCommandHandler(),
		ListOrders:        c.CreateListOrdersQueryHandler(),
		OrderTracking:     c.CreateGetOrderTrackingQueryHandler(),
		TipKey:            c.CreateGetTipKeyQueryHandler(),
		Realtime:          c.CreateRealtimeBridge(),
	}, auth, c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncDeliverymanUoWFactory func() commands.DeliverymanUoW

func (f FuncDeliverymanUoWFactory) Create() commands.DeliverymanUoW {
	return f()
}

type FuncDeliveryRunUoWFactory func() commands.DeliveryRunUoW

func (f FuncDeliveryRunUoWFactory) Create() commands.DeliveryRunUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
