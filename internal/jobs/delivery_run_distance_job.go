package jobs

import (
	"context"
	"log/slog"

	"pharmadelivery/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultDistanceSchedule refreshes distances every 30 seconds.
const DefaultDistanceSchedule = "*/30 * * * * *"

type RunDistanceRefresher interface {
	Handle(ctx context.Context, cmd commands.RefreshRunDistancesCommand) (int, error)
}

// DeliveryRunDistanceJob keeps total_distance of active runs current.
type DeliveryRunDistanceJob struct {
	handler  RunDistanceRefresher
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewDeliveryRunDistanceJob(handler RunDistanceRefresher, schedule string, logger *slog.Logger) *DeliveryRunDistanceJob {
	if schedule == "" {
		schedule = DefaultDistanceSchedule
	}
	return &DeliveryRunDistanceJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "delivery_run_distance_job"),
	}
}

func (j *DeliveryRunDistanceJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Delivery run distance job started", "schedule", j.schedule)
	return nil
}

func (j *DeliveryRunDistanceJob) Run(ctx context.Context) {
	if _, err := j.handler.Handle(ctx, commands.NewRefreshRunDistancesCommand()); err != nil {
		j.logger.ErrorContext(ctx, "Delivery run distance job failed", "error", err)
	}
}

func (j *DeliveryRunDistanceJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Delivery run distance job stopped")
}
