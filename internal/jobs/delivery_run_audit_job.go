package jobs

import (
	"context"
	"log/slog"

	"pharmadelivery/internal/core/application/usecases/queries"
	"pharmadelivery/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// DefaultAuditSchedule runs the audit at the start of every minute.
const DefaultAuditSchedule = "0 * * * * *"

type ContestedOrdersReader interface {
	Handle(ctx context.Context, query queries.GetContestedOrdersQuery) ([]queries.GetContestedOrdersQueryResponse, error)
}

// DeliveryRunAuditJob reports orders claimed by more than one active run.
// The tracking view silently picks the most recently updated run; this job
// makes the ambiguity visible to operators.
type DeliveryRunAuditJob struct {
	reader   ContestedOrdersReader
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewDeliveryRunAuditJob(reader ContestedOrdersReader, schedule string, logger *slog.Logger) *DeliveryRunAuditJob {
	if schedule == "" {
		schedule = DefaultAuditSchedule
	}
	return &DeliveryRunAuditJob{
		reader:   reader,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "delivery_run_audit_job"),
	}
}

func (j *DeliveryRunAuditJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Delivery run audit job started", "schedule", j.schedule)
	return nil
}

// Run performs one audit pass and returns the number of contested orders.
func (j *DeliveryRunAuditJob) Run(ctx context.Context) int {
	contested, err := j.reader.Handle(ctx, queries.NewGetContestedOrdersQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Delivery run audit failed", "error", err)
		return 0
	}

	logged := 0
	for _, c := range contested {
		if len(c.RunIDs) == 0 {
			continue
		}
		runIDs := make([]string, 0, len(c.RunIDs))
		for _, id := range c.RunIDs {
			runIDs = append(runIDs, id.String())
		}
		ambiguity := errs.NewCorrelationAmbiguityError(c.OrderID.String(), len(runIDs), runIDs[0])
		j.logger.WarnContext(ctx, "Order claimed by several active runs",
			"error", ambiguity,
			"orderId", c.OrderID.String(),
			"runIds", runIDs,
		)
		logged++
	}
	return logged
}

func (j *DeliveryRunAuditJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Delivery run audit job stopped")
}
