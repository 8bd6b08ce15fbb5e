package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	auditJob    *DeliveryRunAuditJob
	distanceJob *DeliveryRunDistanceJob
}

// Schedules holds the cron expressions (with seconds) of every job. Empty
// fields fall back to the job defaults.
type Schedules struct {
	Audit    string
	Distance string
}

func NewJobManager(
	contested ContestedOrdersReader,
	distances RunDistanceRefresher,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		auditJob:    NewDeliveryRunAuditJob(contested, schedules.Audit, logger),
		distanceJob: NewDeliveryRunDistanceJob(distances, schedules.Distance, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.auditJob.Start(); err != nil {
		return fmt.Errorf("failed to start delivery run audit job: %w", err)
	}

	if err := jm.distanceJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.auditJob.Stop()
		return fmt.Errorf("failed to start delivery run distance job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ones to finish.
func (jm *JobManager) StopAll() {
	jm.distanceJob.Stop()
	jm.auditJob.Stop()
}
