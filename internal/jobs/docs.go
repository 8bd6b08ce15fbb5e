// Package jobs provides scheduled background tasks using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. DeliveryRunAuditJob - every minute, logs each order claimed by more than
// one active delivery run as a correlation ambiguity
// 2. DeliveryRunDistanceJob - every 30 seconds, stores the live distance of
// active runs in total_distance
//
// # Usage
//
//	jobManager := jobs.NewJobManager(contestedHandler, distanceHandler, jobs.Schedules{}, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules are six-field cron expressions (seconds first) and can be
// overridden through configuration. The distance job skips a tick while the
// previous one is still running.
package jobs
