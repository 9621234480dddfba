// Package jobs provides scheduled background tasks of the tracking engine.
//
// Jobs are cron-based, using github.com/robfig/cron/v3, and run off the request path.
//
// # Available Jobs
//
// StatsRecomputeJob rebuilds the per-category, per-stage dwell statistics from the
// stage timestamps of stored orders and invalidates the statistics cache. Incremental
// updates on every stage exit keep the statistics current between runs; the rebuild
// corrects drift, for example after orders were repaired by hand.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(recomputeHandler, "@every 15m", logger)
//	if err := jobManager.StartAll(); err != nil {
//		return fmt.Errorf("start jobs: %w", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules are standard five-field cron expressions or descriptors such as "@hourly"
// and "@every 15m". An empty schedule disables the job.
//
// # Error Handling
//
// A failed run is logged and the next run starts from scratch. Invalid schedules fail
// StartAll.
package jobs
