package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	statsRecomputeJob *StatsRecomputeJob
}

// NewJobManager creates a job manager. An empty schedule disables the stats recompute job.
func NewJobManager(recomputeHandler statsRecomputer, schedule string, logger *slog.Logger) *JobManager {
	jm := &JobManager{}
	if schedule != "" {
		jm.statsRecomputeJob = NewStatsRecomputeJob(recomputeHandler, schedule, logger)
	}
	return jm
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if jm.statsRecomputeJob == nil {
		return nil
	}
	if err := jm.statsRecomputeJob.Start(); err != nil {
		return fmt.Errorf("failed to start stats recompute job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	if jm.statsRecomputeJob != nil {
		jm.statsRecomputeJob.Stop()
	}
}
