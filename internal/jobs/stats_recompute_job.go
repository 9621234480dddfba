package jobs

import (
	"context"
	"log/slog"
	"time"

	"tracking/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultStatsRecomputeSchedule rebuilds the statistics every quarter hour.
const DefaultStatsRecomputeSchedule = "@every 15m"

type statsRecomputer interface {
	Handle(ctx context.Context, cmd commands.RecomputeStageStatsCommand) error
}

// StatsRecomputeJob periodically rebuilds stage dwell statistics from order history.
// A run that is still going when the next one is due makes the next one skip.
type StatsRecomputeJob struct {
	handler  statsRecomputer
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewStatsRecomputeJob(handler statsRecomputer, schedule string, logger *slog.Logger) *StatsRecomputeJob {
	return &StatsRecomputeJob{
		handler:  handler,
		schedule: schedule,
		timeout:  5 * time.Minute,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "stats_recompute_job"),
	}
}

// Start registers the schedule and starts the scheduler. An invalid schedule is an error.
func (j *StatsRecomputeJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stats recompute job started", "schedule", j.schedule)
	return nil
}

// Run performs one recompute. Failures are logged; the next run starts from scratch.
func (j *StatsRecomputeJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	started := time.Now()
	if err := j.handler.Handle(ctx, commands.NewRecomputeStageStatsCommand()); err != nil {
		j.logger.ErrorContext(ctx, "Stats recompute job failed", "error", err)
		return
	}
	j.logger.DebugContext(ctx, "Stage statistics recomputed", "took", time.Since(started))
}

// Stop stops the scheduler and waits for a running recompute to finish.
func (j *StatsRecomputeJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Stats recompute job stopped")
}
