package commands

import (
	"errors"

	"tracking/internal/pkg/guard"
)

var ErrRecomputeStageStatsCommandIsNotConstructed = errors.New(
	"RecomputeStageStatsCommand must be created via NewRecomputeStageStatsCommand constructor",
)

// RecomputeStageStatsCommand rebuilds every category's dwell statistics from the
// persisted stage timestamps. It is parameterless and issued by the scheduler.
type RecomputeStageStatsCommand struct {
	guard guard.ConstructorGuard
}

func NewRecomputeStageStatsCommand() RecomputeStageStatsCommand {
	return RecomputeStageStatsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *RecomputeStageStatsCommand) Validate() error {
	return c.guard.Validate(
		ErrRecomputeStageStatsCommandIsNotConstructed,
	)
}
