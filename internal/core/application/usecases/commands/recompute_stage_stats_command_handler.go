package commands

import (
	"context"
	"fmt"
	"time"

	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"
	"tracking/internal/core/ports"
)

// RecomputeStageStatsCommandHandler replaces the incrementally maintained statistics
// with exact means over the stored history, one category per transaction. Cached
// statistics of a category are dropped once its transaction committed.
type RecomputeStageStatsCommandHandler struct {
	uowFactory  StatsUoWFactory
	catalog     ports.StageCatalog
	invalidator ports.StatsInvalidator
}

func NewRecomputeStageStatsCommandHandler(
	uowFactory StatsUoWFactory,
	catalog ports.StageCatalog,
	invalidator ports.StatsInvalidator,
) RecomputeStageStatsCommandHandler {
	return RecomputeStageStatsCommandHandler{
		uowFactory:  uowFactory,
		catalog:     catalog,
		invalidator: invalidator,
	}
}

// Handle stops at the first category that fails; categories processed before it keep
// their new statistics.
func (h RecomputeStageStatsCommandHandler) Handle(ctx context.Context, cmd RecomputeStageStatsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	for _, categoryID := range h.catalog.Categories() {
		if err := h.recompute(ctx, categoryID); err != nil {
			return fmt.Errorf("recompute stage statistics of %s: %w", categoryID, err)
		}
		if h.invalidator != nil {
			if err := h.invalidator.Invalidate(ctx, categoryID); err != nil {
				return fmt.Errorf("invalidate stage statistics of %s: %w", categoryID, err)
			}
		}
	}

	return nil
}

func (h RecomputeStageStatsCommandHandler) recompute(ctx context.Context, categoryID string) error {
	seq, err := h.catalog.Sequence(categoryID)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	timelines, err := uow.OrderRepository().ListTimestamps(ctx, categoryID)
	if err != nil {
		return err
	}

	history := make([]map[stage.Key]time.Time, len(timelines))
	for i, entered := range timelines {
		history[i] = entered
	}

	entries := stats.Aggregate(seq, history)
	if err = uow.StatsRepository().Replace(ctx, categoryID, entries); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
