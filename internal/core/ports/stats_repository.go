package ports

import (
	"context"
	"time"

	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"
)

// StatsReader serves stage dwell statistics to the ETA estimator.
type StatsReader interface {
	// GetByCategory returns every statistic of a category; unknown categories yield an empty table.
	GetByCategory(ctx context.Context, categoryID string) (stats.Table, error)
}

type StatsRepository interface {
	StatsReader

	// RecordDwell folds one dwell sample into the (category, stage) average atomically,
	// so concurrent writers never lose a sample.
	RecordDwell(ctx context.Context, categoryID string, key stage.Key, dwell time.Duration) error

	// Replace swaps all statistics of a category for entries.
	Replace(ctx context.Context, categoryID string, entries []stats.StageDuration) error
}

// StatsInvalidator drops cached statistics of a category after they changed.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, categoryID string) error
}
