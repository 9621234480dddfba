package statsrepo

import (
	"context"
	"time"

	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// incrementalMean folds EXCLUDED.average_seconds (the new sample) into the stored mean
// inside the upsert, so concurrent writers serialize on the row instead of overwriting
// each other's read-modify-write.
const incrementalMean = "stage_duration_stats.average_seconds + " +
	"(EXCLUDED.average_seconds - stage_duration_stats.average_seconds) / (stage_duration_stats.samples + 1)"

// GormStatsRepository implements StatsRepository using GORM.
type GormStatsRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db, now: time.Now}
}

// RecordDwell inserts the first sample or folds the next one into the running mean.
func (r *GormStatsRepository) RecordDwell(ctx context.Context, categoryID string, key stage.Key, dwell time.Duration) error {
	sample := StageStatsDTO{
		CategoryID:     categoryID,
		StageKey:       key.String(),
		AverageSeconds: dwell.Seconds(),
		Samples:        1,
		UpdatedAt:      r.now().UTC(),
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "category_id"}, {Name: "stage_key"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "average_seconds"}, Value: gorm.Expr(incrementalMean)},
			{Column: clause.Column{Name: "samples"}, Value: gorm.Expr("stage_duration_stats.samples + 1")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("EXCLUDED.updated_at")},
		},
	}).Create(&sample).Error
}

func (r *GormStatsRepository) GetByCategory(ctx context.Context, categoryID string) (stats.Table, error) {
	var dtos []StageStatsDTO
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Find(&dtos).Error; err != nil {
		return stats.Table{}, err
	}

	entries := make([]stats.StageDuration, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return stats.Table{}, err
		}
		entries = append(entries, s)
	}
	return stats.NewTable(categoryID, entries), nil
}

// Replace deletes the category's rows and inserts entries. Run it inside a transaction.
func (r *GormStatsRepository) Replace(ctx context.Context, categoryID string, entries []stats.StageDuration) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("category_id = ?", categoryID).Delete(&StageStatsDTO{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	now := r.now().UTC()
	dtos := make([]StageStatsDTO, 0, len(entries))
	for _, e := range entries {
		if e.CategoryID() != categoryID {
			continue
		}
		dtos = append(dtos, fromDomain(e, now))
	}
	if len(dtos) == 0 {
		return nil
	}
	return db.Create(&dtos).Error
}
