// Package statsrepo persists per-category, per-stage dwell statistics with GORM.
package statsrepo

import (
	"time"

	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"
)

// StageStatsDTO is one (category, stage) rolling average. Averages are stored in seconds.
type StageStatsDTO struct {
	CategoryID     string    `gorm:"size:64;primaryKey"`
	StageKey       string    `gorm:"size:32;primaryKey"`
	AverageSeconds float64   `gorm:"not null"`
	Samples        int       `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (StageStatsDTO) TableName() string {
	return "stage_duration_stats"
}

func fromDomain(s stats.StageDuration, now time.Time) StageStatsDTO {
	return StageStatsDTO{
		CategoryID:     s.CategoryID(),
		StageKey:       s.StageKey().String(),
		AverageSeconds: s.Average().Seconds(),
		Samples:        s.Samples(),
		UpdatedAt:      now,
	}
}

func toDomain(dto StageStatsDTO) (stats.StageDuration, error) {
	return stats.NewStageDuration(
		dto.CategoryID,
		stage.Key(dto.StageKey),
		time.Duration(dto.AverageSeconds*float64(time.Second)),
		dto.Samples,
	)
}
