package ports

import "tracking/internal/core/domain/model/stage"

// StageCatalog resolves the stage sequence of a category. *stage.Registry implements it.
type StageCatalog interface {
	Sequence(categoryID string) (*stage.Sequence, error)
	Categories() []string
}
