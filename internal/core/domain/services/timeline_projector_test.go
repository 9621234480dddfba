package services_test

import (
	"testing"
	"time"

	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stage/stagetest"
	"tracking/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countFlags(tl services.Timeline) (completed, current int) {
	for _, s := range tl.Stages {
		if s.IsCompleted {
			completed++
		}
		if s.IsCurrent {
			current++
		}
	}
	return completed, current
}

func TestTimelineProjector_Project(t *testing.T) {
	projector := services.NewTimelineProjector()

	t.Run("every non-terminal position has N completed and one current", func(t *testing.T) {
		seq := stagetest.HomeServices()
		for pos, def := range seq.Stages() {
			if def.IsTerminal() {
				continue
			}
			f := newFixture(t, seq)
			f.advanceTo(t, def.Key())

			tl, err := projector.Project(f.order, f.seq)

			require.NoError(t, err)
			require.Len(t, tl.Stages, seq.Len())
			completed, current := countFlags(tl)
			assert.Equal(t, pos, completed, def.Key())
			assert.Equal(t, 1, current, def.Key())
			assert.Equal(t, pos, tl.CurrentIndex)
			assert.True(t, tl.Stages[pos].IsCurrent)
		}
	})

	t.Run("rows follow rank and carry catalogue text", func(t *testing.T) {
		f := newFixture(t, stagetest.HomeServices())

		tl, err := projector.Project(f.order, f.seq)

		require.NoError(t, err)
		for i, row := range tl.Stages {
			def := f.seq.At(i)
			assert.Equal(t, def.Key(), row.Key)
			assert.Equal(t, def.Label(), row.Label)
			assert.Equal(t, def.Description(), row.Description)
			assert.Equal(t, i, row.RankIndex)
		}
		require.NotNil(t, tl.Stages[0].Timestamp)
		assert.Equal(t, t0, *tl.Stages[0].Timestamp)
		assert.Nil(t, tl.Stages[1].Timestamp)
	})

	t.Run("completed order has every stage completed and none current", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())
		f.advanceTo(t, stage.Completed)

		tl, err := projector.Project(f.order, f.seq)

		require.NoError(t, err)
		completed, current := countFlags(tl)
		assert.Equal(t, f.seq.Len(), completed)
		assert.Zero(t, current)
		assert.Equal(t, f.seq.Len(), tl.CurrentIndex)
	})

	t.Run("cancelled order points at the last entered stage", func(t *testing.T) {
		f := newFixture(t, stagetest.HomeServices())
		f.advanceTo(t, stage.Accepted)
		_, err := f.engine.Apply(f.order, f.seq, services.Transition{
			Target: stage.Cancelled, Actor: f.customer, At: t0.Add(time.Hour),
		})
		require.NoError(t, err)

		tl, err := projector.Project(f.order, f.seq)

		require.NoError(t, err)
		accepted, _ := f.seq.Position(stage.Accepted)
		assert.Equal(t, accepted, tl.CurrentIndex)
		completed, current := countFlags(tl)
		assert.Equal(t, accepted, completed)
		assert.Zero(t, current)
		for _, row := range tl.Stages {
			assert.NotEqual(t, stage.Cancelled, row.Key)
		}
	})
}
