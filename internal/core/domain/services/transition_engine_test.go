package services_test

import (
	"testing"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stage/stagetest"
	"tracking/internal/core/domain/services"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionEngine_Forward(t *testing.T) {
	t.Run("should accept and bind the worker", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())

		outcome, err := f.apply(stage.Accepted, f.worker, t0.Add(5*time.Minute))

		require.NoError(t, err)
		assert.True(t, outcome.Changed)
		require.NotNil(t, outcome.Exited)
		assert.Equal(t, stage.Pending, outcome.Exited.Key)
		assert.Equal(t, 5*time.Minute, outcome.Exited.Dwell)
		assert.Nil(t, outcome.Cancellation)
		assert.Equal(t, stage.Accepted, f.order.Status())
		require.NotNil(t, f.order.WorkerID())
		assert.True(t, f.order.WorkerID().IsEqual(f.worker.ID()))
	})

	t.Run("should report the dwell of the exited stage", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())
		f.advanceTo(t, stage.Accepted)
		entered := f.lastEntry(t)

		outcome, err := f.apply(stage.InProgress, f.worker, entered.Add(20*time.Minute))

		require.NoError(t, err)
		require.NotNil(t, outcome.Exited)
		assert.Equal(t, stage.Accepted, outcome.Exited.Key)
		assert.Equal(t, 20*time.Minute, outcome.Exited.Dwell)
	})

	t.Run("should keep stage timestamps monotonic", func(t *testing.T) {
		f := newFixture(t, stagetest.HomeServices())
		f.advanceTo(t, stage.Completed)

		stamps := f.order.StageTimestamps()
		var prev time.Time
		for _, def := range f.seq.Stages() {
			at, ok := stamps.Get(def.Key())
			require.True(t, ok, def.Key())
			assert.False(t, at.Before(prev), def.Key())
			prev = at
		}
	})

	t.Run("should reject skipping a stage", func(t *testing.T) {
		f := newFixture(t, stagetest.HomeServices())
		f.advanceTo(t, stage.Accepted)

		_, err := f.apply(stage.InProgress, f.worker, t0.Add(time.Hour))

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, stage.Accepted, f.order.Status())
	})

	t.Run("should reject an unknown stage for the category", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())

		_, err := f.apply(stage.OnTheWay, f.worker, t0.Add(time.Minute))

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("should reject a timestamp before the current entry", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())
		f.advanceTo(t, stage.Accepted)

		_, err := f.apply(stage.InProgress, f.worker, f.lastEntry(t).Add(-time.Second))

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, stage.Accepted, f.order.Status())
	})
}

func TestTransitionEngine_Authorization(t *testing.T) {
	t.Run("system-driven stages need the system", func(t *testing.T) {
		f := newFixture(t, stagetest.HomeServices())

		_, err := f.apply(stage.Searching, f.worker, t0.Add(time.Minute))
		require.ErrorIs(t, err, errs.ErrForbidden)

		_, err = f.apply(stage.Searching, f.customer, t0.Add(time.Minute))
		require.ErrorIs(t, err, errs.ErrForbidden)

		_, err = f.apply(stage.Searching, f.system, t0.Add(time.Minute))
		require.NoError(t, err)
	})

	t.Run("only workers accept", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())

		_, err := f.apply(stage.Accepted, f.system, t0.Add(time.Minute))

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.Nil(t, f.order.WorkerID())
	})

	t.Run("only the assigned worker drives later stages", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())
		f.advanceTo(t, stage.Accepted)
		other, _ := kernel.NewActor(kernel.NewUUID(), kernel.RoleWorker)

		_, err := f.apply(stage.InProgress, other, t0.Add(time.Hour))

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.Equal(t, stage.Accepted, f.order.Status())
	})

	t.Run("a different worker cannot re-accept", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())
		f.advanceTo(t, stage.Accepted)
		other, _ := kernel.NewActor(kernel.NewUUID(), kernel.RoleWorker)

		_, err := f.apply(stage.Accepted, other, t0.Add(time.Hour))

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.True(t, f.order.WorkerID().IsEqual(f.worker.ID()))
	})

	t.Run("only the customer cancels", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())
		strangerCustomer, _ := kernel.NewActor(kernel.NewUUID(), kernel.RoleCustomer)

		for _, actor := range []kernel.Actor{f.worker, f.system, strangerCustomer} {
			_, err := f.engine.Apply(f.order, f.seq, services.Transition{
				Target: stage.Cancelled, Actor: actor, At: t0.Add(time.Minute),
			})
			require.ErrorIs(t, err, errs.ErrForbidden, actor.String())
		}
		assert.Equal(t, stage.Pending, f.order.Status())
	})
}

func TestTransitionEngine_Idempotency(t *testing.T) {
	f := newFixture(t, stagetest.Basic())
	f.advanceTo(t, stage.Accepted)
	before := f.order.StageTimestamps()

	outcome, err := f.apply(stage.Accepted, f.worker, t0.Add(time.Hour))

	require.NoError(t, err)
	assert.False(t, outcome.Changed)
	assert.Nil(t, outcome.Exited)
	assert.Equal(t, before, f.order.StageTimestamps(), "timestamp is never overwritten")
}

func TestTransitionEngine_TerminalAbsorption(t *testing.T) {
	completed := func(t *testing.T) *fixture {
		f := newFixture(t, stagetest.Basic())
		f.advanceTo(t, stage.Completed)
		return f
	}
	cancelled := func(t *testing.T) *fixture {
		f := newFixture(t, stagetest.Basic())
		_, err := f.engine.Apply(f.order, f.seq, services.Transition{
			Target: stage.Cancelled, Actor: f.customer, At: t0.Add(time.Minute),
		})
		require.NoError(t, err)
		return f
	}

	for name, build := range map[string]func(*testing.T) *fixture{"completed": completed, "cancelled": cancelled} {
		t.Run(name, func(t *testing.T) {
			f := build(t)
			status := f.order.Status()
			for _, target := range append([]stage.Key{stage.Cancelled}, keys(f)...) {
				for _, actor := range []kernel.Actor{f.customer, f.worker, f.system} {
					_, err := f.engine.Apply(f.order, f.seq, services.Transition{
						Target: target, Actor: actor, At: t0.Add(24 * time.Hour),
					})
					require.ErrorIs(t, err, errs.ErrInvalidTransition, "%s by %s", target, actor)
				}
			}
			assert.Equal(t, status, f.order.Status())
		})
	}
}

func TestTransitionEngine_Cancel(t *testing.T) {
	t.Run("should cancel while accepted", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())
		f.advanceTo(t, stage.Accepted)
		stamps := f.order.StageTimestamps()

		outcome, err := f.engine.Apply(f.order, f.seq, services.Transition{
			Target: stage.Cancelled, Actor: f.customer, At: t0.Add(time.Hour), Reason: "no longer needed",
		})

		require.NoError(t, err)
		assert.True(t, outcome.Changed)
		assert.Nil(t, outcome.Exited, "cancellation never feeds statistics")
		require.NotNil(t, outcome.Cancellation)
		assert.Equal(t, "no longer needed", outcome.Cancellation.Reason())
		assert.Equal(t, stage.Cancelled, f.order.Status())
		assert.Equal(t, stamps, f.order.StageTimestamps())
	})

	t.Run("should refuse past the boundary", func(t *testing.T) {
		f := newFixture(t, stagetest.Basic())
		f.advanceTo(t, stage.InProgress)

		_, err := f.engine.Apply(f.order, f.seq, services.Transition{
			Target: stage.Cancelled, Actor: f.customer, At: t0.Add(time.Hour),
		})

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, stage.InProgress, f.order.Status())
		assert.Nil(t, f.order.CancelledAt())
	})

	t.Run("should follow the category boundary", func(t *testing.T) {
		f := newFixture(t, stagetest.Consultation())
		f.advanceTo(t, stage.InProgress)

		_, err := f.engine.Apply(f.order, f.seq, services.Transition{
			Target: stage.Cancelled, Actor: f.customer, At: t0.Add(time.Hour),
		})

		require.NoError(t, err)
	})
}

func keys(f *fixture) []stage.Key {
	out := make([]stage.Key, 0, f.seq.Len())
	for _, def := range f.seq.Stages() {
		out = append(out, def.Key())
	}
	return out
}
