package services_test

import (
	"testing"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/services"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type fixture struct {
	seq      *stage.Sequence
	order    *order.Order
	customer kernel.Actor
	worker   kernel.Actor
	system   kernel.Actor
	engine   services.TransitionEngine
}

func newFixture(t *testing.T, seq *stage.Sequence) *fixture {
	t.Helper()
	customerID := kernel.NewUUID()
	o, err := order.NewOrder(kernel.NewUUID(), seq, customerID, t0)
	require.NoError(t, err)

	customer, err := kernel.NewActor(customerID, kernel.RoleCustomer)
	require.NoError(t, err)
	worker, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleWorker)
	require.NoError(t, err)
	system, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleSystem)
	require.NoError(t, err)

	return &fixture{
		seq:      seq,
		order:    o,
		customer: customer,
		worker:   worker,
		system:   system,
		engine:   services.NewTransitionEngine(services.NewCancellationPolicy()),
	}
}

func (f *fixture) apply(target stage.Key, actor kernel.Actor, at time.Time) (services.TransitionOutcome, error) {
	return f.engine.Apply(f.order, f.seq, services.Transition{Target: target, Actor: actor, At: at})
}

// advanceTo drives the order forward one minute per stage until it reaches target.
func (f *fixture) advanceTo(t *testing.T, target stage.Key) {
	t.Helper()
	at := t0
	for f.order.Status() != target {
		next, ok := f.seq.Successor(f.order.Status())
		require.True(t, ok, "no stage after %s", f.order.Status())
		actor := f.worker
		if next.DrivenBy() == kernel.RoleSystem {
			actor = f.system
		}
		at = at.Add(time.Minute)
		_, err := f.apply(next.Key(), actor, at)
		require.NoError(t, err)
	}
}

// lastEntry is the entry time of the current stage.
func (f *fixture) lastEntry(t *testing.T) time.Time {
	t.Helper()
	at, ok := f.order.EnteredAt(f.order.Status())
	require.True(t, ok)
	return at
}
