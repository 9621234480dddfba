package commands_test

import (
	"testing"
	"time"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderCommand(t *testing.T) {
	t.Run("should build a valid command", func(t *testing.T) {
		orderID := kernel.NewUUID()

		cmd, err := commands.NewCreateOrderCommand(orderID, " basic ", kernel.NewUUID(), time.Now())

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.True(t, cmd.OrderID().IsEqual(orderID))
		assert.Equal(t, "basic", cmd.CategoryID())
	})

	t.Run("should join every validation error", func(t *testing.T) {
		_, err := commands.NewCreateOrderCommand(kernel.UUID{}, "", kernel.UUID{}, time.Time{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "categoryId")
		assert.Contains(t, err.Error(), "customerId")
		assert.Contains(t, err.Error(), "createdAt")
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var cmd commands.CreateOrderCommand

		require.ErrorIs(t, cmd.Validate(), commands.ErrCreateOrderCommandIsNotConstructed)
	})
}

func TestNewApplyTransitionCommand(t *testing.T) {
	worker, _ := kernel.NewActor(kernel.NewUUID(), kernel.RoleWorker)

	t.Run("should refuse cancellation targets", func(t *testing.T) {
		_, err := commands.NewApplyTransitionCommand(kernel.NewUUID(), "CANCELLED", worker, time.Now())

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should require a target", func(t *testing.T) {
		_, err := commands.NewApplyTransitionCommand(kernel.NewUUID(), commands.NextStage, worker, time.Now())

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("advance targets the stage after the expected one", func(t *testing.T) {
		cmd, err := commands.NewAdvanceOrderCommand(kernel.NewUUID(), stage.Pending, worker, time.Now())

		require.NoError(t, err)
		assert.Equal(t, commands.NextStage, cmd.Target())
		assert.Equal(t, stage.Pending, cmd.From())
	})

	t.Run("advance needs the expected stage", func(t *testing.T) {
		_, err := commands.NewAdvanceOrderCommand(kernel.NewUUID(), "", worker, time.Now())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)

		_, err = commands.NewAdvanceOrderCommand(kernel.NewUUID(), stage.Cancelled, worker, time.Now())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should require an actor and a timestamp", func(t *testing.T) {
		_, err := commands.NewApplyTransitionCommand(kernel.NewUUID(), "ACCEPTED", kernel.Actor{}, time.Time{})

		require.ErrorIs(t, err, kernel.ErrActorIsNotConstructed)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var cmd commands.ApplyTransitionCommand

		require.ErrorIs(t, cmd.Validate(), commands.ErrApplyTransitionCommandIsNotConstructed)
	})
}

func TestNewCancelOrderCommand(t *testing.T) {
	customer, _ := kernel.NewActor(kernel.NewUUID(), kernel.RoleCustomer)

	_, err := commands.NewCancelOrderCommand(kernel.NewUUID(), customer, string(make([]byte, 501)), time.Now())
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	cmd, err := commands.NewCancelOrderCommand(kernel.NewUUID(), customer, "busy", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "busy", cmd.Reason())

	var zero commands.CancelOrderCommand
	require.ErrorIs(t, zero.Validate(), commands.ErrCancelOrderCommandIsNotConstructed)
}

func TestNewRecomputeStageStatsCommand(t *testing.T) {
	cmd := commands.NewRecomputeStageStatsCommand()
	require.NoError(t, cmd.Validate())

	var zero commands.RecomputeStageStatsCommand
	require.ErrorIs(t, zero.Validate(), commands.ErrRecomputeStageStatsCommandIsNotConstructed)
}
