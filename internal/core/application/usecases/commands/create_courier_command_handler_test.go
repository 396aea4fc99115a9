package commands_test

import (
	"errors"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateCourierCommandHandler_Handle(t *testing.T) {
	t.Run("should store courier at the given location with the default bag", func(t *testing.T) {
		ctx := t.Context()
		repo := new(MockCourierRepository)
		uow := new(MockUoW)
		factory := new(MockCourierUoWFactory)

		loc := mustLocation(t, 6, 2)
		cmd, err := commands.NewCreateCourierCommand(kernel.NewUUID(), "Bob", 2, &loc)
		require.NoError(t, err)

		var stored *courier.Courier
		mock.InOrder(
			factory.On("Create").Return(uow).Once(),
			uow.On("Begin", ctx).Return(nil).Once(),
			uow.On("CourierRepository").Return(repo).Once(),
			repo.On("Add", ctx, mock.AnythingOfType("*courier.Courier")).
				Run(func(args mock.Arguments) { stored = args.Get(1).(*courier.Courier) }).
				Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
			uow.On("Rollback", ctx).Return(nil).Once(),
		)

		handler := commands.NewCreateCourierCommandHandler(factory, fixedRandom(0))
		require.NoError(t, handler.Handle(ctx, cmd))

		require.NotNil(t, stored)
		assert.Equal(t, cmd.CourierID(), stored.ID())
		assert.Equal(t, loc, stored.Location())
		require.Len(t, stored.StoragePlaces(), 1)
		assert.Equal(t, courier.DefaultBagName, stored.StoragePlaces()[0].Name())
		assert.Equal(t, courier.DefaultBagVolume, stored.StoragePlaces()[0].TotalVolume())
		assert.True(t, stored.IsFree())
		factory.AssertExpectations(t)
		uow.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("should place courier randomly without a location", func(t *testing.T) {
		ctx := t.Context()
		repo := new(MockCourierRepository)
		uow := new(MockUoW)
		factory := new(MockCourierUoWFactory)

		cmd, err := commands.NewCreateCourierCommand(kernel.NewUUID(), "Bob", 2, nil)
		require.NoError(t, err)

		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("CourierRepository").Return(repo).Once()
		repo.On("Add", ctx, mock.MatchedBy(func(c *courier.Courier) bool {
			return c.Location() == mustLocation(t, 10, 10)
		})).Return(nil).Once()
		uow.On("Commit", ctx).Return(nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()

		handler := commands.NewCreateCourierCommandHandler(factory, fixedRandom(9))
		require.NoError(t, handler.Handle(ctx, cmd))
		repo.AssertExpectations(t)
	})

	t.Run("should not commit when add fails", func(t *testing.T) {
		ctx := t.Context()
		repo := new(MockCourierRepository)
		uow := new(MockUoW)
		factory := new(MockCourierUoWFactory)
		addErr := errors.New("duplicate key")

		cmd, err := commands.NewCreateCourierCommand(kernel.NewUUID(), "Bob", 2, nil)
		require.NoError(t, err)

		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("CourierRepository").Return(repo).Once()
		repo.On("Add", ctx, mock.Anything).Return(addErr).Once()
		uow.On("Rollback", ctx).Return(nil).Once()

		handler := commands.NewCreateCourierCommandHandler(factory, fixedRandom(0))
		require.ErrorIs(t, handler.Handle(ctx, cmd), addErr)
		uow.AssertNotCalled(t, "Commit", ctx)
	})

	t.Run("should reject unconstructed command", func(t *testing.T) {
		factory := new(MockCourierUoWFactory)
		handler := commands.NewCreateCourierCommandHandler(factory, fixedRandom(0))

		err := handler.Handle(t.Context(), commands.CreateCourierCommand{})

		require.ErrorIs(t, err, commands.ErrCreateCourierCommandIsNotConstructed)
		factory.AssertNotCalled(t, "Create")
	})
}
