package commands

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

type CreateCourierCommandHandler struct {
	uowFactory CourierUoWFactory
	rnd        kernel.RandomSource
}

func NewCreateCourierCommandHandler(uowFactory CourierUoWFactory, rnd kernel.RandomSource) CreateCourierCommandHandler {
	return CreateCourierCommandHandler{
		uowFactory: uowFactory,
		rnd:        rnd,
	}
}

func (h CreateCourierCommandHandler) Handle(ctx context.Context, cmd CreateCourierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	var location kernel.Location
	if loc := cmd.Location(); loc != nil {
		location = *loc
	} else {
		random, err := kernel.NewRandomLocation(h.rnd)
		if err != nil {
			return err
		}
		location = random
	}

	c, err := courier.NewCourier(cmd.CourierID(), cmd.Name(), cmd.Speed(), location)
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

	if err = uow.CourierRepository().Add(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
