package commands

import (
	"context"
)

type AddCourierStorageCommandHandler struct {
	uowFactory CourierUoWFactory
}

func NewAddCourierStorageCommandHandler(uowFactory CourierUoWFactory) AddCourierStorageCommandHandler {
	return AddCourierStorageCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h AddCourierStorageCommandHandler) Handle(ctx context.Context, cmd AddCourierStorageCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()
	c, err := courierRepo.Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	if err = c.AddStoragePlace(cmd.Name(), cmd.TotalVolume()); err != nil {
		return err
	}

	if err = courierRepo.Update(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
