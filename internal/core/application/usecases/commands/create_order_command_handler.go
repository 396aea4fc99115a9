package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CreateOrderCommandHandler stores a new Created order. It is idempotent on the order id:
// repeating a command for an existing order succeeds without touching it.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	geoClient  ports.GeoClient
	rnd        kernel.RandomSource
}

// NewCreateOrderCommandHandler accepts a nil geoClient; orders are then placed at random.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	geoClient ports.GeoClient,
	rnd kernel.RandomSource,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		geoClient:  geoClient,
		rnd:        rnd,
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
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

	orderRepo := uow.OrderRepository()
	_, err := orderRepo.Get(ctx, cmd.OrderID())
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, errs.ErrObjectNotFound):
		return err
	}

	location, err := h.resolveLocation(ctx, cmd.Street())
	if err != nil {
		return err
	}

	o, err := order.NewOrder(cmd.OrderID(), location, cmd.Volume())
	if err != nil {
		return err
	}

	if err = orderRepo.Add(ctx, o); err != nil {
		if errors.Is(err, ports.ErrOrderAlreadyExists) {
			return nil
		}
		return err
	}

	return uow.Commit(ctx)
}

// resolveLocation asks the geocoder first and falls back to a random location
// when the street is unknown or the geocoder is unavailable.
func (h CreateOrderCommandHandler) resolveLocation(ctx context.Context, street string) (kernel.Location, error) {
	if h.geoClient != nil {
		location, err := h.geoClient.GetLocation(ctx, street)
		if err == nil {
			return location, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return kernel.Location{}, ctxErr
		}
	}

	return kernel.NewRandomLocation(h.rnd)
}
