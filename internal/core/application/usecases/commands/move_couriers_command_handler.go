package commands

import (
	"context"
	"fmt"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// MoveCouriersCommandHandler advances every assigned order's courier one step and
// completes the orders whose courier has arrived. The whole tick is one transaction:
// either every courier moves or none does.
type MoveCouriersCommandHandler struct {
	uowFactory UoWFactory
}

func NewMoveCouriersCommandHandler(uowFactory UoWFactory) MoveCouriersCommandHandler {
	return MoveCouriersCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h MoveCouriersCommandHandler) Handle(ctx context.Context, command MoveCouriersCommand) error {
	if err := command.Validate(); err != nil {
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
	courierRepo := uow.CourierRepository()

	orders, err := orderRepo.GetAllInAssignedStatus(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	// a courier carrying several orders is loaded and saved once
	couriers := make(map[kernel.UUID]*courier.Courier)
	touched := make([]*courier.Courier, 0, len(orders))

	for _, o := range orders {
		c, loaded, err := h.courierFor(ctx, o, couriers, courierRepo.Get)
		if err != nil {
			return err
		}
		if loaded {
			touched = append(touched, c)
		}

		if err = h.step(c, o); err != nil {
			return err
		}

		if err = orderRepo.Update(ctx, o); err != nil {
			return err
		}
	}

	for _, c := range touched {
		if err = courierRepo.Update(ctx, c); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}

func (h MoveCouriersCommandHandler) courierFor(
	ctx context.Context,
	o *order.Order,
	cache map[kernel.UUID]*courier.Courier,
	get func(context.Context, kernel.UUID) (*courier.Courier, error),
) (*courier.Courier, bool, error) {
	courierID := o.CourierID()
	if courierID == nil {
		return nil, false, errs.NewDataIntegrityError("order", o.ID().String(), "assigned order has no courier")
	}

	if c, ok := cache[*courierID]; ok {
		return c, false, nil
	}

	c, err := get(ctx, *courierID)
	if err != nil {
		return nil, false, fmt.Errorf("load courier of order %s: %w", o.ID(), err)
	}
	cache[*courierID] = c

	return c, true, nil
}

// step moves the courier towards the order and completes the order on arrival.
func (h MoveCouriersCommandHandler) step(c *courier.Courier, o *order.Order) error {
	if err := c.Move(o.Location()); err != nil {
		return err
	}

	arrived, err := c.Location().IsEqual(o.Location())
	if err != nil {
		return err
	}
	if !arrived {
		return nil
	}

	if err = c.CompleteOrder(o); err != nil {
		return err
	}

	return o.Complete()
}
