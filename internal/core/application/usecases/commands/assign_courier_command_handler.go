package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

var ErrNoFreeCouriersFound = errors.New("no free couriers found")

type OrderDispatcher interface {
	Dispatch(o *order.Order, couriers []*courier.Courier) (*courier.Courier, error)
}

// AssignCourierCommandHandler runs a dispatch tick in a single transaction.
//
// An empty queue of Created orders is not an error: Handle returns nil and commits nothing.
// When orders are waiting but every courier is busy it returns ErrNoFreeCouriersFound
// and the order stays Created for the next tick.
type AssignCourierCommandHandler struct {
	uowFactory UoWFactory
	dispatcher OrderDispatcher
}

func NewAssignCourierCommandHandler(uowFactory UoWFactory, dispatcher OrderDispatcher) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

func (h AssignCourierCommandHandler) Handle(ctx context.Context, command AssignCourierCommand) error {
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

	courierRepo := uow.CourierRepository()
	orderRepo := uow.OrderRepository()

	o, err := orderRepo.GetFirstInCreatedStatus(ctx)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	couriers, err := courierRepo.GetAllFree(ctx)
	if err != nil {
		return err
	}
	if len(couriers) == 0 {
		return ErrNoFreeCouriersFound
	}

	assigned, err := h.dispatcher.Dispatch(o, couriers)
	if err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}
	if err = courierRepo.Update(ctx, assigned); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
