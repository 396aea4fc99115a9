package services

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrNoCouriers is returned when the dispatcher is given nothing to choose from.
	ErrNoCouriers = errs.NewValueIsRequiredError("couriers")

	// ErrNoCourierCanTakeOrder is returned when none of the couriers has a storage place
	// large enough for the order.
	ErrNoCourierCanTakeOrder = errors.New("no courier can take the order")
)

// OrderDispatcher assigns an order to the courier that reaches it first.
//
// Business rules:
//   - only Created orders are dispatched
//   - only couriers with a suitable empty storage place are considered
//   - the courier with the smallest distance/speed wins
//   - on equal times the courier that comes first in the given slice wins
//
// The dispatcher mutates both aggregates and persists neither: the caller saves
// the order and the returned courier in one unit of work.
type OrderDispatcher struct{}

func NewOrderDispatcher() OrderDispatcher {
	return OrderDispatcher{}
}

// Dispatch selects the best courier for o and performs the mutual assignment.
//
// Returns:
//   - *courier.Courier: the courier now carrying the order
//   - error: a validation error for a missing order or couriers, errs.ErrStateConflict
//     for an order that is not Created, ErrNoCourierCanTakeOrder when nobody has capacity
func (d OrderDispatcher) Dispatch(o *order.Order, couriers []*courier.Courier) (*courier.Courier, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if len(couriers) == 0 {
		return nil, ErrNoCouriers
	}
	if o.Status() != order.Created {
		return nil, errs.NewStateConflictError("dispatch", o.Status())
	}

	winner, err := d.findFastestCourier(o, couriers)
	if err != nil {
		return nil, err
	}

	if err := o.Assign(winner.ID()); err != nil {
		return nil, fmt.Errorf("assign order %s: %w", o.ID(), err)
	}
	if err := winner.TakeOrder(o); err != nil {
		return nil, fmt.Errorf("courier %s take order %s: %w", winner.ID(), o.ID(), err)
	}

	return winner, nil
}

func (d OrderDispatcher) findFastestCourier(o *order.Order, couriers []*courier.Courier) (*courier.Courier, error) {
	var (
		best     *courier.Courier
		bestTime float64
	)

	for _, c := range couriers {
		if err := c.Validate(); err != nil {
			return nil, err
		}

		canTake, err := c.CanTakeOrder(o)
		if err != nil {
			return nil, err
		}
		if !canTake {
			continue
		}

		t, err := c.CalculateTimeToLocation(o.Location())
		if err != nil {
			return nil, err
		}
		// strict comparison keeps the first courier on ties
		if best == nil || t < bestTime {
			best, bestTime = c, t
		}
	}

	if best == nil {
		return nil, ErrNoCourierCanTakeOrder
	}

	return best, nil
}
