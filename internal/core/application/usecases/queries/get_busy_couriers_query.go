package queries

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrGetBusyCouriersQueryIsNotConstructed = errors.New(
	"GetBusyCouriersQuery must be created via NewGetBusyCouriersQuery constructor",
)

// GetBusyCouriersQuery selects couriers holding at least one order.
type GetBusyCouriersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetBusyCouriersQuery() GetBusyCouriersQuery {
	return GetBusyCouriersQuery{guard: guard.NewConstructorGuard()}
}

func (q GetBusyCouriersQuery) Validate() error {
	return q.guard.Validate(ErrGetBusyCouriersQueryIsNotConstructed)
}
