package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrMoveCouriersCommandIsNotConstructed = errors.New(
	"MoveCouriersCommand must be created via NewMoveCouriersCommand constructor",
)

// MoveCouriersCommand triggers one movement tick for every courier carrying an order.
type MoveCouriersCommand struct {
	guard guard.ConstructorGuard
}

func NewMoveCouriersCommand() MoveCouriersCommand {
	return MoveCouriersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *MoveCouriersCommand) Validate() error {
	return c.guard.Validate(ErrMoveCouriersCommandIsNotConstructed)
}
