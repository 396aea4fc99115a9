package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrStreetIsRequired = errs.NewValueIsRequiredError("street")
	ErrVolumeIsInvalid  = errs.NewValueIsInvalidError("volume")
)

type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	street  string
	volume  int

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(orderID kernel.UUID, street string, volume int) (CreateOrderCommand, error) {
	command := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setStreet(street),
		command.setVolume(volume),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return command, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) Street() string {
	return c.street
}

func (c CreateOrderCommand) Volume() int {
	return c.volume
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setStreet(street string) error {
	if street == "" {
		return ErrStreetIsRequired
	}
	c.street = street
	return nil
}

func (c *CreateOrderCommand) setVolume(volume int) error {
	if volume <= 0 {
		return ErrVolumeIsInvalid
	}
	c.volume = volume
	return nil
}
