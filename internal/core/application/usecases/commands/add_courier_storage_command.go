package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrAddCourierStorageCommandIsNotConstructed = errors.New(
	"AddCourierStorageCommand must be created via NewAddCourierStorageCommand constructor",
)

type AddCourierStorageCommand struct { //nolint:recvcheck //using for validation
	courierID   kernel.UUID
	name        string
	totalVolume int

	guard guard.ConstructorGuard
}

func NewAddCourierStorageCommand(courierID kernel.UUID, name string, totalVolume int) (AddCourierStorageCommand, error) {
	command := AddCourierStorageCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setCourierID(courierID),
		command.setName(name),
		command.setTotalVolume(totalVolume),
	); err != nil {
		return AddCourierStorageCommand{}, err
	}

	return command, nil
}

func (c AddCourierStorageCommand) Validate() error {
	return c.guard.Validate(ErrAddCourierStorageCommandIsNotConstructed)
}

func (c AddCourierStorageCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c AddCourierStorageCommand) Name() string {
	return c.name
}

func (c AddCourierStorageCommand) TotalVolume() int {
	return c.totalVolume
}

func (c *AddCourierStorageCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	c.courierID = courierID
	return nil
}

func (c *AddCourierStorageCommand) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *AddCourierStorageCommand) setTotalVolume(totalVolume int) error {
	if totalVolume <= 0 {
		return errs.NewValueIsInvalidError("totalVolume")
	}
	c.totalVolume = totalVolume
	return nil
}
