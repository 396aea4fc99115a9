package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const DefaultOutboxBatchSize = 100

var ErrProcessOutboxMessagesCommandIsNotConstructed = errors.New(
	"ProcessOutboxMessagesCommand must be created via NewProcessOutboxMessagesCommand constructor",
)

// ProcessOutboxMessagesCommand triggers one relay tick over at most batchSize messages.
type ProcessOutboxMessagesCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

func NewProcessOutboxMessagesCommand(batchSize int) (ProcessOutboxMessagesCommand, error) {
	command := ProcessOutboxMessagesCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setBatchSize(batchSize); err != nil {
		return ProcessOutboxMessagesCommand{}, err
	}

	return command, nil
}

func (c ProcessOutboxMessagesCommand) Validate() error {
	return c.guard.Validate(ErrProcessOutboxMessagesCommandIsNotConstructed)
}

func (c ProcessOutboxMessagesCommand) BatchSize() int {
	return c.batchSize
}

func (c *ProcessOutboxMessagesCommand) setBatchSize(batchSize int) error {
	if batchSize <= 0 {
		return errs.NewValueIsInvalidError("batchSize")
	}
	c.batchSize = batchSize
	return nil
}
