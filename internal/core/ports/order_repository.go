package ports

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// ErrOrderAlreadyExists is returned by Add for a duplicate order id.
var ErrOrderAlreadyExists = errors.New("order already exists")

type OrderRepository interface {
	Add(ctx context.Context, aggregate *order.Order) error
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns errs.ErrObjectNotFound for an unknown id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetFirstInCreatedStatus returns the oldest Created order, or errs.ErrObjectNotFound.
	// The row stays locked until the transaction ends; rows locked elsewhere are skipped.
	GetFirstInCreatedStatus(ctx context.Context) (*order.Order, error)

	// GetAllInAssignedStatus returns every order currently being delivered.
	GetAllInAssignedStatus(ctx context.Context) ([]*order.Order, error)
}
