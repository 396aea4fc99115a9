// Package ports declares what the core needs from the outside world:
// persistence, the unit of work, event publication and geocoding.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository persists courier aggregates together with their storage places.
type CourierRepository interface {
	Add(ctx context.Context, courier *courier.Courier) error
	Update(ctx context.Context, courier *courier.Courier) error

	// Get returns errs.ErrObjectNotFound for an unknown id.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAllFree returns couriers whose storage places are all empty.
	// Implementations lock the returned rows for the rest of the transaction and
	// skip rows already locked by a concurrent dispatch.
	GetAllFree(ctx context.Context) ([]*courier.Courier, error)
}
