package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// GeoClient resolves a street name into a grid location.
// It returns errs.ErrObjectNotFound for unknown streets.
type GeoClient interface {
	GetLocation(ctx context.Context, street string) (kernel.Location, error)
}
