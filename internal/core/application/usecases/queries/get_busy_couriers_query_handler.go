package queries

import (
	"context"

	"gorm.io/gorm"
)

type GetBusyCouriersQueryHandler struct {
	db *gorm.DB
}

func NewGetBusyCouriersQueryHandler(db *gorm.DB) GetBusyCouriersQueryHandler {
	return GetBusyCouriersQueryHandler{db: db}
}

func (h GetBusyCouriersQueryHandler) Handle(ctx context.Context, query GetBusyCouriersQuery) ([]CourierResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return scanCouriers(ctx, h.db, `
		SELECT c.id, c.name, c.location_x, c.location_y
		FROM couriers c
		WHERE EXISTS (
			SELECT 1 FROM storage_places sp
			WHERE sp.courier_id = c.id AND sp.order_id IS NOT NULL
		)
		ORDER BY c.name, c.id
	`)
}
