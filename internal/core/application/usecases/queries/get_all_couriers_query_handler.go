package queries

import (
	"context"

	"gorm.io/gorm"
)

type GetAllCouriersQueryHandler struct {
	db *gorm.DB
}

func NewGetAllCouriersQueryHandler(db *gorm.DB) GetAllCouriersQueryHandler {
	return GetAllCouriersQueryHandler{db: db}
}

// Handle returns every courier ordered by name.
func (h GetAllCouriersQueryHandler) Handle(ctx context.Context, query GetAllCouriersQuery) ([]CourierResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return scanCouriers(ctx, h.db, `
		SELECT id, name, location_x, location_y
		FROM couriers
		ORDER BY name, id
	`)
}
