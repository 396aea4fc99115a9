package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func scanCouriers(ctx context.Context, db *gorm.DB, sql string, args ...any) ([]CourierResponse, error) {
	rows, err := db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	couriers := make([]CourierResponse, 0)
	for rows.Next() {
		var (
			resp                 CourierResponse
			id                   uuid.UUID
			locationX, locationY int16
		)

		if err = rows.Scan(&id, &resp.Name, &locationX, &locationY); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromValue(id); err != nil {
			return nil, err
		}
		resp.Location, err = kernel.NewLocation(kernel.Coordinate(locationX), kernel.Coordinate(locationY))
		if err != nil {
			return nil, err
		}

		couriers = append(couriers, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return couriers, nil
}
