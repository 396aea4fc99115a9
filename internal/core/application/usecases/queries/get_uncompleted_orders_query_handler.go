package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetUncompletedOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetUncompletedOrdersQueryHandler(db *gorm.DB) GetUncompletedOrdersQueryHandler {
	return GetUncompletedOrdersQueryHandler{db: db}
}

// Handle returns Created and Assigned orders, oldest first.
func (h GetUncompletedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetUncompletedOrdersQuery,
) ([]GetUncompletedOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, location_x, location_y, status, courier_id
		FROM orders
		WHERE status IN (?, ?)
		ORDER BY created_at, id
	`, int(order.Created), int(order.Assigned)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetUncompletedOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			resp                 GetUncompletedOrdersQueryResponse
			id                   uuid.UUID
			courierID            uuid.NullUUID
			locationX, locationY int16
			status               int
		)

		if err = rows.Scan(&id, &locationX, &locationY, &status, &courierID); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromValue(id); err != nil {
			return nil, err
		}
		resp.Location, err = kernel.NewLocation(kernel.Coordinate(locationX), kernel.Coordinate(locationY))
		if err != nil {
			return nil, err
		}
		resp.Status = order.Status(status)
		if courierID.Valid {
			cID, idErr := kernel.UUIDFromValue(courierID.UUID)
			if idErr != nil {
				return nil, idErr
			}
			resp.CourierID = &cID
		}

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
