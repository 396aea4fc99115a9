// Package orderrepo persists order aggregates in the orders table.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

type OrderDTO struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	CourierID *uuid.UUID  `gorm:"type:uuid;index"`
	Location  LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	Volume    int         `gorm:"not null"`
	Status    int         `gorm:"not null;index:idx_orders_status_created_at,priority:1"`
	CreatedAt time.Time   `gorm:"not null;index:idx_orders_status_created_at,priority:2"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type LocationDTO struct {
	X kernel.Coordinate `gorm:"type:smallint"`
	Y kernel.Coordinate `gorm:"type:smallint"`
}

// fromDomain leaves CreatedAt zero; GORM fills it on insert and skips it on update.
func fromDomain(o *order.Order) OrderDTO {
	var courierID *uuid.UUID
	if id := o.CourierID(); id != nil {
		raw := id.Value()
		courierID = &raw
	}

	return OrderDTO{
		ID:        o.ID().Value(),
		CourierID: courierID,
		Location: LocationDTO{
			X: o.Location().X(),
			Y: o.Location().Y(),
		},
		Volume: o.Volume(),
		Status: int(o.Status()),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromValue(dto.ID)
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromValue(*dto.CourierID)
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	loc, err := kernel.NewLocation(dto.Location.X, dto.Location.Y)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(id, loc, dto.Volume, order.Status(dto.Status), courierID)
}
