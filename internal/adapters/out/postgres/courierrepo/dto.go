// Package courierrepo persists courier aggregates in the couriers and storage_places tables.
package courierrepo

import (
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type CourierDTO struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name          string            `gorm:"type:varchar(255);not null"`
	Speed         int               `gorm:"type:int;not null"`
	Location      LocationDTO       `gorm:"embedded;embeddedPrefix:location_"`
	StoragePlaces []StoragePlaceDTO `gorm:"foreignKey:CourierID;constraint:OnDelete:CASCADE"`
}

func (CourierDTO) TableName() string {
	return "couriers"
}

type LocationDTO struct {
	X kernel.Coordinate `gorm:"type:smallint"`
	Y kernel.Coordinate `gorm:"type:smallint"`
}

// StoragePlaceDTO rows keep the aggregate's storage place order through Position.
type StoragePlaceDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CourierID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Position    int        `gorm:"not null"`
	Name        string     `gorm:"type:varchar(255);not null"`
	TotalVolume int        `gorm:"type:int;not null"`
	OrderID     *uuid.UUID `gorm:"type:uuid;index"`
}

func (StoragePlaceDTO) TableName() string {
	return "storage_places"
}

func fromDomain(c *courier.Courier) CourierDTO {
	courierID := c.ID().Value()
	places := c.StoragePlaces()
	storagePlaces := make([]StoragePlaceDTO, 0, len(places))

	for i, sp := range places {
		var orderID *uuid.UUID
		if id := sp.OrderID(); id != nil {
			raw := id.Value()
			orderID = &raw
		}

		storagePlaces = append(storagePlaces, StoragePlaceDTO{
			ID:          sp.ID().Value(),
			CourierID:   courierID,
			Position:    i,
			Name:        sp.Name(),
			TotalVolume: sp.TotalVolume(),
			OrderID:     orderID,
		})
	}

	return CourierDTO{
		ID:    courierID,
		Name:  c.Name(),
		Speed: c.Speed(),
		Location: LocationDTO{
			X: c.Location().X(),
			Y: c.Location().Y(),
		},
		StoragePlaces: storagePlaces,
	}
}

func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromValue(dto.ID)
	if err != nil {
		return nil, err
	}

	loc, err := kernel.NewLocation(dto.Location.X, dto.Location.Y)
	if err != nil {
		return nil, err
	}

	storagePlaces := make([]*courier.StoragePlace, 0, len(dto.StoragePlaces))
	for _, spDto := range dto.StoragePlaces {
		sp, spErr := storagePlaceToDomain(spDto)
		if spErr != nil {
			return nil, spErr
		}
		storagePlaces = append(storagePlaces, sp)
	}

	return courier.RestoreCourier(id, dto.Name, dto.Speed, loc, storagePlaces)
}

func storagePlaceToDomain(dto StoragePlaceDTO) (*courier.StoragePlace, error) {
	id, err := kernel.UUIDFromValue(dto.ID)
	if err != nil {
		return nil, err
	}

	var orderID *kernel.UUID
	if dto.OrderID != nil {
		oID, orderErr := kernel.UUIDFromValue(*dto.OrderID)
		if orderErr != nil {
			return nil, orderErr
		}
		orderID = &oID
	}

	return courier.RestoreStoragePlace(id, dto.Name, dto.TotalVolume, orderID)
}
