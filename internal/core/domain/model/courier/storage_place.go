package courier

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrStoragePlaceIsOccupied       = errors.New("storage place is already occupied")
	ErrStoragePlaceVolumeExceeded   = errors.New("order volume exceeds storage place volume")
	ErrStoragePlaceIsNotConstructed = errors.New("StoragePlace must be created via NewStoragePlace constructor")
)

// StoragePlace is a named slot that holds at most one order.
type StoragePlace struct {
	id          kernel.UUID
	name        string
	totalVolume int
	orderID     *kernel.UUID

	guard guard.ConstructorGuard
}

func NewStoragePlace(id kernel.UUID, name string, totalVolume int) (*StoragePlace, error) {
	return RestoreStoragePlace(id, name, totalVolume, nil)
}

// RestoreStoragePlace rebuilds a persisted place, possibly occupied by orderID.
func RestoreStoragePlace(id kernel.UUID, name string, totalVolume int, orderID *kernel.UUID) (*StoragePlace, error) {
	place := &StoragePlace{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		place.setID(id),
		place.setName(name),
		place.setTotalVolume(totalVolume),
		place.setOrderID(orderID),
	); err != nil {
		return nil, err
	}

	return place, nil
}

func (s *StoragePlace) Validate() error {
	if s == nil {
		return ErrStoragePlaceIsNotConstructed
	}
	return s.guard.Validate(ErrStoragePlaceIsNotConstructed)
}

func (s *StoragePlace) IsEqual(other *StoragePlace) bool {
	return other != nil && s.id.IsEqual(other.id)
}

func (s *StoragePlace) ID() kernel.UUID {
	return s.id
}

func (s *StoragePlace) Name() string {
	return s.name
}

func (s *StoragePlace) TotalVolume() int {
	return s.totalVolume
}

func (s *StoragePlace) OrderID() *kernel.UUID {
	if s.orderID == nil {
		return nil
	}
	id := *s.orderID
	return &id
}

func (s *StoragePlace) IsEmpty() bool {
	return s.orderID == nil
}

// CanStore reports whether the place is empty and large enough for volume.
func (s *StoragePlace) CanStore(volume int) (bool, error) {
	if err := validateVolume("volume", volume); err != nil {
		return false, err
	}

	return s.IsEmpty() && s.totalVolume >= volume, nil
}

func (s *StoragePlace) Store(orderID kernel.UUID, volume int) error {
	if err := errors.Join(orderID.Validate(), validateVolume("volume", volume)); err != nil {
		return err
	}

	if !s.IsEmpty() {
		return ErrStoragePlaceIsOccupied
	}
	if volume > s.totalVolume {
		return ErrStoragePlaceVolumeExceeded
	}

	s.orderID = &orderID
	return nil
}

// Clear drops the occupant. Clearing an empty place is a no-op.
func (s *StoragePlace) Clear() {
	s.orderID = nil
}

func (s *StoragePlace) holds(orderID kernel.UUID) bool {
	return s.orderID != nil && s.orderID.IsEqual(orderID)
}

func (s *StoragePlace) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	s.id = id
	return nil
}

func (s *StoragePlace) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}

	s.name = name
	return nil
}

func (s *StoragePlace) setTotalVolume(totalVolume int) error {
	if err := validateVolume("totalVolume", totalVolume); err != nil {
		return err
	}

	s.totalVolume = totalVolume
	return nil
}

func (s *StoragePlace) setOrderID(orderID *kernel.UUID) error {
	if orderID == nil {
		return nil
	}
	if err := orderID.Validate(); err != nil {
		return err
	}

	id := *orderID
	s.orderID = &id
	return nil
}

func validateVolume(name string, volume int) error {
	if volume <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%d is not greater than 0", volume))
	}
	return nil
}
