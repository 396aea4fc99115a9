package courier

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultBagName   = "Bag"
	DefaultBagVolume = 10
)

var (
	ErrNameIsRequired          = errs.NewValueIsRequiredError("name")
	ErrSpeedIsRequired         = errs.NewValueIsRequiredError("speed")
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor") //nolint:staticcheck // type name
	ErrNoSuitableStoragePlace  = errors.New("no storage place can hold the order")
	ErrOrderNotCarried         = errors.New("order is not carried by the courier")
)

type Courier struct {
	id            kernel.UUID
	name          string
	speed         int
	location      kernel.Location
	storagePlaces []*StoragePlace

	guard guard.ConstructorGuard
}

// NewCourier creates a free courier carrying the default bag.
func NewCourier(id kernel.UUID, name string, speed int, location kernel.Location) (*Courier, error) {
	c := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setSpeed(speed),
		c.setLocation(location),
		c.AddStoragePlace(DefaultBagName, DefaultBagVolume),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier rebuilds a persisted courier. The storage place order is kept as given.
func RestoreCourier(
	id kernel.UUID,
	name string,
	speed int,
	location kernel.Location,
	storagePlaces []*StoragePlace,
) (*Courier, error) {
	c := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setSpeed(speed),
		c.setLocation(location),
		c.setStoragePlaces(storagePlaces),
	); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

func (c *Courier) ID() kernel.UUID {
	return c.id
}

func (c *Courier) Name() string {
	return c.name
}

func (c *Courier) Speed() int {
	return c.speed
}

func (c *Courier) Location() kernel.Location {
	return c.location
}

func (c *Courier) StoragePlaces() []*StoragePlace {
	out := make([]*StoragePlace, len(c.storagePlaces))
	copy(out, c.storagePlaces)
	return out
}

// IsFree reports whether every storage place is empty.
func (c *Courier) IsFree() bool {
	for _, place := range c.storagePlaces {
		if !place.IsEmpty() {
			return false
		}
	}
	return true
}

func (c *Courier) AddStoragePlace(name string, volume int) error {
	place, err := NewStoragePlace(kernel.NewUUID(), name, volume)
	if err != nil {
		return err
	}

	c.storagePlaces = append(c.storagePlaces, place)
	return nil
}

func (c *Courier) CanTakeOrder(o *order.Order) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}

	place, err := c.bestFitFor(o.Volume())
	if err != nil {
		return false, err
	}

	return place != nil, nil
}

// TakeOrder stores the order in the smallest storage place that can hold it.
func (c *Courier) TakeOrder(o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	place, err := c.bestFitFor(o.Volume())
	if err != nil {
		return err
	}
	if place == nil {
		return fmt.Errorf("courier %s, order volume %d: %w", c.id, o.Volume(), ErrNoSuitableStoragePlace)
	}

	return place.Store(o.ID(), o.Volume())
}

// CompleteOrder clears the storage place holding the order and no other.
func (c *Courier) CompleteOrder(o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	for _, place := range c.storagePlaces {
		if place.holds(o.ID()) {
			place.Clear()
			return nil
		}
	}

	return errs.NewObjectNotFoundErrorWithCause("orderID", o.ID().String(), ErrOrderNotCarried)
}

// CalculateTimeToLocation returns the number of ticks needed to reach target.
func (c *Courier) CalculateTimeToLocation(target kernel.Location) (float64, error) {
	distance, err := c.location.Distance(target)
	if err != nil {
		return 0, err
	}

	return float64(distance) / float64(c.speed), nil
}

// Move advances the courier by at most speed steps towards target, X axis first.
func (c *Courier) Move(target kernel.Location) error {
	if err := target.Validate(); err != nil {
		return err
	}

	budget := c.speed

	dx := clamp(int(target.X())-int(c.location.X()), budget)
	budget -= abs(dx)

	dy := clamp(int(target.Y())-int(c.location.Y()), budget)

	next, err := kernel.NewLocation(
		c.location.X()+kernel.Coordinate(dx), //nolint:gosec // bounded by the grid
		c.location.Y()+kernel.Coordinate(dy), //nolint:gosec // bounded by the grid
	)
	if err != nil {
		return err
	}

	c.location = next
	return nil
}

func (c *Courier) bestFitFor(volume int) (*StoragePlace, error) {
	var best *StoragePlace
	for _, place := range c.storagePlaces {
		ok, err := place.CanStore(volume)
		if err != nil {
			return nil, err
		}
		if ok && (best == nil || place.TotalVolume() < best.TotalVolume()) {
			best = place
		}
	}

	return best, nil
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}

func (c *Courier) setSpeed(speed int) error {
	if speed <= 0 {
		return ErrSpeedIsRequired
	}

	c.speed = speed
	return nil
}

func (c *Courier) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}

func (c *Courier) setStoragePlaces(places []*StoragePlace) error {
	if len(places) == 0 {
		return errs.NewValueIsRequiredError("storagePlaces")
	}

	for _, place := range places {
		if err := place.Validate(); err != nil {
			return err
		}
	}

	c.storagePlaces = make([]*StoragePlace, len(places))
	copy(c.storagePlaces, places)
	return nil
}

// clamp limits v to [-limit, limit].
func clamp(v, limit int) int {
	return max(-limit, min(v, limit))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
