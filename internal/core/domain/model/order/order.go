package order

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/ddd"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor") //nolint:staticcheck // type name

type Order struct {
	ddd.EventRecorder

	id        kernel.UUID
	courierID *kernel.UUID
	location  kernel.Location
	volume    int
	status    Status

	guard guard.ConstructorGuard
}

// NewOrder creates an order in the Created status without a courier.
func NewOrder(id kernel.UUID, location kernel.Location, volume int) (*Order, error) {
	o := &Order{
		status: Created,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setLocation(location),
		o.setVolume(volume),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds a persisted order. It raises no events.
func RestoreOrder(
	id kernel.UUID,
	location kernel.Location,
	volume int,
	status Status,
	courierID *kernel.UUID,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setLocation(location),
		o.setVolume(volume),
		status.Validate(),
		status.ValidateCanHaveCourier(courierID != nil),
	); err != nil {
		return nil, err
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
		id := *courierID
		o.courierID = &id
	}
	o.status = status

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Location() kernel.Location {
	return o.location
}

func (o *Order) Volume() int {
	return o.volume
}

func (o *Order) Status() Status {
	return o.status
}

// CourierID returns nil until the order is assigned.
func (o *Order) CourierID() *kernel.UUID {
	if o.courierID == nil {
		return nil
	}
	id := *o.courierID
	return &id
}

// Assign binds the order to a courier. Only a Created order can be assigned.
func (o *Order) Assign(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.courierID = &courierID
	o.Record(newStatusChangedEvent(o))
	return nil
}

// Complete finishes an Assigned order.
func (o *Order) Complete() error {
	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.Record(newStatusChangedEvent(o))
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.location = location
	return nil
}

func (o *Order) setVolume(volume int) error {
	if volume <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("volume", fmt.Errorf("%d is not greater than 0", volume))
	}
	o.volume = volume
	return nil
}
