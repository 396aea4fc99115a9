package kernel

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Coordinate is a single grid axis value.
type Coordinate int16

const (
	LocationMinX Coordinate = 1
	LocationMinY Coordinate = 1
	LocationMaxX Coordinate = 10
	LocationMaxY Coordinate = 10
)

var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation or NewRandomLocation constructors")

// Location is a point on the bounded delivery grid. Distances between locations
// are Manhattan distances, couriers never move diagonally.
type Location struct { //nolint:recvcheck //using for validation
	x     Coordinate
	y     Coordinate
	guard guard.ConstructorGuard
}

// NewLocation returns a ValueIsOutOfRangeError for every coordinate outside the grid.
func NewLocation(x Coordinate, y Coordinate) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setX(x), loc.setY(y)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// NewRandomLocation picks a location uniformly over the whole grid.
func NewRandomLocation(rnd RandomSource) (Location, error) {
	if rnd == nil {
		return Location{}, errs.NewValueIsRequiredError("rnd")
	}

	x := LocationMinX + Coordinate(rnd.IntN(int(LocationMaxX-LocationMinX+1)))
	y := LocationMinY + Coordinate(rnd.IntN(int(LocationMaxY-LocationMinY+1)))
	return NewLocation(x, y)
}

func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l Location) X() Coordinate {
	return l.x
}

func (l Location) Y() Coordinate {
	return l.y
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%d,%d)", l.x, l.y)
}

func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l == other, nil
}

// Distance returns the number of unit steps between l and other.
func (l Location) Distance(other Location) (int, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return abs(int(l.x)-int(other.x)) + abs(int(l.y)-int(other.y)), nil
}

func (l *Location) setX(x Coordinate) error {
	if x < LocationMinX || x > LocationMaxX {
		return errs.NewValueIsOutOfRangeError("x", x, LocationMinX, LocationMaxX)
	}

	l.x = x
	return nil
}

func (l *Location) setY(y Coordinate) error {
	if y < LocationMinY || y > LocationMaxY {
		return errs.NewValueIsOutOfRangeError("y", y, LocationMinY, LocationMaxY)
	}

	l.y = y
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
