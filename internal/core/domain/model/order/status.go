package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

type Status int

const (
	Unknown Status = iota
	Created
	Assigned
	Completed
)

var statusNames = map[Status]string{
	Created:   "Created",
	Assigned:  "Assigned",
	Completed: "Completed",
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// ParseStatus is the inverse of String.
func ParseStatus(name string) (Status, error) {
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", name))
}

// ValidateCanHaveCourier checks that a courier reference is present exactly for Assigned and Completed.
func (s Status) ValidateCanHaveCourier(hasCourier bool) error {
	needsCourier := s == Assigned || s == Completed
	if hasCourier == needsCourier {
		return nil
	}
	if hasCourier {
		return errs.NewValueIsInvalidErrorWithCause("courierID", fmt.Errorf("%s order cannot have a courier", s))
	}
	return errs.NewValueIsRequiredErrorWithCause("courierID", fmt.Errorf("%s order must have a courier", s))
}

func (s Status) Assign() (Status, error) {
	if s != Created {
		return Unknown, errs.NewStateConflictError("assign", s)
	}
	return Assigned, nil
}

func (s Status) Complete() (Status, error) {
	if s != Assigned {
		return Unknown, errs.NewStateConflictError("complete", s)
	}
	return Completed, nil
}
