// Package guard detects values that bypassed their constructor.
//
// Domain types embed a ConstructorGuard set only by their New*/Restore* functions,
// so a zero value fails Validate.
package guard

import "errors"

var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

type ConstructorGuard struct {
	isConstructed bool
}

func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns err (or ErrDefaultConstructorGuard when err is nil) for a zero-value guard.
func (g ConstructorGuard) Validate(err error) error {
	if g.isConstructed {
		return nil
	}
	if err == nil {
		return ErrDefaultConstructorGuard
	}
	return err
}
