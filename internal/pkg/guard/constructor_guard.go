// Package guard provides ConstructorGuard, a marker embedded in value objects and
// commands so that zero values can be told apart from instances built by their
// constructors.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes a nil error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the embedding value was built by its constructor.
//
// Example:
//
//	var ErrWaypointNotConstructed = errors.New("Waypoint must be created via NewWaypoint")
//
//	type Waypoint struct {
//	    index int
//	    guard guard.ConstructorGuard
//	}
//
//	func (w Waypoint) Validate() error {
//	    return w.guard.Validate(ErrWaypointNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that marks its owner as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
