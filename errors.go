package birch

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateComponent is matched by every DuplicateComponentError.
	ErrDuplicateComponent = errors.New("birch: duplicate component")
	ErrEntityDestroyed    = errors.New("birch: entity destroyed")
	ErrParentCycle        = errors.New("birch: parent would create a cycle")
	ErrNilComponent       = errors.New("birch: nil component")
	ErrComponentAttached  = errors.New("birch: component already attached")
	ErrInvalidMass        = errors.New("birch: dynamic body requires mass > 0")
	ErrNoProgram          = errors.New("birch: shader source has no program")
	ErrInvalidConfig      = errors.New("birch: invalid config")
	ErrInvalidOperation   = errors.New("birch: invalid device operation")
)

// DuplicateComponentError is returned by AddComponent when the entity already
// holds a component of the same concrete type.
type DuplicateComponentError struct {
	Entity string
	Type   string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("birch: entity %q already has a %s component", e.Entity, e.Type)
}

// Is reports true for ErrDuplicateComponent.
func (e *DuplicateComponentError) Is(target error) bool {
	return target == ErrDuplicateComponent
}
