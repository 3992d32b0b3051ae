package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrConfiguration indicates an invalid or ill-conditioned setting.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrSurfaceUnavailable indicates the drawing surface could not be acquired.
	ErrSurfaceUnavailable = errors.New("dynamo: drawing surface unavailable")

	// ErrUnknownBody indicates a body id that is not registered in the world.
	ErrUnknownBody = errors.New("dynamo: unknown body")

	// ErrUnknownConstraint indicates a stale or foreign constraint handle.
	ErrUnknownConstraint = errors.New("dynamo: unknown constraint")

	// ErrDisposed indicates an operation on a scene that was already torn down.
	ErrDisposed = errors.New("dynamo: scene disposed")

	// ErrDuplicateBinding indicates a render proxy bound to more than one body.
	ErrDuplicateBinding = errors.New("dynamo: proxy already bound")
)

// ConfigError describes a rejected setting. It always unwraps to
// ErrConfiguration.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dynamo: invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// Invalid is shorthand for building a *ConfigError.
func Invalid(field string, value any, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}

// WarningKind classifies a numerical instability.
type WarningKind int

const (
	WarnPenetration WarningKind = iota
	WarnStretch
	WarnNonFinite
)

func (k WarningKind) String() string {
	switch k {
	case WarnPenetration:
		return "penetration"
	case WarnStretch:
		return "stretch"
	case WarnNonFinite:
		return "non-finite"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal numerical instability observed during a step.
// Stepping continues after a warning is recorded.
type Warning struct {
	Kind      WarningKind
	Step      int
	Time      float64
	Subject   string
	Magnitude float64
}

func (w Warning) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s %s: %.4g", w.Step, w.Time, w.Subject, w.Kind, w.Magnitude)
}
