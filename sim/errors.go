package sim

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by Engine.Lattice and Engine.Step before any
// initializer has succeeded.
var ErrNotInitialized = errors.New("lattice has not been initialized")

// ConfigurationError reports a caller-supplied parameter the engine cannot
// honor. The engine state is left untouched when one is returned.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
