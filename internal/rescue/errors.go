// internal/rescue/errors.go
//
// Error taxonomy for the estimation engine.
//   - ConfigurationError: bad region geometry or transition matrix. Fatal,
//     reported at construction time.
//   - InvalidEffectivenessError: an effectiveness value outside [0,1] was
//     handed to search or revision. A caller bug, never recovered here.
//
// Both types match their sentinel with errors.Is so callers can branch
// without a type assertion.

package rescue

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration        = errors.New("rescue: invalid configuration")
	ErrInvalidEffectiveness = errors.New("rescue: effectiveness out of range")
)

// ConfigurationError describes which part of a scenario is unusable.
type ConfigurationError struct {
	Field  string // e.g. "drift[1]" or "regions[2].width"
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("rescue: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidEffectivenessError carries the offending value and region index.
type InvalidEffectivenessError struct {
	Region int
	Value  float64
}

func (e *InvalidEffectivenessError) Error() string {
	return fmt.Sprintf("rescue: effectiveness %v for region %d is outside [0,1]", e.Value, e.Region+1)
}

func (e *InvalidEffectivenessError) Is(target error) bool { return target == ErrInvalidEffectiveness }
