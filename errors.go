package luci

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolved is returned when a target coordinate cannot be understood.
// Any such failure aborts the whole target batch.
var ErrUnresolved = errors.New("unresolved target coordinate")

// ConfigError lists every problem found in an observation setup.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigError) add(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// orNil returns nil if no problem was recorded.
func (e *ConfigError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// CapacityError is returned when more beamlets are requested than the array can form.
type CapacityError struct {
	Targets, Subbands int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("number of targets times number of subbands (%d x %d = %d) cannot be greater than %d",
		e.Targets, e.Subbands, e.Targets*e.Subbands, MaxBeamlets)
}

// CheckBeamlets returns a *CapacityError if the requested pointings exceed MaxBeamlets.
func CheckBeamlets(nTargets, subbands int) error {
	if nTargets*subbands > MaxBeamlets {
		return &CapacityError{nTargets, subbands}
	}
	return nil
}
