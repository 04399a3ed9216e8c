package errs

import (
	"errors"
	"strings"
)

// ValidationError collects every violated constraint of one request so the
// caller sees the full list, not just the first failure.
type ValidationError struct {
	Violations []string
}

func NewValidation(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Add(violation string) {
	e.Violations = append(e.Violations, violation)
}

func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

func (e *ValidationError) Error() string {
	return "datos inválidos: " + strings.Join(e.Violations, "; ")
}

func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
