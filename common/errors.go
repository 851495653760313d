package common

import (
	"fmt"
	"runtime"

	"emperror.dev/errors"
)

// ErrWithCaller wraps the error with the name of the calling function.
func ErrWithCaller(err error) error {
	if err == nil {
		return nil
	}

	pc := make([]uintptr, 1)
	runtime.Callers(2, pc)
	fu := runtime.FuncForPC(pc[0] - 1)
	return errors.WithMessage(err, fu.Name())
}

// ValidationError signals client caused missing or malformed input. The web
// layer maps it to a 400 response carrying the field name.
type ValidationError struct {
	Field  string
	Reason string
}

func (v *ValidationError) Error() string {
	if v.Reason != "" {
		return v.Reason
	}
	return fmt.Sprintf("missing or invalid field: %s", v.Field)
}

// NewValidationError is shorthand for a ValidationError with just a reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// MissingField reports an absent required request field by name.
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field}
}
