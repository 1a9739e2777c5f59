// Package common defines shared constants and sentinel errors used across
// the TuParKing client layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Session / auth errors.
	ErrUnauthenticated = errors.New("not authenticated")
	ErrAuthRejected    = errors.New("authentication rejected")

	// Storage errors.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Reservation errors.
	ErrNotCancellable = errors.New("reservation not cancellable")
	ErrVehicleUnknown = errors.New("vehicle does not belong to the user")

	// Balance errors.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ValidationError is a client-side precondition failure. It is returned
// synchronously, before any network call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
