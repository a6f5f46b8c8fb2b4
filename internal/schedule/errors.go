package schedule

import (
	"errors"
	"fmt"
)

// Booking errors surfaced to callers unmodified. The HTTP layer maps them to
// status codes; the engine never recovers from them silently.
var (
	ErrOutOfHours        = errors.New("start time is outside operating hours")
	ErrResourceNotFound  = errors.New("exam resource not found or inactive")
	ErrResourceConflict  = errors.New("resource is already booked for this window")
	ErrRequesterConflict = errors.New("requester already has a booking in this window")
	ErrNotFound          = errors.New("appointment not found")
)

// ValidationError reports a missing or unparseable input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
