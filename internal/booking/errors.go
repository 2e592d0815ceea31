package booking

import (
	"errors"
	"fmt"
)

var (
	ErrIncompletePassengerInfo = errors.New("please fill in all passenger details")
	ErrInvalidDateOfBirth      = errors.New("date of birth must be a valid date that is not in the future")
	ErrMissingContact          = errors.New("please provide a contact phone number")
	ErrSeatCountMismatch       = errors.New("selected seats do not match the number of passengers")
	ErrBookingFailed           = errors.New("booking failed")
)

// PassengerError points a validation failure at one passenger slot.
type PassengerError struct {
	Index int // 0-based slot, same as the seat it pairs with
	Field string
	Err   error
}

func (e *PassengerError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("passenger %d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("passenger %d: %s: %v", e.Index+1, e.Field, e.Err)
}

func (e *PassengerError) Unwrap() error { return e.Err }

// RejectionError is returned by a Booker when the booking service refused the
// request. Message is shown to the user as is.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

// Reject builds a RejectionError with a formatted message.
func Reject(format string, args ...any) error {
	return &RejectionError{Message: fmt.Sprintf(format, args...)}
}

// FailedError is what Submit returns for a rejected booking. It matches
// ErrBookingFailed and keeps the service's message verbatim.
type FailedError struct {
	Message string
}

func (e *FailedError) Error() string { return e.Message }

func (e *FailedError) Is(target error) bool { return target == ErrBookingFailed }
