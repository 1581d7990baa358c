package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")

	// ErrNonPositiveDuration marks a session whose end is not after its
	// start once the break is subtracted.
	ErrNonPositiveDuration = errors.New("non-positive duration")

	// ErrEntryBusy is returned when another edit or delete of the same
	// entry has not returned yet.
	ErrEntryBusy = errors.New("entry has a pending change")

	ErrEntryNotFound = errors.New("entry not found")
)

// ValidationError rejects input before any store call is made.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// RemoteError wraps a failed store call. The working set is left as it
// was before the call.
type RemoteError struct {
	Op      string
	EntryID string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.EntryID == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.EntryID, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
