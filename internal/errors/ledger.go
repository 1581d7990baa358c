package errors

import (
	stderrors "errors"

	"timesheet/backend/internal/ledger"
	"timesheet/backend/internal/repository"
)

// FromLedger translates an error returned by a ledger operation. fallback
// is the message used for anything that maps to 500.
func FromLedger(err error, fallback string) *APIError {
	if err == nil {
		return nil
	}

	var validationErr *ledger.ValidationError
	switch {
	case stderrors.As(err, &validationErr):
		code := "invalid_" + validationErr.Field
		if stderrors.Is(err, ledger.ErrNonPositiveDuration) {
			code = "non_positive_duration"
		}
		return Validation(code, validationErr.Field, validationErr.Error())
	case stderrors.Is(err, ledger.ErrEntryBusy):
		return Conflict("entry_busy", "entry has a pending change", nil)
	case stderrors.Is(err, ledger.ErrEntryNotFound), stderrors.Is(err, repository.ErrNotFound):
		return NotFound("entry_not_found", "log entry not found")
	}
	return Internal(fallback)
}
