package errors

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/backend/internal/ledger"
	"timesheet/backend/internal/repository"
)

func TestFromLedger(t *testing.T) {
	_, nonPositive := ledger.Session{
		Date:      time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "09:00",
	}.WorkedHours()
	require.Error(t, nonPositive)

	_, malformed := ledger.ComputeWorkedHours("9am", "17:00", 0)
	require.Error(t, malformed)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"non-positive", nonPositive, http.StatusBadRequest, "non_positive_duration"},
		{"malformed clock", malformed, http.StatusBadRequest, "invalid_startTime"},
		{"busy", ledger.ErrEntryBusy, http.StatusConflict, "entry_busy"},
		{"unknown entry", ledger.ErrEntryNotFound, http.StatusNotFound, "entry_not_found"},
		{
			"row gone remotely",
			&ledger.RemoteError{Op: "update", EntryID: "e1", Err: fmt.Errorf("wrap: %w", repository.ErrNotFound)},
			http.StatusNotFound,
			"entry_not_found",
		},
		{
			"store failure",
			&ledger.RemoteError{Op: "delete", EntryID: "e1", Err: fmt.Errorf("disk I/O error")},
			http.StatusInternalServerError,
			"internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := FromLedger(tc.err, "failed")
			require.NotNil(t, apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.code, apiErr.Code)
		})
	}

	assert.Nil(t, FromLedger(nil, "failed"))
}

func TestValidationCarriesField(t *testing.T) {
	apiErr := Validation("invalid_date", "date", "bad date")
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, map[string]string{"field": "date"}, apiErr.Details)
}

func TestAPIErrorString(t *testing.T) {
	apiErr := Conflict("entry_busy", "entry has a pending change", nil)
	assert.Equal(t, "409 entry_busy: entry has a pending change", apiErr.Error())
	assert.Nil(t, apiErr.Details)

	assert.Equal(t, "Not Found", New(http.StatusNotFound, "x", "").Message)
}
