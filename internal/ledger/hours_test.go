package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/backend/internal/ledger"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"08:30", 510, true},
		{"23:59", 1439, true},
		{" 16:00 ", 960, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"8:30", 0, false},
		{"+1:30", 0, false},
		{"08-30", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ledger.ParseClock(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseClock(%q) ok", tt.in)
		assert.Equal(t, tt.want, got, "ParseClock(%q)", tt.in)
	}
}

func TestComputeWorkedHours(t *testing.T) {
	tests := []struct {
		start, end string
		breakMin   int
		want       float64
	}{
		{"08:00", "16:00", 30, 7.5},
		{"09:00", "16:00", 30, 6.5},
		{"08:00", "16:00", 0, 8},
		{"08:00", "08:20", 0, 0.33},
		{"08:00", "08:10", 0, 0.17},
		{"07:45", "15:52", 37, 7.5},
		{"08:00", "16:00", 480, 0},
		{"08:00", "16:00", 600, 0},
		{"16:00", "08:00", 0, 0},
		{"08:00", "08:00", 0, 0},
	}
	for _, tt := range tests {
		got, err := ledger.ComputeWorkedHours(tt.start, tt.end, tt.breakMin)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "%s-%s break %d", tt.start, tt.end, tt.breakMin)
		assert.GreaterOrEqual(t, got, 0.0)
	}
}

func TestComputeWorkedHoursMatchesFormula(t *testing.T) {
	for start := 0; start < 24*60; start += 37 {
		for end := start + 1; end < 24*60; end += 53 {
			for _, brk := range []int{0, 15, 30, 45, 90} {
				if end-start <= brk {
					continue
				}
				got, err := ledger.ComputeWorkedHours(clock(start), clock(end), brk)
				require.NoError(t, err)
				want := ledger.RoundHours(float64(end-start-brk) / 60)
				require.InDelta(t, want, got, 1e-9)
				require.Greater(t, got, 0.0)
			}
		}
	}
}

func TestComputeWorkedHoursRejectsMalformedInput(t *testing.T) {
	_, err := ledger.ComputeWorkedHours("8am", "16:00", 0)
	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "startTime", verr.Field)

	_, err = ledger.ComputeWorkedHours("08:00", "25:00", 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "endTime", verr.Field)

	_, err = ledger.ComputeWorkedHours("08:00", "16:00", -5)
	require.ErrorIs(t, err, ledger.ErrValidation)
}

func TestSessionWorkedHoursFlagsNonPositive(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	cases := []ledger.Session{
		{Date: date, StartTime: "08:00", EndTime: "08:30", BreakMinutes: 30},
		{Date: date, StartTime: "08:00", EndTime: "08:30", BreakMinutes: 45},
		{Date: date, StartTime: "17:00", EndTime: "09:00"},
	}
	for _, session := range cases {
		hours, err := session.WorkedHours()
		assert.Zero(t, hours)
		assert.ErrorIs(t, err, ledger.ErrNonPositiveDuration)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	}

	hours, err := ledger.Session{Date: date, StartTime: "08:00", EndTime: "16:00", BreakMinutes: 30}.WorkedHours()
	require.NoError(t, err)
	assert.InDelta(t, 7.5, hours, 1e-9)
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := ledger.ComputeWorkedHours("x", "16:00", 0)
	assert.Equal(t, "validation: startTime: must be HH:MM", err.Error())
	assert.False(t, errors.Is(err, ledger.ErrNonPositiveDuration))
}

func clock(minutes int) string {
	return time.Date(2000, 1, 1, 0, minutes, 0, 0, time.UTC).Format("15:04")
}
