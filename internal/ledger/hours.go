package ledger

import (
	"math"
	"strings"
	"time"
)

// ParseClock converts a 24-hour "HH:MM" string to minutes since midnight.
func ParseClock(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if len(value) != 5 || value[2] != ':' {
		return 0, false
	}
	hour, ok := twoDigits(value[:2])
	if !ok || hour > 23 {
		return 0, false
	}
	minute, ok := twoDigits(value[3:])
	if !ok || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// ComputeWorkedHours returns (end - start - break) in hours, floored at 0
// and rounded to two decimals. Malformed clock strings and negative breaks
// are validation errors; a zero result is not.
func ComputeWorkedHours(startTime, endTime string, breakMinutes int) (float64, error) {
	start, ok := ParseClock(startTime)
	if !ok {
		return 0, newValidationError("startTime", "must be HH:MM")
	}
	end, ok := ParseClock(endTime)
	if !ok {
		return 0, newValidationError("endTime", "must be HH:MM")
	}
	if breakMinutes < 0 {
		return 0, newValidationError("breakMinutes", "must not be negative")
	}
	return hoursFromMinutes(end - start - breakMinutes), nil
}

func hoursFromMinutes(worked int) float64 {
	if worked <= 0 {
		return 0
	}
	return RoundHours(float64(worked) / 60)
}

// RoundHours rounds to two decimal places.
func RoundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}

// Session is one workday as typed by a user.
type Session struct {
	Date         time.Time
	StartTime    string
	EndTime      string
	BreakMinutes int
}

// WorkedHours computes the hours for the session and rejects a
// non-positive result, so a zero-hour session can never be stored.
func (s Session) WorkedHours() (float64, error) {
	hours, err := ComputeWorkedHours(s.StartTime, s.EndTime, s.BreakMinutes)
	if err != nil {
		return 0, err
	}
	if hours <= 0 {
		return 0, &ValidationError{
			Field:   "endTime",
			Message: "end time must be after start time, accounting for breaks",
			Err:     ErrNonPositiveDuration,
		}
	}
	return hours, nil
}
