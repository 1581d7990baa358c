package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"timesheet/backend/internal/model"
)

const dateLayout = "2006-01-02"

// MaxWeekOffset bounds how far SelectWeek may look from the current week,
// about a hundred years either way.
const MaxWeekOffset = 5300

// WeekKey identifies an ISO-8601 week.
type WeekKey struct {
	Year int `json:"isoYear"`
	Week int `json:"isoWeek"`
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%d-W%02d", k.Year, k.Week)
}

// NormalizeDate keeps the calendar day of t as read in t's own location
// and returns it as UTC midnight. Week math only ever sees these values.
func NormalizeDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp and returns the
// normalized calendar day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, newValidationError("date", "is required")
	}
	if t, err := time.ParseInLocation(dateLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return NormalizeDate(t), nil
	}
	return time.Time{}, newValidationError("date", "must be YYYY-MM-DD")
}

// FormatDate renders a normalized date as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return NormalizeDate(t).Format(dateLayout)
}

// ISOWeekKey returns the ISO week of the calendar day of date. Week 1 is the
// week holding the year's first Thursday, so late December can belong to the
// next ISO year and early January to the previous one.
func ISOWeekKey(date time.Time) WeekKey {
	year, week := NormalizeDate(date).ISOWeek()
	return WeekKey{Year: year, Week: week}
}

// MondayOfISOWeek returns the UTC Monday that starts the given ISO week.
func MondayOfISOWeek(isoYear, isoWeek int) time.Time {
	// January 4th is always in week 1.
	jan4 := time.Date(isoYear, time.January, 4, 0, 0, 0, 0, time.UTC)
	return jan4.AddDate(0, 0, 1-isoWeekday(jan4)+(isoWeek-1)*7)
}

// isoWeekday maps Monday..Sunday to 1..7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekView is one ISO week of entries, Monday to Sunday, with their total.
type WeekView struct {
	Label  string           `json:"isoWeekLabel"`
	Key    WeekKey          `json:"week"`
	Monday time.Time        `json:"monday"`
	Sunday time.Time        `json:"sunday"`
	Items  []model.LogEntry `json:"items"`
	Total  float64          `json:"total"`
}

// SelectWeek picks the entries of the ISO week weekOffset weeks away from
// the week containing now, sorted by date, and sums their hours. Membership
// depends only on each entry's own date.
func SelectWeek(entries []model.LogEntry, weekOffset int, now time.Time) WeekView {
	current := ISOWeekKey(now)
	monday := MondayOfISOWeek(current.Year, current.Week).AddDate(0, 0, weekOffset*7)
	target := ISOWeekKey(monday)

	items := make([]model.LogEntry, 0)
	for _, entry := range entries {
		if ISOWeekKey(entry.Date) == target {
			items = append(items, entry)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return entryBefore(items[i], items[j])
	})

	var total float64
	for _, entry := range items {
		total += entry.HoursAdded
	}

	return WeekView{
		Label:  target.String(),
		Key:    target,
		Monday: monday,
		Sunday: monday.AddDate(0, 0, 6),
		Items:  items,
		Total:  total,
	}
}

func entryBefore(a, b model.LogEntry) bool {
	da, db := NormalizeDate(a.Date), NormalizeDate(b.Date)
	if !da.Equal(db) {
		return da.Before(db)
	}
	if a.StartTime != b.StartTime {
		return a.StartTime < b.StartTime
	}
	return a.ID < b.ID
}
