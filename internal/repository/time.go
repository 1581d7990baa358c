package repository

import "time"

const dateLayout = "2006-01-02"

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Calendar days are stored as "YYYY-MM-DD" so that no offset can move them.
func parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, raw, time.UTC)
}

func formatDate(t time.Time) string {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}
