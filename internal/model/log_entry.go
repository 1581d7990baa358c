package model

import "time"

type LogEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName,omitempty"`
	ProjectID    string    `json:"projectId"`
	Date         time.Time `json:"date"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	BreakMinutes int       `json:"breakMinutes"`
	HoursAdded   float64   `json:"hoursAdded"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewLogEntry carries the fields of an entry that does not exist yet.
// HoursAdded must already be derived from the time inputs.
type NewLogEntry struct {
	UserID       string
	UserName     string
	ProjectID    string
	Date         time.Time
	StartTime    string
	EndTime      string
	BreakMinutes int
	HoursAdded   float64
	Note         string
}

// LogPatch names only the columns that change. Nil fields are left untouched.
type LogPatch struct {
	StartTime    *string
	EndTime      *string
	BreakMinutes *int
	HoursAdded   *float64
	Note         *string
}

func (p LogPatch) IsEmpty() bool {
	return p.StartTime == nil &&
		p.EndTime == nil &&
		p.BreakMinutes == nil &&
		p.HoursAdded == nil &&
		p.Note == nil
}
