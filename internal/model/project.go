package model

import "time"

const (
	ProjectStatusActive    = "active"
	ProjectStatusInactive  = "inactive"
	ProjectStatusCompleted = "completed"
)

// FirstProjectNumber is the number given to the first project created.
const FirstProjectNumber = 111

type Project struct {
	ID          string     `json:"id"`
	Nr          int        `json:"nr"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Client      string     `json:"client,omitempty"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func IsValidProjectStatus(status string) bool {
	return status == ProjectStatusActive ||
		status == ProjectStatusInactive ||
		status == ProjectStatusCompleted
}

const (
	ProjectActionCreated = "created"
	ProjectActionUpdated = "updated"
	ProjectActionDeleted = "deleted"
)

// ProjectActivity records who changed a project and how. Rows outlive the
// project they describe.
type ProjectActivity struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Action    string    `json:"action"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
