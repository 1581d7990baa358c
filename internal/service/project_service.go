package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "timesheet/backend/internal/errors"
	"timesheet/backend/internal/ledger"
	"timesheet/backend/internal/model"
	"timesheet/backend/internal/repository"
)

type ProjectService struct {
	projects *repository.ProjectRepository
	logs     *repository.LogRepository
	logger   *slog.Logger
}

func NewProjectService(
	projects *repository.ProjectRepository,
	logs *repository.LogRepository,
	logger *slog.Logger,
) *ProjectService {
	return &ProjectService{
		projects: projects,
		logs:     logs,
		logger:   logger,
	}
}

// ProjectInput is the full set of editable project fields. Dates are
// "YYYY-MM-DD" or empty.
type ProjectInput struct {
	Name        string
	Description string
	Client      string
	Status      string
	StartDate   string
	EndDate     string
}

type ProjectSummary struct {
	model.Project
	TotalHours float64 `json:"totalHours"`
}

type ProjectDetails struct {
	model.Project
	TotalHours float64                 `json:"totalHours"`
	Logs       []model.LogEntry        `json:"logs"`
	Activity   []model.ProjectActivity `json:"activity"`
}

// List filters by status and by a substring of name or description.
func (s *ProjectService) List(ctx context.Context, status, search string) ([]ProjectSummary, *apperrors.APIError) {
	status = strings.TrimSpace(status)
	if status != "" && !model.IsValidProjectStatus(status) {
		return nil, apperrors.Validation("invalid_status", "status", "status must be active, inactive or completed")
	}

	projects, err := s.projects.List(ctx, repository.ProjectFilter{
		Status: status,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "list projects failed", slog.Any("error", err))
		return nil, apperrors.Internal("failed to list projects")
	}
	totals, err := s.logs.ProjectTotals(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "project totals failed", slog.Any("error", err))
		return nil, apperrors.Internal("failed to list projects")
	}

	summaries := make([]ProjectSummary, 0, len(projects))
	for _, project := range projects {
		summaries = append(summaries, ProjectSummary{
			Project:    project,
			TotalHours: ledger.RoundHours(totals[project.ID]),
		})
	}
	return summaries, nil
}

func (s *ProjectService) Create(ctx context.Context, admin model.User, in ProjectInput) (*model.Project, *apperrors.APIError) {
	now := time.Now().UTC()
	project := model.Project{
		ID:        uuid.NewString(),
		CreatedBy: admin.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if apiErr := applyProjectInput(&project, in); apiErr != nil {
		return nil, apiErr
	}

	activity := projectActivity(project.ID, model.ProjectActionCreated, admin, "project created")
	if err := s.projects.Create(ctx, &project, activity); err != nil {
		s.logger.ErrorContext(ctx, "create project failed", slog.Any("error", err))
		return nil, apperrors.Internal("failed to create project")
	}

	s.logger.InfoContext(ctx, "project created",
		slog.String("project_id", project.ID),
		slog.Int("nr", project.Nr),
	)
	return &project, nil
}

// Update replaces every editable field. Number and creator never change.
func (s *ProjectService) Update(ctx context.Context, admin model.User, id string, in ProjectInput) (*model.Project, *apperrors.APIError) {
	project, apiErr := s.get(ctx, id)
	if apiErr != nil {
		return nil, apiErr
	}
	if apiErr := applyProjectInput(project, in); apiErr != nil {
		return nil, apiErr
	}
	project.UpdatedAt = time.Now().UTC()

	activity := projectActivity(project.ID, model.ProjectActionUpdated, admin, "project updated")
	if err := s.projects.Update(ctx, project, activity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("project_not_found", "project not found")
		}
		s.logger.ErrorContext(ctx, "update project failed", slog.Any("error", err))
		return nil, apperrors.Internal("failed to update project")
	}

	s.logger.InfoContext(ctx, "project updated", slog.String("project_id", project.ID))
	return project, nil
}

// Delete removes a project with no logged hours.
func (s *ProjectService) Delete(ctx context.Context, admin model.User, id string) *apperrors.APIError {
	if _, apiErr := s.get(ctx, id); apiErr != nil {
		return apiErr
	}

	count, err := s.projects.CountLogs(ctx, id)
	if err != nil {
		return apperrors.Internal("failed to delete project")
	}
	if count > 0 {
		return apperrors.Conflict("project_has_logs", "project has logged hours", map[string]int{"logCount": count})
	}

	activity := projectActivity(id, model.ProjectActionDeleted, admin, "project deleted")
	if err := s.projects.Delete(ctx, id, activity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("project_not_found", "project not found")
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return apperrors.Conflict("project_has_logs", "project has logged hours", nil)
		}
		s.logger.ErrorContext(ctx, "delete project failed", slog.Any("error", err))
		return apperrors.Internal("failed to delete project")
	}

	s.logger.InfoContext(ctx, "project deleted", slog.String("project_id", id))
	return nil
}

// Details returns the project with all of its log entries, newest first.
func (s *ProjectService) Details(ctx context.Context, id string) (*ProjectDetails, *apperrors.APIError) {
	project, apiErr := s.get(ctx, id)
	if apiErr != nil {
		return nil, apiErr
	}

	logs, err := s.logs.ListByProject(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "list project logs failed", slog.Any("error", err))
		return nil, apperrors.Internal("failed to load project logs")
	}

	activity, err := s.projects.ListActivity(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "list project activity failed", slog.Any("error", err))
		return nil, apperrors.Internal("failed to load project activity")
	}

	var total float64
	for _, entry := range logs {
		total += entry.HoursAdded
	}
	return &ProjectDetails{
		Project:    *project,
		TotalHours: ledger.RoundHours(total),
		Logs:       logs,
		Activity:   activity,
	}, nil
}

func projectActivity(projectID, action string, user model.User, note string) *model.ProjectActivity {
	return &model.ProjectActivity{
		ProjectID: projectID,
		Action:    action,
		UserID:    user.ID,
		UserName:  user.DisplayName(),
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *ProjectService) get(ctx context.Context, id string) (*model.Project, *apperrors.APIError) {
	project, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("project_not_found", "project not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to query project")
	}
	return project, nil
}

func applyProjectInput(project *model.Project, in ProjectInput) *apperrors.APIError {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.Validation("invalid_name", "name", "name is required")
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = model.ProjectStatusActive
	}
	if !model.IsValidProjectStatus(status) {
		return apperrors.Validation("invalid_status", "status", "status must be active, inactive or completed")
	}

	startDate, apiErr := optionalDate("startDate", in.StartDate)
	if apiErr != nil {
		return apiErr
	}
	endDate, apiErr := optionalDate("endDate", in.EndDate)
	if apiErr != nil {
		return apiErr
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return apperrors.Validation("invalid_endDate", "endDate", "endDate must not be before startDate")
	}

	project.Name = name
	project.Description = strings.TrimSpace(in.Description)
	project.Client = strings.TrimSpace(in.Client)
	project.Status = status
	project.StartDate = startDate
	project.EndDate = endDate
	return nil
}

func optionalDate(field, raw string) (*time.Time, *apperrors.APIError) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	date, err := ledger.ParseDate(raw)
	if err != nil {
		return nil, apperrors.Validation("invalid_"+field, field, field+" must be YYYY-MM-DD")
	}
	return &date, nil
}
