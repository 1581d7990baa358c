package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "timesheet/backend/internal/errors"
	"timesheet/backend/internal/ledger"
	"timesheet/backend/internal/model"
	"timesheet/backend/internal/repository"
)

// LogService serves one user's time log. Each call loads a fresh Ledger
// for the owner; the Guard is shared so that two requests cannot mutate
// the same entry at once.
type LogService struct {
	logs     *repository.LogRepository
	projects *repository.ProjectRepository
	users    *repository.UserRepository
	guard    *ledger.Guard
	now      func() time.Time
	logger   *slog.Logger
}

type LogServiceOption func(*LogService)

func WithLogClock(now func() time.Time) LogServiceOption {
	return func(s *LogService) {
		s.now = now
	}
}

func NewLogService(
	logs *repository.LogRepository,
	projects *repository.ProjectRepository,
	users *repository.UserRepository,
	logger *slog.Logger,
	opts ...LogServiceOption,
) *LogService {
	s := &LogService{
		logs:     logs,
		projects: projects,
		users:    users,
		guard:    ledger.NewGuard(),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SubmitInput struct {
	ProjectID    string
	Date         string
	StartTime    string
	EndTime      string
	BreakMinutes int
	Note         string
}

func (s *LogService) open(ctx context.Context, user model.User) (*ledger.Ledger, *apperrors.APIError) {
	book := ledger.New(
		s.logs,
		ledger.Owner{ID: user.ID, Name: user.DisplayName()},
		ledger.WithGuard(s.guard),
		ledger.WithClock(s.now),
	)
	if err := book.Load(ctx); err != nil {
		s.logger.ErrorContext(ctx, "load ledger failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return nil, apperrors.Internal("failed to load log entries")
	}
	return book, nil
}

// Week returns the caller's week weekOffset weeks from the current one.
func (s *LogService) Week(ctx context.Context, user model.User, weekOffset int) (*ledger.WeekView, *apperrors.APIError) {
	book, apiErr := s.open(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	view := book.Week(weekOffset)
	return &view, nil
}

// UserWeek is the admin view of another user's week.
func (s *LogService) UserWeek(ctx context.Context, userID string, weekOffset int) (*ledger.WeekView, *apperrors.APIError) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user_not_found", "user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to query user")
	}
	return s.Week(ctx, *user, weekOffset)
}

// Submit stores a new workday for the caller against an active project.
func (s *LogService) Submit(ctx context.Context, user model.User, in SubmitInput) (*model.LogEntry, *apperrors.APIError) {
	date, err := ledger.ParseDate(in.Date)
	if err != nil {
		return nil, apperrors.FromLedger(err, "invalid date")
	}
	draft := ledger.Draft{
		ProjectID:    in.ProjectID,
		Date:         date,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		BreakMinutes: in.BreakMinutes,
		Note:         in.Note,
	}
	if _, err := draft.Validate(); err != nil {
		return nil, apperrors.FromLedger(err, "invalid log entry")
	}

	project, err := s.projects.GetByID(ctx, draft.ProjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("project_not_found", "project not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to query project")
	}
	if project.Status != model.ProjectStatusActive {
		return nil, apperrors.Validation("project_not_active", "projectId", "project is not active")
	}

	book := ledger.New(
		s.logs,
		ledger.Owner{ID: user.ID, Name: user.DisplayName()},
		ledger.WithGuard(s.guard),
		ledger.WithClock(s.now),
	)
	entry, err := book.Submit(ctx, draft)
	if err != nil {
		s.logger.ErrorContext(ctx, "submit log entry failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return nil, apperrors.FromLedger(err, "failed to save log entry")
	}

	s.logger.InfoContext(ctx, "log entry submitted",
		slog.String("user_id", user.ID),
		slog.String("entry_id", entry.ID),
		slog.Float64("hours", entry.HoursAdded),
	)
	return entry, nil
}

// Edit applies patch to one of the caller's entries. Entries of other
// users are reported as not found.
func (s *LogService) Edit(ctx context.Context, user model.User, entryID string, patch ledger.Patch) (*model.LogEntry, *apperrors.APIError) {
	book, apiErr := s.open(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	entry, err := book.Edit(ctx, entryID, patch)
	if err != nil {
		s.logMutationError(ctx, "edit", user.ID, entryID, err)
		return nil, apperrors.FromLedger(err, "failed to update log entry")
	}

	s.logger.InfoContext(ctx, "log entry edited",
		slog.String("user_id", user.ID),
		slog.String("entry_id", entryID),
	)
	return entry, nil
}

func (s *LogService) Delete(ctx context.Context, user model.User, entryID string) *apperrors.APIError {
	book, apiErr := s.open(ctx, user)
	if apiErr != nil {
		return apiErr
	}

	if err := book.Delete(ctx, entryID); err != nil {
		s.logMutationError(ctx, "delete", user.ID, entryID, err)
		return apperrors.FromLedger(err, "failed to delete log entry")
	}

	s.logger.InfoContext(ctx, "log entry deleted",
		slog.String("user_id", user.ID),
		slog.String("entry_id", entryID),
	)
	return nil
}

func (s *LogService) logMutationError(ctx context.Context, op, userID, entryID string, err error) {
	var remote *ledger.RemoteError
	if !errors.As(err, &remote) {
		return
	}
	s.logger.ErrorContext(ctx, "log entry "+op+" failed",
		slog.String("user_id", userID),
		slog.String("entry_id", entryID),
		slog.Any("error", err),
	)
}
