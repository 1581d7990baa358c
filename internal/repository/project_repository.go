package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"timesheet/backend/internal/model"
)

const projectColumns = `id, nr, name, description, client, status, start_date, end_date,
	created_by, created_at, updated_at`

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ProjectFilter narrows List. Empty fields do not filter.
type ProjectFilter struct {
	Status string
	// Search matches a substring of the name or the description.
	Search string
}

// Create assigns the next project number inside the insert transaction.
// activity, when given, is recorded in the same transaction.
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project, activity *model.ProjectActivity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var nr int
	if err := tx.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(nr), ?) + 1 FROM projects`,
		model.FirstProjectNumber-1,
	).Scan(&nr); err != nil {
		return fmt.Errorf("next project number: %w", err)
	}
	project.Nr = nr

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.Nr,
		project.Name,
		project.Description,
		project.Client,
		project.Status,
		nullableDate(project.StartDate),
		nullableDate(project.EndDate),
		project.CreatedBy,
		formatTime(project.CreatedAt),
		formatTime(project.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`,
		id,
	)
	return scanProject(row)
}

// List returns projects newest first.
func (r *ProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]model.Project, error) {
	builder := sq.Select(projectColumns).From("projects").OrderBy("created_at DESC", "nr DESC")
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.Like{"name": pattern},
			sq.Like{"description": pattern},
		})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build project query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		project, scanErr := scanProject(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project, activity *model.ProjectActivity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(
		ctx,
		`UPDATE projects
		 SET name = ?,
		     description = ?,
		     client = ?,
		     status = ?,
		     start_date = ?,
		     end_date = ?,
		     updated_at = ?
		 WHERE id = ?`,
		project.Name,
		project.Description,
		project.Client,
		project.Status,
		nullableDate(project.StartDate),
		nullableDate(project.EndDate),
		formatTime(project.UpdatedAt),
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string, activity *model.ProjectActivity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit project: %w", err)
	}
	return nil
}

// ListActivity returns the activity of a project, newest first. It works
// for deleted projects too.
func (r *ProjectRepository) ListActivity(ctx context.Context, projectID string) ([]model.ProjectActivity, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+activityColumns+` FROM project_activity WHERE project_id = ? ORDER BY rowid DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list project activity: %w", err)
	}
	defer rows.Close()

	activity := make([]model.ProjectActivity, 0)
	for rows.Next() {
		var item model.ProjectActivity
		var createdAt string
		if err := rows.Scan(
			&item.ID,
			&item.ProjectID,
			&item.Action,
			&item.UserID,
			&item.UserName,
			&item.Note,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan project activity: %w", err)
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse project activity created_at: %w", err)
		}
		activity = append(activity, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project activity: %w", err)
	}
	return activity, nil
}

const activityColumns = `id, project_id, action, user_id, user_name, note, created_at`

func insertActivity(ctx context.Context, tx *sql.Tx, activity *model.ProjectActivity) error {
	if activity == nil {
		return nil
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO project_activity (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		activity.ID,
		activity.ProjectID,
		activity.Action,
		activity.UserID,
		activity.UserName,
		activity.Note,
		formatTime(activity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record project activity: %w", err)
	}
	return nil
}

func (r *ProjectRepository) CountLogs(ctx context.Context, id string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM log_entries WHERE project_id = ?`,
		id,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count project logs: %w", err)
	}
	return count, nil
}

func nullableDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func scanProject(s scanner) (*model.Project, error) {
	project := model.Project{}
	var startDate sql.NullString
	var endDate sql.NullString
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&project.ID,
		&project.Nr,
		&project.Name,
		&project.Description,
		&project.Client,
		&project.Status,
		&startDate,
		&endDate,
		&project.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}

	if startDate.Valid {
		parsed, parseErr := parseDate(startDate.String)
		if parseErr != nil {
			return nil, fmt.Errorf("parse project start_date: %w", parseErr)
		}
		project.StartDate = &parsed
	}
	if endDate.Valid {
		parsed, parseErr := parseDate(endDate.String)
		if parseErr != nil {
			return nil, fmt.Errorf("parse project end_date: %w", parseErr)
		}
		project.EndDate = &parsed
	}
	if project.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse project created_at: %w", err)
	}
	if project.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse project updated_at: %w", err)
	}
	return &project, nil
}
