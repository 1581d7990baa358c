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

const logColumns = `id, user_id, user_name, project_id, entry_date, start_time, end_time,
	break_minutes, hours_added, note, created_at, updated_at`

type LogRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewLogRepository(db *sql.DB) *LogRepository {
	return &LogRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *LogRepository) Create(ctx context.Context, in model.NewLogEntry) (*model.LogEntry, error) {
	now := r.now()
	entry := model.LogEntry{
		ID:           uuid.NewString(),
		UserID:       in.UserID,
		UserName:     in.UserName,
		ProjectID:    in.ProjectID,
		Date:         in.Date,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		BreakMinutes: in.BreakMinutes,
		HoursAdded:   in.HoursAdded,
		Note:         in.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO log_entries (`+logColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.UserName,
		entry.ProjectID,
		formatDate(entry.Date),
		entry.StartTime,
		entry.EndTime,
		entry.BreakMinutes,
		entry.HoursAdded,
		entry.Note,
		formatTime(entry.CreatedAt),
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("create log entry: %w", err)
	}

	entry.Date, _ = parseDate(formatDate(entry.Date))
	return &entry, nil
}

func (r *LogRepository) GetByID(ctx context.Context, id string) (*model.LogEntry, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+logColumns+` FROM log_entries WHERE id = ?`,
		id,
	)
	return scanLogEntry(row)
}

// List returns every entry of the user in no particular order.
func (r *LogRepository) List(ctx context.Context, userID string) ([]model.LogEntry, error) {
	return r.query(ctx, sq.Select(logColumns).From("log_entries").Where(sq.Eq{"user_id": userID}))
}

func (r *LogRepository) ListByProject(ctx context.Context, projectID string) ([]model.LogEntry, error) {
	return r.query(ctx, sq.Select(logColumns).
		From("log_entries").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("entry_date DESC", "start_time DESC"))
}

// Update writes only the columns named in patch.
func (r *LogRepository) Update(ctx context.Context, id string, patch model.LogPatch) (*model.LogEntry, error) {
	builder := sq.Update("log_entries").
		Set("updated_at", formatTime(r.now())).
		Where(sq.Eq{"id": id})
	if patch.StartTime != nil {
		builder = builder.Set("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		builder = builder.Set("end_time", *patch.EndTime)
	}
	if patch.BreakMinutes != nil {
		builder = builder.Set("break_minutes", *patch.BreakMinutes)
	}
	if patch.HoursAdded != nil {
		builder = builder.Set("hours_added", *patch.HoursAdded)
	}
	if patch.Note != nil {
		builder = builder.Set("note", *patch.Note)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build log update: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update log entry: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *LogRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM log_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete log entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete log entry: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ProjectTotals sums hours per project.
func (r *LogRepository) ProjectTotals(ctx context.Context) (map[string]float64, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT project_id, COALESCE(SUM(hours_added), 0) FROM log_entries GROUP BY project_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("project totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var projectID string
		var total float64
		if err := rows.Scan(&projectID, &total); err != nil {
			return nil, fmt.Errorf("scan project total: %w", err)
		}
		totals[projectID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project totals: %w", err)
	}
	return totals, nil
}

func (r *LogRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]model.LogEntry, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build log query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.LogEntry, 0)
	for rows.Next() {
		entry, scanErr := scanLogEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}
	return entries, nil
}

func scanLogEntry(s scanner) (*model.LogEntry, error) {
	entry := model.LogEntry{}
	var entryDate string
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.UserName,
		&entry.ProjectID,
		&entryDate,
		&entry.StartTime,
		&entry.EndTime,
		&entry.BreakMinutes,
		&entry.HoursAdded,
		&entry.Note,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan log entry: %w", err)
	}

	if entry.Date, err = parseDate(entryDate); err != nil {
		return nil, fmt.Errorf("parse log entry_date: %w", err)
	}
	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse log created_at: %w", err)
	}
	if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse log updated_at: %w", err)
	}
	return &entry, nil
}
