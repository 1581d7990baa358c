package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/backend/internal/db"
	"timesheet/backend/internal/ledger"
	"timesheet/backend/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	require.NoError(t, db.RunMigrations(context.Background(), database, migrationsDir))
	// A second run is a no-op.
	require.NoError(t, db.RunMigrations(context.Background(), database, migrationsDir))
	return database
}

func seedUserAndProject(t *testing.T, database *sql.DB) (*model.User, *model.Project) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	user := &model.User{ID: "u1", Email: "ann@example.com", Name: "Ann", Role: model.RoleEmployee, PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewUserRepository(database).Create(ctx, user))

	project := &model.Project{ID: "p1", Name: "Website", Status: model.ProjectStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewProjectRepository(database).Create(ctx, project, nil))
	return user, project
}

func TestLogRepositoryPartialUpdate(t *testing.T) {
	database := openTestDB(t)
	seedUserAndProject(t, database)
	repo := NewLogRepository(database)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.NewLogEntry{
		UserID:       "u1",
		UserName:     "Ann",
		ProjectID:    "p1",
		Date:         time.Date(2025, 1, 7, 23, 30, 0, 0, time.FixedZone("CET", 3600)),
		StartTime:    "08:00",
		EndTime:      "16:30",
		BreakMinutes: 60,
		HoursAdded:   7.5,
		Note:         "release",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), created.Date)

	start := "09:00"
	hours := 6.5
	updated, err := repo.Update(ctx, created.ID, model.LogPatch{StartTime: &start, HoursAdded: &hours})
	require.NoError(t, err)
	assert.Equal(t, "09:00", updated.StartTime)
	assert.Equal(t, 6.5, updated.HoursAdded)
	assert.Equal(t, "16:30", updated.EndTime)
	assert.Equal(t, 60, updated.BreakMinutes)
	assert.Equal(t, "release", updated.Note)
	assert.Equal(t, created.Date, updated.Date)

	_, err = repo.Update(ctx, "missing", model.LogPatch{StartTime: &start})
	assert.True(t, errors.Is(err, ErrNotFound))

	entries, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	totals, err := repo.ProjectTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6.5, totals["p1"])

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)
}

func TestInterleavedLedgerEditsKeepHoursConsistent(t *testing.T) {
	database := openTestDB(t)
	seedUserAndProject(t, database)
	repo := NewLogRepository(database)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.NewLogEntry{
		UserID: "u1", UserName: "Ann", ProjectID: "p1", Date: time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
		StartTime: "08:00", EndTime: "16:00", BreakMinutes: 30, HoursAdded: 7.5,
	})
	require.NoError(t, err)

	guard := ledger.NewGuard()
	owner := ledger.Owner{ID: "u1", Name: "Ann"}
	first := ledger.New(repo, owner, ledger.WithGuard(guard))
	second := ledger.New(repo, owner, ledger.WithGuard(guard))
	require.NoError(t, first.Load(ctx))
	require.NoError(t, second.Load(ctx))

	start := "09:00"
	_, err = first.Edit(ctx, created.ID, ledger.Patch{StartTime: &start})
	require.NoError(t, err)
	end := "17:00"
	_, err = second.Edit(ctx, created.ID, ledger.Patch{EndTime: &end})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", stored.StartTime)
	assert.Equal(t, "17:00", stored.EndTime)
	assert.Equal(t, 7.5, stored.HoursAdded)

	require.NoError(t, first.Delete(ctx, created.ID))
	note := "gone"
	_, err = second.Edit(ctx, created.ID, ledger.Patch{Note: &note})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogRepositoryRejectsUnknownProject(t *testing.T) {
	database := openTestDB(t)
	seedUserAndProject(t, database)

	_, err := NewLogRepository(database).Create(context.Background(), model.NewLogEntry{
		UserID: "u1", ProjectID: "nope", Date: time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
		StartTime: "08:00", EndTime: "09:00", HoursAdded: 1,
	})
	assert.Error(t, err)
}

func TestProjectRepositoryNumbersAndFilter(t *testing.T) {
	database := openTestDB(t)
	_, first := seedUserAndProject(t, database)
	repo := NewProjectRepository(database)
	ctx := context.Background()
	assert.Equal(t, model.FirstProjectNumber, first.Nr)

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	second := &model.Project{
		ID: "p2", Name: "Archive", Description: "Scanned invoices", Status: model.ProjectStatusCompleted,
		StartDate: &start, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, second, &model.ProjectActivity{
		ProjectID: "p2", Action: model.ProjectActionCreated, UserID: "u1", UserName: "Ann",
		Note: "project created", CreatedAt: time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC),
	}))
	assert.Equal(t, model.FirstProjectNumber+1, second.Nr)

	completed, err := repo.List(ctx, ProjectFilter{Status: model.ProjectStatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "p2", completed[0].ID)
	require.NotNil(t, completed[0].StartDate)
	assert.Equal(t, start, *completed[0].StartDate)
	assert.Nil(t, completed[0].EndDate)

	all, err := repo.List(ctx, ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := repo.List(ctx, ProjectFilter{Search: "WEB"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "p1", byName[0].ID)

	byDescription, err := repo.List(ctx, ProjectFilter{Search: "invoice"})
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, "p2", byDescription[0].ID)

	none, err := repo.List(ctx, ProjectFilter{Status: model.ProjectStatusActive, Search: "invoice"})
	require.NoError(t, err)
	assert.Empty(t, none)

	second.Name = "Archive 2024"
	second.Status = model.ProjectStatusInactive
	require.NoError(t, repo.Update(ctx, second, &model.ProjectActivity{
		ProjectID: "p2", Action: model.ProjectActionUpdated, UserID: "u1", UserName: "Ann",
		CreatedAt: time.Date(2025, 2, 2, 8, 0, 0, 0, time.UTC),
	}))
	got, err := repo.GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "Archive 2024", got.Name)
	assert.Equal(t, model.FirstProjectNumber+1, got.Nr)

	count, err := repo.CountLogs(ctx, "p2")
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Delete(ctx, "p2", &model.ProjectActivity{
		ProjectID: "p2", Action: model.ProjectActionDeleted, UserID: "u1", UserName: "Ann",
		CreatedAt: time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC),
	}))
	_, err = repo.GetByID(ctx, "p2")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "p2", nil), ErrNotFound)

	activity, err := repo.ListActivity(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, activity, 3)
	assert.Equal(t, model.ProjectActionDeleted, activity[0].Action)
	assert.Equal(t, model.ProjectActionUpdated, activity[1].Action)
	assert.Equal(t, model.ProjectActionCreated, activity[2].Action)
	assert.Equal(t, "project created", activity[2].Note)
	assert.Equal(t, "Ann", activity[2].UserName)
	assert.NotEmpty(t, activity[2].ID)
}

func TestProjectRepositoryFailedUpdateRecordsNoActivity(t *testing.T) {
	database := openTestDB(t)
	repo := NewProjectRepository(database)
	ctx := context.Background()

	missing := &model.Project{ID: "ghost", Name: "Ghost", Status: model.ProjectStatusActive, UpdatedAt: time.Now().UTC()}
	err := repo.Update(ctx, missing, &model.ProjectActivity{
		ProjectID: "ghost", Action: model.ProjectActionUpdated, UserID: "u1", CreatedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	activity, err := repo.ListActivity(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, activity)
}

func TestUserRepositoryRoles(t *testing.T) {
	database := openTestDB(t)
	seedUserAndProject(t, database)
	repo := NewUserRepository(database)
	ctx := context.Background()

	require.NoError(t, repo.SetRole(ctx, "ann@example.com", model.RoleAdmin))
	user, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	assert.ErrorIs(t, repo.SetRole(ctx, "nobody@example.com", model.RoleAdmin), ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
