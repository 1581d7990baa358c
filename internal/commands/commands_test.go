package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/backend/internal/db"
	"timesheet/backend/internal/ledger"
	"timesheet/backend/internal/model"
	"timesheet/backend/internal/repository"
)

func TestRenderWeekMarkdown(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	view := ledger.WeekView{
		Label:  "2025-W02",
		Monday: monday,
		Sunday: monday.AddDate(0, 0, 6),
		Items: []model.LogEntry{
			{ProjectID: "p1", Date: monday, StartTime: "08:00", EndTime: "16:30", BreakMinutes: 60, HoursAdded: 7.5},
			{ProjectID: "gone", Date: monday.AddDate(0, 0, 1), StartTime: "09:00", EndTime: "12:00", HoursAdded: 3},
		},
		Total: 10.5,
	}

	var buf bytes.Buffer
	err := renderWeek(&buf, "md", model.User{Email: "ann@example.com"}, view, map[string]string{"p1": "111 Website"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Week 2025-W02 (2025-01-06 - 2025-01-12) ann@example.com")
	assert.Contains(t, out, "Mon 2025-01-06  08:00-16:30   60m    7.50h  111 Website")
	assert.Contains(t, out, "Tue 2025-01-07  09:00-12:00    0m    3.00h  gone")
	assert.Contains(t, out, " 10.50h")
}

func TestRenderWeekCSV(t *testing.T) {
	view := ledger.WeekView{Items: []model.LogEntry{
		{ProjectID: "p1", Date: time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), StartTime: "08:00", EndTime: "09:00", HoursAdded: 1, Note: "standup, planning"},
		{ProjectID: "p1", Date: time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), StartTime: "10:00", EndTime: "11:00", HoursAdded: 1, Note: `said "ok"`},
	}}

	var buf bytes.Buffer
	require.NoError(t, renderWeek(&buf, "csv", model.User{}, view, map[string]string{"p1": "111 Website"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,start,end,break_minutes,hours,project,note", lines[0])
	assert.Equal(t, `2025-01-07,08:00,09:00,0,1.00,111 Website,"standup, planning"`, lines[1])
	assert.Equal(t, `2025-01-08,10:00,11:00,0,1.00,111 Website,"said ""ok"""`, lines[2])

	assert.Error(t, renderWeek(&buf, "xml", model.User{}, view, nil))
}

func TestWeekAndPromoteCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	_, currentFile, _, _ := runtime.Caller(0)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("MIGRATIONS_DIR", filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations"))

	ctx := context.Background()
	database, err := db.OpenSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx, database, filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")))

	now := time.Now().UTC()
	user := &model.User{ID: "u1", Email: "ann@example.com", Name: "Ann", Role: model.RoleEmployee, PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repository.NewUserRepository(database).Create(ctx, user))
	project := &model.Project{ID: "p1", Name: "Website", Status: model.ProjectStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repository.NewProjectRepository(database).Create(ctx, project, nil))
	_, err = repository.NewLogRepository(database).Create(ctx, model.NewLogEntry{
		UserID: "u1", UserName: "Ann", ProjectID: "p1", Date: ledger.NormalizeDate(now),
		StartTime: "08:00", EndTime: "16:30", BreakMinutes: 60, HoursAdded: 7.5,
	})
	require.NoError(t, err)
	require.NoError(t, database.Close())

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"week", "--email", "ANN@example.com"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Week "+ledger.ISOWeekKey(now).String())
	assert.Contains(t, out.String(), "111 Website")
	assert.Contains(t, out.String(), "7.50h")

	out.Reset()
	root = NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"week", "--email", "ann@example.com", "--offset=-1"})
	require.NoError(t, root.Execute())
	assert.NotContains(t, out.String(), "111 Website")

	root = NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"week", "--email", "ann@example.com", "--offset=100000"})
	assert.ErrorContains(t, root.Execute(), "offset must be between")

	out.Reset()
	root = NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"promote", "--email", "ann@example.com"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "ann@example.com is now admin\n", out.String())

	root = NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"promote", "--email", "nobody@example.com"})
	assert.ErrorContains(t, root.Execute(), "no user")
}
