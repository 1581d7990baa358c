package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"timesheet/backend/internal/ledger"
	"timesheet/backend/internal/model"
	"timesheet/backend/internal/repository"
)

func newWeekCmd(a *app) *cobra.Command {
	var (
		email  string
		offset int
		format string
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print one user's hours for an ISO week",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			if offset < -ledger.MaxWeekOffset || offset > ledger.MaxWeekOffset {
				return fmt.Errorf("offset must be between -%d and %d", ledger.MaxWeekOffset, ledger.MaxWeekOffset)
			}
			ctx := cmd.Context()
			users := repository.NewUserRepository(a.database)
			user, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("no user with email %q", email)
			}
			if err != nil {
				return err
			}

			book := ledger.New(
				repository.NewLogRepository(a.database),
				ledger.Owner{ID: user.ID, Name: user.DisplayName()},
				ledger.WithClock(a.now),
			)
			if err := book.Load(ctx); err != nil {
				return err
			}

			projects, err := repository.NewProjectRepository(a.database).List(ctx, repository.ProjectFilter{})
			if err != nil {
				return err
			}

			return renderWeek(cmd.OutOrStdout(), format, *user, book.Week(offset), projectLabels(projects))
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Email of the user")
	cmd.Flags().IntVar(&offset, "offset", 0, "Weeks relative to the current one (-1 = last week)")
	cmd.Flags().StringVar(&format, "format", "md", "Output format: md, csv")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func projectLabels(projects []model.Project) map[string]string {
	labels := make(map[string]string, len(projects))
	for _, p := range projects {
		labels[p.ID] = fmt.Sprintf("%d %s", p.Nr, p.Name)
	}
	return labels
}

func renderWeek(w io.Writer, format string, user model.User, view ledger.WeekView, projects map[string]string) error {
	label := func(id string) string {
		if name, ok := projects[id]; ok {
			return name
		}
		return id
	}

	switch format {
	case "csv":
		fmt.Fprintln(w, "date,start,end,break_minutes,hours,project,note")
		for _, e := range view.Items {
			fmt.Fprintf(w, "%s,%s,%s,%d,%.2f,%s,%s\n",
				ledger.FormatDate(e.Date), e.StartTime, e.EndTime, e.BreakMinutes, e.HoursAdded,
				csvEscape(label(e.ProjectID)), csvEscape(e.Note))
		}
	case "md", "":
		fmt.Fprintf(w, "Week %s (%s - %s) %s\n",
			view.Label, ledger.FormatDate(view.Monday), ledger.FormatDate(view.Sunday), user.DisplayName())
		fmt.Fprintln(w, "------------------------------------------------------------")
		for _, e := range view.Items {
			fmt.Fprintf(w, "%s  %s-%s  %3dm  %6.2fh  %s\n",
				e.Date.Format("Mon 2006-01-02"), e.StartTime, e.EndTime, e.BreakMinutes, e.HoursAdded, label(e.ProjectID))
		}
		fmt.Fprintln(w, "------------------------------------------------------------")
		fmt.Fprintf(w, "%-38s%6.2fh\n", "Total", ledger.RoundHours(view.Total))
	default:
		return fmt.Errorf("unknown format %q (want md or csv)", format)
	}
	return nil
}

// csvEscape quotes a field holding a comma, quote or line break and doubles
// embedded quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
