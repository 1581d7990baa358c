package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"timesheet/backend/internal/model"
	"timesheet/backend/internal/repository"
)

func newPromoteCmd(a *app) *cobra.Command {
	var (
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Set a user's role (admin by default)",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, args []string) error {
			if role != model.RoleAdmin && role != model.RoleEmployee {
				return fmt.Errorf("role must be %s or %s", model.RoleAdmin, model.RoleEmployee)
			}
			normalized := strings.ToLower(strings.TrimSpace(email))
			err := repository.NewUserRepository(a.database).SetRole(cmd.Context(), normalized, role)
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("no user with email %q", email)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", normalized, role)
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Email of the user")
	cmd.Flags().StringVar(&role, "role", model.RoleAdmin, "Role to grant: admin or employee")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
