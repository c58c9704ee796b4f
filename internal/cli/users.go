package cli

import (
	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User management commands",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersCreateCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []User

			if err := client.Get(cmd.Context(), "/api/users", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newUsersCreateCmd() *cobra.Command {
	var pass, role string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == "" {
				var err error
				if pass, err = newPrompter(cmd).Password("Contraseña: "); err != nil {
					return err
				}
			}

			req := map[string]string{
				"username": args[0],
				"password": pass,
				"role":     role,
			}
			var result CreateUserResult

			if err := client.Post(cmd.Context(), "/api/users", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&pass, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", "user", "Role: user or admin")

	return cmd
}
