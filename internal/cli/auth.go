package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// badLoginMessage is shown for a 401 on login
const badLoginMessage = "Usuario o contraseña incorrectos"

func newLoginCmd() *cobra.Command {
	var pass string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and store the session token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)

			var user string
			if len(args) == 1 {
				user = args[0]
			}

			result, err := login(cmd, p, user, pass)
			if err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			verbosef(cmd, "token saved to %s", cfg.TokenFile)

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&pass, "password", "", "Password (prompted when omitted)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			client.SetToken("")

			output(cmd).PrintMessage("Logged out")
			return nil
		},
	}
}

// login prompts for missing credentials and authenticates. The client is
// switched to the new token.
func login(cmd *cobra.Command, p *prompter, user, pass string) (LoginResult, error) {
	var err error
	if user == "" {
		if user, err = p.Line("Usuario: "); err != nil {
			return LoginResult{}, err
		}
	}
	if pass == "" {
		if pass, err = p.Password("Contraseña: "); err != nil {
			return LoginResult{}, err
		}
	}

	req := map[string]string{
		"username": user,
		"password": pass,
	}
	var result LoginResult

	if err := client.Post(cmd.Context(), "/api/login", req, &result); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			fmt.Fprintln(cmd.ErrOrStderr(), badLoginMessage)
			return LoginResult{}, errReported
		}
		return LoginResult{}, err
	}

	client.SetToken(result.Token)
	return result, nil
}
