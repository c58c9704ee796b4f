package cli

import (
	"fmt"
	"net/url"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
)

func newReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review [username]",
		Short: "Show everyone's progress, or one user's answers (admin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				var result []Progress
				if err := client.Get(cmd.Context(), "/api/review", &result); err != nil {
					return err
				}
				output(cmd).Print(result)
				return nil
			}

			var result Review
			if err := client.Get(cmd.Context(), "/api/review/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export <username>",
		Short: "Download the printable HTML questionnaire of a user (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := client.Raw(cmd.Context(), "/api/export/"+url.PathEscape(args[0]))
			if err != nil {
				return err
			}

			if file == "" {
				_, err := cmd.OutOrStdout().Write(html)
				return err
			}

			if err := renameio.WriteFile(file, html, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", file, err)
			}
			output(cmd).PrintMessage(fmt.Sprintf("Exported %s to %s", args[0], file))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Write to file instead of stdout")

	return cmd
}
