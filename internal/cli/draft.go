package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/bodaform/internal/model"
)

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <username>",
		Short: "Show the saved answers of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := model.NewDraft()

			if err := client.Get(cmd.Context(), "/api/progress?username="+url.QueryEscape(args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <username> <file>",
		Short: "Replace a user's answers with a JSON document (- reads stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[1] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[1])
			}
			if err != nil {
				return err
			}

			var draft model.Draft
			if err := json.Unmarshal(data, &draft); err != nil {
				return fmt.Errorf("invalid draft file: %w", err)
			}
			if draft == nil {
				return fmt.Errorf("invalid draft file: expected a JSON object")
			}
			if err := draft.Validate(); err != nil {
				return err
			}

			if err := client.Post(cmd.Context(), "/api/save", SaveRequest{Username: args[0], Data: draft}, nil); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Saved %d answers for %s", len(draft), args[0]))
			return nil
		},
	}
}
