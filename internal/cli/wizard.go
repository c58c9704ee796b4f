package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/services/rules"
	"github.com/mcoot/bodaform/internal/services/wizard"
)

type stepAction int

const (
	actionNext stepAction = iota
	actionBack
	actionQuit
)

func newWizardCmd() *cobra.Command {
	var user, pass string
	var advance bool

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill in the questionnaire interactively",
		Long: `Logs in and walks through the questionnaire one step at a time.
Answers are saved to the server after every step.

At any prompt: Enter keeps the current answer, "-" clears it,
":back" returns to the previous step and ":quit" logs out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)

			result, err := login(cmd, p, user, pass)
			if err != nil {
				return err
			}

			evaluator, err := rules.NewForCatalog()
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if cfg.Verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
			}

			r := &wizardRunner{
				cmd:        cmd,
				prompt:     p,
				evaluator:  evaluator,
				controller: wizard.NewController(NewRemoteRecords(client), logger, wizard.Config{AdvanceOnSaveFailure: advance}),
			}
			return r.run(model.Identity{Username: result.Username, Role: model.Role(result.Role)})
		},
	}

	cmd.Flags().StringVarP(&user, "username", "u", "", "Username (prompted when omitted)")
	cmd.Flags().StringVar(&pass, "password", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&advance, "advance-on-save-failure", false, "Move on even when a step could not be saved")

	return cmd
}

// wizardRunner drives a local wizard session from terminal input
type wizardRunner struct {
	cmd        *cobra.Command
	prompt     *prompter
	evaluator  *rules.Evaluator
	controller *wizard.Controller
}

func (r *wizardRunner) printf(format string, args ...any) {
	fmt.Fprintf(r.cmd.OutOrStdout(), format, args...)
}

func (r *wizardRunner) run(identity model.Identity) error {
	s, err := r.controller.Start(r.cmd.Context(), identity)
	if err != nil {
		if errors.Is(err, wizard.ErrAdminWizard) {
			return fmt.Errorf("%s is an admin account; use review and export instead", identity.Username)
		}
		return err
	}

	r.printf("¡Bienvenidos, %s!\n", identity.Username)
	if len(s.Draft) > 0 {
		r.printf("Tienes %d respuestas guardadas.\n", len(s.Draft))
	}
	line, err := r.prompt.Line("Pulsa Enter para comenzar ")
	if errors.Is(err, io.EOF) || strings.TrimSpace(line) == ":quit" {
		r.controller.Logout(s)
		return nil
	}
	if err != nil {
		return err
	}

	if s, err = r.controller.CompleteIntro(s); err != nil {
		return err
	}

	// pending keeps answers of a step that failed, so they are offered again
	var pending model.Draft
	for s.Phase == wizard.PhaseQuestionnaire {
		output, action, err := r.askStep(s, pending)
		if err != nil {
			return err
		}

		switch action {
		case actionQuit:
			r.controller.Logout(s)
			r.printf("Sesión cerrada.\n")
			return nil
		case actionBack:
			pending = nil
			if s, err = r.controller.Back(s); err != nil {
				r.printf("No puedes retroceder desde aquí.\n")
			}
			continue
		}

		next, err := r.controller.Next(r.cmd.Context(), s, output)
		s = next
		if err != nil {
			pending = output
			r.reportStepError(err)
			continue
		}
		pending = nil
		if s.Dirty {
			r.printf("Aviso: no se pudo guardar este paso; tus respuestas siguen en esta sesión.\n")
		}
	}

	r.printf("¡Cuestionario completado! %d respuestas guardadas.\n", len(s.Draft))
	return nil
}

func (r *wizardRunner) reportStepError(err error) {
	var missing *wizard.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		labels := make([]string, 0, len(missing.Fields))
		for _, key := range missing.Fields {
			if f, ok := model.LookupField(key); ok {
				labels = append(labels, f.Label)
			} else {
				labels = append(labels, key)
			}
		}
		r.printf("Campos obligatorios: %s\n", strings.Join(labels, ", "))
	case errors.Is(err, wizard.ErrSaveFailed):
		r.printf("Error al guardar el progreso. Inténtalo de nuevo.\n")
	default:
		r.printf("Error: %s\n", err)
	}
}

// askStep prompts for every applicable field of the current step
func (r *wizardRunner) askStep(s wizard.Session, pending model.Draft) (model.Draft, stepAction, error) {
	step := s.Step()
	title := "Bienvenida"
	if step.Section != nil {
		title = step.Section.Title
	}
	r.printf("\n[%d/%d] %s\n", s.StepIndex+1, model.StepCount, title)

	output := model.NewDraft()
	base := s.Draft.Merge(pending)
	for k, v := range pending {
		output[k] = v
	}

	if len(step.Fields()) == 0 {
		return r.askContinue(output)
	}

	for _, f := range step.Fields() {
		view := base.Merge(output)
		applies, err := r.evaluator.Applies(f, view)
		if err != nil {
			return nil, actionNext, err
		}
		if !applies {
			continue
		}

		for {
			line, err := r.prompt.Line(fieldPrompt(f, view.Display(f.Key)))
			if errors.Is(err, io.EOF) {
				return nil, actionQuit, nil
			}
			if err != nil {
				return nil, actionNext, err
			}

			answer := strings.TrimSpace(line)
			switch answer {
			case ":back":
				return nil, actionBack, nil
			case ":quit":
				return nil, actionQuit, nil
			case "":
			case "-":
				output[f.Key] = nil
			default:
				if f.Kind != model.FieldKindBool {
					output[f.Key] = answer
					break
				}
				b, ok := parseYesNo(answer)
				if !ok {
					r.printf("Responde s o n.\n")
					continue
				}
				output[f.Key] = b
			}
			break
		}
	}

	return output, actionNext, nil
}

func (r *wizardRunner) askContinue(output model.Draft) (model.Draft, stepAction, error) {
	line, err := r.prompt.Line("Pulsa Enter para continuar ")
	if errors.Is(err, io.EOF) {
		return nil, actionQuit, nil
	}
	if err != nil {
		return nil, actionNext, err
	}
	switch strings.TrimSpace(line) {
	case ":back":
		return nil, actionBack, nil
	case ":quit":
		return nil, actionQuit, nil
	}
	return output, actionNext, nil
}

func fieldPrompt(f model.Field, current string) string {
	label := f.Label
	if f.Required {
		label += " *"
	}
	if f.Kind == model.FieldKindBool {
		label += " (s/n)"
	}
	if current != "" {
		label += " [" + current + "]"
	}
	return label + ": "
}

func parseYesNo(answer string) (bool, bool) {
	switch strings.ToLower(answer) {
	case "s", "si", "sí", "y", "yes", "true":
		return true, true
	case "n", "no", "false":
		return false, true
	}
	return false, false
}
