package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/remediation"
	"github.com/abhisek/tutor/internal/ui/theme"
)

var askCmd = &cobra.Command{
	Use:   "ask <slug> <question...>",
	Short: "Ask the tutor a question about a lesson",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		lesson, ok := a.Catalog.Lesson(args[0])
		if !ok {
			return fmt.Errorf("lesson %q not found", args[0])
		}
		if a.Remediation == nil {
			return errors.New("asking questions needs an LLM provider; set TUTOR_LLM_PROVIDER and an API key")
		}

		text, err := a.Remediation.Ask(cmd.Context(), remediation.AskInput{
			LessonTitle: lesson.Title,
			Explanation: lesson.Explanation(),
			Question:    strings.Join(args[1:], " "),
			Difficulty:  lesson.Difficulty,
		})
		if err != nil {
			a.Log.Debug("ask failed", "error", err)
			text = remediation.FallbackMessage
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.Card.Render(text))
		return nil
	},
}
