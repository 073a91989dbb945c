package cmd

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/lessonflow"
	lessonscreen "github.com/abhisek/tutor/internal/screens/lesson"
	"github.com/abhisek/tutor/internal/ui/theme"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson <slug>",
	Short: "Work through a lesson",
	Long: "Work through a lesson: read the explanation and example, answer the\n" +
		"checks, then a set of practice questions.\n\n" +
		"Press enter to move on. During a lesson type /back to step back,\n" +
		"/continue after an answer is revealed, or /quit (or esc) to stop.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fast, _ := cmd.Flags().GetBool("fast")
		ctx := cmd.Context()

		a, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		sess, err := login(cmd, a)
		if err != nil {
			return err
		}
		defer sess.End()

		if a.Provider == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), theme.Dim.Render("No LLM configured: hints and practice questions are unavailable."))
		}

		flow, err := lessonflow.New(sess, a.Catalog, args[0], a.LessonDeps(), a.LessonConfig())
		if err != nil {
			return err
		}

		m := lessonscreen.New(ctx, flow, fast)
		if _, err := program(cmd, m).Run(); err != nil {
			return fmt.Errorf("run lesson: %w", err)
		}
		if err := m.Err(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), m.Summary())
		return nil
	},
}

func init() {
	lessonCmd.Flags().Bool("fast", false, "Don't pause after feedback")
}

// program runs m against the command's streams.
func program(cmd *cobra.Command, m tea.Model) *tea.Program {
	return tea.NewProgram(m,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
}
