package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/quiz"
	quizscreen "github.com/abhisek/tutor/internal/screens/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <subject> <subtopic>",
	Short: "Take a generated quiz on a sub-topic",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

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

		if a.Questions == nil {
			return errors.New("quizzes need an LLM provider; set TUTOR_LLM_PROVIDER and an API key")
		}
		concept, ok := a.Catalog.ConceptFor(args[0], args[1])
		if !ok {
			return fmt.Errorf("no %s sub-topic named %q (see: tutor curriculum subtopics %s)", args[0], args[1], args[0])
		}
		mastery := 0
		if rec, err := a.Store.Progress().Mastery(ctx, sess.Student.ID, concept.ID); err != nil {
			a.Log.Warn("could not read mastery, pitching quiz as a beginner", "error", err)
		} else if rec != nil {
			mastery = rec.Mastery
		}

		m := quizscreen.New(ctx, func(ctx context.Context) (*quiz.Session, error) {
			return quiz.Start(ctx, sess, a.Catalog, quiz.Options{
				Subject:  args[0],
				SubTopic: args[1],
				Mastery:  mastery,
				Count:    count,
			}, quiz.Deps{Questions: a.Questions, Outbox: a.Outbox, Log: a.Log})
		})
		if _, err := program(cmd, m).Run(); err != nil {
			return fmt.Errorf("run quiz: %w", err)
		}
		if err := m.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, m.Result())
		return nil
	},
}

func init() {
	quizCmd.Flags().IntP("count", "n", 5, "Number of questions")
}
