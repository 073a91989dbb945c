package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/dashboard"
	"github.com/abhisek/tutor/internal/ui/components"
	"github.com/abhisek/tutor/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a student's level, streak, mastery and badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		sess, err := login(cmd, a)
		if err != nil {
			return err
		}
		defer sess.End()

		builder := dashboard.New(a.Store.Progress(), a.Catalog)
		var sum *dashboard.Summary
		pending, err := a.Outbox.Reconcile(ctx, sess.Student.ID, func(ctx context.Context) error {
			s, berr := builder.Build(ctx, sess.Student.ID)
			sum = s
			return berr
		})
		if err != nil && sum == nil && pending == 0 {
			return err
		}
		if sum == nil {
			// unsaved progress; show what is persisted so far
			if sum, err = builder.Build(ctx, sess.Student.ID); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", theme.Title.Render(sess.Student.Name))
		if pending > 0 {
			fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("%d progress updates are not saved yet; they will be retried.", pending)))
		}

		fmt.Fprintf(out, "📈 Level %d   %s XP total\n", sum.Level, theme.Body.Bold(true).Render(fmt.Sprint(sum.TotalXP)))
		fmt.Fprintln(out, components.Bar{Label: "Next level", Value: sum.XPIntoLevel, Max: 100, Width: 30}.View())
		fmt.Fprintf(out, "🔥 Streak: %d day%s   ✅ Lessons complete: %d\n", sum.Streak, plural(sum.Streak), sum.CompletedLessons)

		if sum.Recommended != nil {
			fmt.Fprintf(out, "\n🎯 Recommended next: %s  %s\n", sum.Recommended.Title, theme.Dim.Render("tutor lesson "+sum.Recommended.Slug))
		}
		if sum.Weakest != nil {
			fmt.Fprintf(out, "⚠️  Focus on %s to boost mastery.\n", sum.Weakest.ConceptID)
		}

		fmt.Fprintf(out, "\n%s\n", theme.Subtitle.Render("Mastery"))
		if len(sum.Mastery) == 0 {
			fmt.Fprintln(out, theme.Dim.Render("Complete lessons and quizzes to build mastery."))
		}
		for _, m := range sum.Mastery {
			label := fmt.Sprintf("%-24s", truncate(m.ConceptID, 24))
			fmt.Fprintln(out, components.Bar{Label: label, Value: m.Mastery, Max: a.Config.Progression.MasteryCap, Width: 20}.View())
		}

		fmt.Fprintf(out, "\n%s\n", theme.Subtitle.Render("Badges"))
		if len(sum.Badges) == 0 {
			fmt.Fprintln(out, theme.Dim.Render("No badges yet."))
		}
		for _, b := range sum.Badges {
			fmt.Fprintf(out, "  %s  %s\n", theme.Badge.Render(b.Badge), theme.Dim.Render(b.AwardedAt.Local().Format("2006-01-02")))
		}
		return nil
	},
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
