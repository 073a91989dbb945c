package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/ui/theme"
)

var curriculumCmd = &cobra.Command{
	Use:     "curriculum",
	Aliases: []string{"cur"},
	Short:   "Browse subjects, lessons and quiz sub-topics",
}

var curriculumListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subjects",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		for _, s := range a.Catalog.Subjects() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", s.ID, theme.Dim.Render(s.Name))
		}
		return nil
	},
}

var curriculumLessonsCmd = &cobra.Command{
	Use:   "lessons <subject>",
	Short: "List a subject's lessons in teaching order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		lessons := a.Catalog.LessonsFor(args[0])
		if len(lessons) == 0 {
			return fmt.Errorf("no lessons for subject %q", args[0])
		}
		for _, l := range lessons {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d. %-28s %s\n", l.Order, l.Slug, theme.Dim.Render(l.Title))
		}
		return nil
	},
}

var curriculumSubtopicsCmd = &cobra.Command{
	Use:   "subtopics <subject>",
	Short: "List a subject's quiz sub-topics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		topics := a.Catalog.SubTopics(args[0])
		if len(topics) == 0 {
			return fmt.Errorf("no sub-topics for subject %q", args[0])
		}
		for _, t := range topics {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

func init() {
	curriculumCmd.AddCommand(curriculumListCmd)
	curriculumCmd.AddCommand(curriculumLessonsCmd)
	curriculumCmd.AddCommand(curriculumSubtopicsCmd)
}
