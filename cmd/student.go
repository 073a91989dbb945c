package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/ui/theme"
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage students",
}

var studentAddCmd = &cobra.Command{
	Use:   "add <name> <email> <grade>",
	Short: "Register a student",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid grade %q: %w", args[2], err)
		}

		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		st, err := a.Store.Students().Create(cmd.Context(), args[0], args[1], grade)
		if err != nil {
			return fmt.Errorf("create student: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (year %d)\n  id: %s\n",
			theme.Correct.Render("✓"), st.Name, st.Grade, st.ID)
		return nil
	},
}

var studentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List students",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		students, err := a.Store.Students().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list students: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(students) == 0 {
			fmt.Fprintln(out, "No students yet. Add one with: tutor student add <name> <email> <grade>")
			return nil
		}
		fmt.Fprintf(out, "%-36s  %-20s  %-28s  %s\n", "ID", "Name", "Email", "Year")
		for _, st := range students {
			fmt.Fprintf(out, "%-36s  %-20s  %-28s  %d\n", st.ID, truncate(st.Name, 20), truncate(st.Email, 28), st.Grade)
		}
		return nil
	},
}

func init() {
	studentCmd.AddCommand(studentAddCmd)
	studentCmd.AddCommand(studentListCmd)
}
