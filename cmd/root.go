package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/app"
	"github.com/abhisek/tutor/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Terminal tutor for secondary school lessons and quizzes",
	Long: "tutor walks a student through short lessons with comprehension checks,\n" +
		"generated practice and quizzes, and tracks mastery per concept.",
	SilenceUsage: true,
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TUTOR_DB_PATH)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringP("student", "s", "", "Student id or email (defaults to TUTOR_STUDENT)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(studentCmd)
	rootCmd.AddCommand(curriculumCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(outboxCmd)
}

// openApp builds the shared dependencies from the persistent flags. The
// caller must Close the result.
func openApp(cmd *cobra.Command, withLLM bool) (*app.App, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	cfgPath, _ := cmd.Flags().GetString("config")
	return app.Open(cmd.Context(), app.Options{
		ConfigPath: cfgPath,
		DBPath:     dbPath,
		LLM:        withLLM,
	})
}

// login resolves --student, falling back to TUTOR_STUDENT.
func login(cmd *cobra.Command, a *app.App) (*session.Context, error) {
	ref, _ := cmd.Flags().GetString("student")
	if ref == "" {
		ref = os.Getenv("TUTOR_STUDENT")
	}
	return a.Login(cmd.Context(), ref)
}
