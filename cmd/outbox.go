package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/ui/theme"
)

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect and deliver progress updates waiting to be saved",
}

var outboxStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending and rejected progress updates",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Pending: %d\n", a.Outbox.Pending())
		if dead := a.Outbox.Dead(); len(dead) > 0 {
			fmt.Fprintf(out, "Rejected: %d\n", len(dead))
			for _, e := range dead {
				fmt.Fprintf(out, "  %s  %-16s %s\n", e.ID, e.Kind, e.At.Local().Format("2006-01-02 15:04:05"))
			}
		}
		return nil
	},
}

var outboxFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Deliver pending progress updates now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		before := a.Outbox.Pending()
		err = a.Outbox.Flush(cmd.Context())
		after := a.Outbox.Pending()
		fmt.Fprintf(cmd.OutOrStdout(), "%s delivered %d, %d pending\n", theme.Correct.Render("✓"), before-after, after)
		return err
	},
}

func init() {
	outboxCmd.AddCommand(outboxStatusCmd)
	outboxCmd.AddCommand(outboxFlushCmd)
}
