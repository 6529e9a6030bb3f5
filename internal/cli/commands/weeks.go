package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewWeeksCmd creates the weeks command group
func NewWeeksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "Work with the weekly rounds of a session",
	}

	cmd.AddCommand(newWeeksListCmd())
	cmd.AddCommand(newWeeksDrawCmd())

	return cmd
}

func newWeeksListCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List weeks of a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("session ID is required (use --session)")
			}

			api, manager := newSession()

			weeks, err := api.ListWeeks(cmd.Context(), manager.Token(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to list weeks: %w", err)
			}

			if len(weeks) == 0 {
				fmt.Println("No weeks found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWEEK\tTOPIC\tPARTIAL")
			for _, wk := range weeks {
				fmt.Fprintf(w, "%s\t%d\t%s\t%v\n", wk.ID, wk.WeekNumber, wk.Topic, wk.IsPartial)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID")

	return cmd
}

func newWeeksDrawCmd() *cobra.Command {
	var weekID string
	var count, grade int
	var acceptPartial bool

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Randomly draw participants into a week (admin)",
		Long: `Randomly draw participants into a week.

Only students who have not yet spoken in the session are eligible. When the
pool is smaller than the requested count the draw fails unless
--accept-partial is given, which takes everyone left and marks the week
partial.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if weekID == "" {
				return fmt.Errorf("week ID is required (use --week)")
			}

			api, manager := newSession()
			if err := requireAdmin(cmd.Context(), manager); err != nil {
				return err
			}

			var gradePtr *int
			if grade > 0 {
				gradePtr = &grade
			}

			selection, err := api.AddRandomParticipants(cmd.Context(), manager.Token(),
				weekID, count, gradePtr, acceptPartial)
			if err != nil {
				return fmt.Errorf("draw failed: %w", err)
			}

			fmt.Printf("✓ Selected %d of %d requested (%d were available)\n",
				len(selection.Selected), selection.Requested, selection.AvailableCount)
			if selection.IsPartial {
				fmt.Println("  Week marked partial")
			}
			for _, s := range selection.Selected {
				fmt.Printf("  - %s\n", s.FullName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&weekID, "week", "", "Week ID")
	cmd.Flags().IntVar(&count, "count", 3, "Number of participants to draw")
	cmd.Flags().IntVar(&grade, "grade", 0, "Restrict the draw to one grade")
	cmd.Flags().BoolVar(&acceptPartial, "accept-partial", false, "Proceed with fewer students than requested")

	return cmd
}
