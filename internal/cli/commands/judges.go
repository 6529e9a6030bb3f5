package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/podiumhq/podium/internal/cli/client"
)

// NewJudgesCmd creates the judges command
func NewJudgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "judges",
		Short: "List judges (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, manager := newSession()
			if err := requireAdmin(cmd.Context(), manager); err != nil {
				return err
			}
			return printJudges(cmd.Context(), api, manager.Token())
		},
	}
}

func printJudges(ctx context.Context, api *client.Client, token string) error {
	judges, err := api.ListJudges(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to list judges: %w", err)
	}

	if len(judges) == 0 {
		fmt.Println("No judges found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTITLE\tEMAIL\tACTIVE")
	for _, j := range judges {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", j.FullName, j.Title, j.Email, j.IsActive)
	}
	return w.Flush()
}
