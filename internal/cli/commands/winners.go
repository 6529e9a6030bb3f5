package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/podiumhq/podium/internal/cli/client"
)

// NewWinnersCmd creates the winners command
func NewWinnersCmd() *cobra.Command {
	var eventID string

	cmd := &cobra.Command{
		Use:   "winners",
		Short: "Show the public winner board",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _ := newSession()
			return printWinners(cmd.Context(), api, eventID)
		},
	}

	cmd.Flags().StringVar(&eventID, "event", "", "Filter by event ID")

	return cmd
}

func printWinners(ctx context.Context, api *client.Client, eventID string) error {
	winners, err := api.ListWinners(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list winners: %w", err)
	}

	if len(winners) == 0 {
		fmt.Println("No winners published yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EVENT\tSESSION\tWEEK\tTOPIC\tPOSITION\tSTUDENT\tSCORE")
	for _, win := range winners {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\t%d\n",
			win.EventName, win.SessionName, win.WeekNumber, win.Topic,
			win.Position, win.StudentName, win.Score)
	}
	return w.Flush()
}
