package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewSessionsCmd creates the sessions command
func NewSessionsCmd() *cobra.Command {
	var eventID string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions of an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, manager := newSession()

			id, err := selectedEventID(eventID)
			if err != nil {
				return err
			}

			sessions, err := api.ListSessions(cmd.Context(), manager.Token(), id)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tNUMBER\tLANGUAGE\tACTIVE")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%v\n",
					s.ID, s.Name, s.SessionNumber, s.Language, s.IsActive)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&eventID, "event", "", "Event ID (defaults to the selected event)")

	return cmd
}
