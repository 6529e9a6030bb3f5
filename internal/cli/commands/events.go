package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/podiumhq/podium/internal/cli/client"
	"github.com/podiumhq/podium/internal/cli/userconfig"
	"github.com/podiumhq/podium/internal/i18n"
)

// NewEventsCmd creates the events command
func NewEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List event categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _ := newSession()
			return printEvents(cmd.Context(), api)
		},
	}
}

// NewSelectEventCmd creates the select-event command
func NewSelectEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select-event",
		Short: "Pick the event other commands default to",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _ := newSession()

			events, err := api.ListEvents(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}
			if len(events) == 0 {
				return fmt.Errorf("no events available")
			}

			lang := currentLanguage()
			labels := make([]string, len(events))
			for i, e := range events {
				if lang == i18n.LangNepali && e.NameNepali != "" {
					labels[i] = e.NameNepali
				} else {
					labels[i] = e.Name
				}
			}

			prompt := promptui.Select{
				Label: i18n.T(lang, "events"),
				Items: labels,
			}

			idx, _, err := prompt.Run()
			if err != nil {
				return err
			}

			if err := userconfig.SetSelectedEvent(events[idx].ID); err != nil {
				return fmt.Errorf("failed to save selection: %w", err)
			}

			fmt.Printf("✓ Selected event: %s\n", events[idx].Name)
			return nil
		},
	}
}

// selectedEventID returns the eventID flag if set, else the saved preference.
func selectedEventID(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return "", err
	}
	if cfg.SelectedEvent == "" {
		return "", fmt.Errorf("no event selected (use --event or run 'podium select-event')")
	}
	return cfg.SelectedEvent, nil
}

func printEvents(ctx context.Context, api *client.Client) error {
	events, err := api.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tNAME (NE)")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, e.NameNepali)
	}
	return w.Flush()
}
