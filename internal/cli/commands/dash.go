package commands

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/podiumhq/podium/internal/cli/session"
	"github.com/podiumhq/podium/internal/i18n"
)

// menuItem is one dashboard entry. Items flagged adminOnly or authRequired
// are hidden unless the session grants them.
type menuItem struct {
	key          string
	labelKey     string
	adminOnly    bool
	authRequired bool
	run          func(ctx context.Context) error
}

// visibleItems recomputes the visible menu from the session flags. It reads
// the flags once and is safe to call repeatedly after any session change.
func visibleItems(items []menuItem, authenticated, admin bool) []menuItem {
	visible := make([]menuItem, 0, len(items))
	for _, item := range items {
		if item.adminOnly && !admin {
			continue
		}
		if item.authRequired && !authenticated {
			continue
		}
		visible = append(visible, item)
	}
	return visible
}

// NewDashCmd creates the interactive dashboard command
func NewDashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Interactive dashboard menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDash(cmd.Context())
		},
	}
}

func runDash(ctx context.Context) error {
	api, manager := newSession()
	gate := session.NewAccessGate(manager)
	lang := currentLanguage()

	// One verification round trip up front; the menu is rebuilt from the
	// resulting flags, so admin entries only appear once the server has
	// confirmed the role.
	if manager.IsAuthenticated() {
		if _, err := manager.Verify(ctx); err != nil {
			return err
		}
	}

	items := []menuItem{
		{key: "winners", labelKey: "winners", run: func(ctx context.Context) error {
			return printWinners(ctx, api, "")
		}},
		{key: "events", labelKey: "events", run: func(ctx context.Context) error {
			return printEvents(ctx, api)
		}},
		{key: "whoami", labelKey: "myAccount", authRequired: true, run: func(ctx context.Context) error {
			user := manager.User()
			if user != nil {
				fmt.Printf("%s (%s)\n", user.Email, user.ID)
			}
			return nil
		}},
		{key: "students", labelKey: "students", adminOnly: true, run: func(ctx context.Context) error {
			if result := gate.RequireAdmin(ctx, lang); !result.Allowed {
				fmt.Println(result.Message)
				return nil
			}
			return printStudents(ctx, api, manager.Token())
		}},
		{key: "judges", labelKey: "judges", adminOnly: true, run: func(ctx context.Context) error {
			if result := gate.RequireAdmin(ctx, lang); !result.Allowed {
				fmt.Println(result.Message)
				return nil
			}
			return printJudges(ctx, api, manager.Token())
		}},
	}

	for {
		visible := visibleItems(items, manager.IsAuthenticated(), manager.CheckAdmin())

		labels := make([]string, 0, len(visible)+1)
		for _, item := range visible {
			labels = append(labels, i18n.T(lang, item.labelKey))
		}
		labels = append(labels, i18n.T(lang, "exit"))

		prompt := promptui.Select{
			Label: i18n.T(lang, "dashboard"),
			Items: labels,
		}

		idx, _, err := prompt.Run()
		if err != nil {
			// Ctrl+C or similar; leave quietly.
			return nil
		}

		if idx == len(visible) {
			return nil
		}

		if err := visible[idx].run(ctx); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}
