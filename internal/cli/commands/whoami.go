package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podiumhq/podium/internal/i18n"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager := newSession()

			if !manager.IsAuthenticated() {
				fmt.Println(i18n.T(currentLanguage(), "notLoggedIn"))
				return nil
			}

			// Revalidate so the admin flag is fresh, never a stored guess.
			ok, err := manager.Verify(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(i18n.T(currentLanguage(), "sessionExpired"))
				return nil
			}

			user := manager.User()
			fmt.Printf("Logged in as: %s\n", user.Email)
			if manager.CheckAdmin() {
				fmt.Println("Role: Admin")
			} else {
				fmt.Println("Role: User")
			}
			fmt.Printf("Server: %s\n", resolveServerURL())

			return nil
		},
	}
}
