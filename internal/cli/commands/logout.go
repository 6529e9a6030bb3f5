package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager := newSession()

			// Local state is cleared even if the server can't be reached.
			if err := manager.Logout(cmd.Context()); err != nil {
				return err
			}

			fmt.Println("✓ Logged out")
			return nil
		},
	}
}
