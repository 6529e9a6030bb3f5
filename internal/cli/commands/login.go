package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Podium server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set PODIUM_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set PODIUM_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, email, password string) error {
	// Environment variables cover CI use
	if email == "" {
		email = os.Getenv("PODIUM_EMAIL")
	}
	if password == "" {
		password = os.Getenv("PODIUM_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or PODIUM_EMAIL env var)")
	}

	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or PODIUM_PASSWORD env var)")
		}
	}

	_, manager := newSession()

	fmt.Printf("Logging in to %s...\n", resolveServerURL())

	result, err := manager.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println("✓ Login successful!")
	if result.User != nil {
		fmt.Printf("  User: %s\n", result.User.Email)
	}
	if result.IsAdmin {
		fmt.Println("  Role: Admin")
	}

	return nil
}
