package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewSignupCmd creates the signup command
func NewSignupCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Long: `Register a new account on the Podium server.

New accounts are regular users; an existing admin grants judging permissions
or admin status separately.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(cmd.Context(), email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runSignup(ctx context.Context, email, password string) error {
	if email == "" {
		email = os.Getenv("PODIUM_EMAIL")
	}
	if email == "" {
		return fmt.Errorf("email is required (use --email flag or PODIUM_EMAIL env var)")
	}

	if password == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag)")
		}
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()

		fmt.Print("Confirm password: ")
		byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()

		if string(bytePassword) != string(byteConfirm) {
			return fmt.Errorf("passwords do not match")
		}
		password = string(bytePassword)
	}

	_, manager := newSession()

	result, err := manager.Signup(ctx, email, password)
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	fmt.Println("✓ Account created!")
	if result.User != nil {
		fmt.Printf("  User: %s\n", result.User.Email)
	}
	if result.Session != nil && result.Session.AccessToken != "" {
		fmt.Println("  You are now logged in.")
	}

	return nil
}
