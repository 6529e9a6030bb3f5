package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/podiumhq/podium/internal/cli/userconfig"
	"github.com/podiumhq/podium/internal/i18n"
)

// NewLangCmd creates the lang command
func NewLangCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lang [en|ne]",
		Short: "Show or set the UI language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Printf("Current language: %s\n", currentLanguage())
				fmt.Printf("Available: %s\n", strings.Join(i18n.Languages(), ", "))
				return nil
			}

			lang := args[0]
			if !i18n.Valid(lang) {
				return fmt.Errorf("unknown language %q (available: %s)",
					lang, strings.Join(i18n.Languages(), ", "))
			}

			// The language preference survives logout; it is not session
			// scoped.
			if err := userconfig.SetLanguage(lang); err != nil {
				return fmt.Errorf("failed to save language: %w", err)
			}

			fmt.Printf("✓ Language set to %s\n", lang)
			return nil
		},
	}
}
