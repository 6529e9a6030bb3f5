package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podiumhq/podium/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "podium",
	Short: "Podium - scheduled debate, presentation and extempore events",
	Long: `Podium CLI - run weekly debate, presentation and extempore rounds.

Manage the student roster, draw random speakers, assign judges, collect
scores and publish winners, in English or Nepali.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("podium version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewSignupCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewDashCmd())
	rootCmd.AddCommand(commands.NewEventsCmd())
	rootCmd.AddCommand(commands.NewSelectEventCmd())
	rootCmd.AddCommand(commands.NewSessionsCmd())
	rootCmd.AddCommand(commands.NewWeeksCmd())
	rootCmd.AddCommand(commands.NewStudentsCmd())
	rootCmd.AddCommand(commands.NewJudgesCmd())
	rootCmd.AddCommand(commands.NewWinnersCmd())
	rootCmd.AddCommand(commands.NewLangCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
