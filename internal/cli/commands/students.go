package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/podiumhq/podium/internal/cli/client"
	"github.com/podiumhq/podium/internal/cli/session"
)

// NewStudentsCmd creates the students command group
func NewStudentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Manage the student roster (admin)",
	}

	cmd.AddCommand(newStudentsListCmd())
	cmd.AddCommand(newStudentsAddCmd())
	cmd.AddCommand(newStudentsImportCmd())

	return cmd
}

func newStudentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all students",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, manager := newSession()
			if err := requireAdmin(cmd.Context(), manager); err != nil {
				return err
			}
			return printStudents(cmd.Context(), api, manager.Token())
		},
	}
}

func newStudentsAddCmd() *cobra.Command {
	var name, email string
	var grade int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("student name is required (use --name)")
			}

			api, manager := newSession()
			if err := requireAdmin(cmd.Context(), manager); err != nil {
				return err
			}

			var gradePtr *int
			if grade > 0 {
				gradePtr = &grade
			}

			student, err := api.CreateStudent(cmd.Context(), manager.Token(), name, gradePtr, email)
			if err != nil {
				return fmt.Errorf("failed to add student: %w", err)
			}

			fmt.Printf("✓ Added %s", student.FullName)
			if student.Grade != nil {
				fmt.Printf(" (grade %d)", *student.Grade)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().IntVar(&grade, "grade", 0, "Grade (1-12)")
	cmd.Flags().StringVar(&email, "email", "", "Email address")

	return cmd
}

func newStudentsImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import students from a CSV file",
		Long: `Import students from a CSV file.

The file must have full_name and grade header columns; an email column is
optional. Rows matching existing students are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			api, manager := newSession()
			if err := requireAdmin(cmd.Context(), manager); err != nil {
				return err
			}

			summary, err := api.ImportCSV(cmd.Context(), manager.Token(), string(content))
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Printf("Imported %d of %d rows (%d skipped)\n",
				summary.Imported, summary.TotalRows, summary.Skipped)
			for _, msg := range summary.Errors {
				fmt.Printf("  - %s\n", msg)
			}
			return nil
		},
	}

	return cmd
}

// requireAdmin gates admin commands, translating the gate outcome into a
// command error.
func requireAdmin(ctx context.Context, manager *session.Manager) error {
	gate := session.NewAccessGate(manager)
	result := gate.RequireAdmin(ctx, currentLanguage())
	if !result.Allowed {
		return fmt.Errorf("%s", result.Message)
	}
	return nil
}

func printStudents(ctx context.Context, api *client.Client, token string) error {
	students, err := api.ListStudents(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	if len(students) == 0 {
		fmt.Println("No students found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRADE\tEMAIL\tACTIVE")
	for _, s := range students {
		grade := "-"
		if s.Grade != nil {
			grade = fmt.Sprintf("%d", *s.Grade)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", s.FullName, grade, s.Email, s.IsActive)
	}
	return w.Flush()
}
