// Package roster parses and validates student CSV imports.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/podiumhq/podium/internal/models"
)

const (
	minGrade = 1
	maxGrade = 12
)

// ImportSummary reports the outcome of a CSV import.
type ImportSummary struct {
	TotalRows int      `json:"total_rows"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
	Success   bool     `json:"success"`
}

// ParseCSV reads student rows from CSV content. The header must contain
// full_name and grade columns; an email column is optional. Rows with
// problems are reported as errors and skipped, never aborting the rest of
// the file.
func ParseCSV(content string) ([]models.Student, []string) {
	var students []models.Student
	var errors []string

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, []string{fmt.Sprintf("CSV parsing error: %v", err)}
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"full_name", "grade"} {
		if _, ok := cols[required]; !ok {
			return nil, []string{"CSV must contain headers: full_name, grade"}
		}
	}

	seenNames := make(map[string]bool)
	line := 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errors = append(errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		name := strings.TrimSpace(field(row, cols, "full_name"))
		if name == "" {
			errors = append(errors, fmt.Sprintf("line %d: missing student name", line))
			continue
		}

		key := strings.ToLower(name)
		if seenNames[key] {
			errors = append(errors, fmt.Sprintf("line %d: duplicate student %q in CSV", line, name))
			continue
		}
		seenNames[key] = true

		var grade *int
		if raw := strings.TrimSpace(field(row, cols, "grade")); raw != "" {
			g, err := strconv.Atoi(raw)
			if err != nil {
				errors = append(errors, fmt.Sprintf("line %d: invalid grade %q for %s (must be a number)", line, raw, name))
				continue
			}
			if g < minGrade || g > maxGrade {
				errors = append(errors, fmt.Sprintf("line %d: invalid grade %q for %s (must be %d-%d)", line, raw, name, minGrade, maxGrade))
				continue
			}
			grade = &g
		}

		students = append(students, models.Student{
			FullName: name,
			Grade:    grade,
			Email:    strings.TrimSpace(field(row, cols, "email")),
			IsActive: true,
		})
	}

	return students, errors
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// FilterExisting drops parsed students whose name (case-insensitive) already
// exists in the database, returning the importable rows and a warning per
// skip.
func FilterExisting(parsed []models.Student, existing []models.Student) ([]models.Student, []string) {
	var valid []models.Student
	var warnings []string

	names := make(map[string]bool, len(existing))
	for _, s := range existing {
		names[strings.ToLower(s.FullName)] = true
	}

	for _, s := range parsed {
		key := strings.ToLower(s.FullName)
		if names[key] {
			warnings = append(warnings, fmt.Sprintf("student %q already exists - skipping", s.FullName))
			continue
		}
		names[key] = true
		valid = append(valid, s)
	}

	return valid, warnings
}

// Summarize builds the import summary returned to the caller.
func Summarize(totalRows, imported, skipped int, errors []string) ImportSummary {
	if errors == nil {
		errors = []string{}
	}
	return ImportSummary{
		TotalRows: totalRows,
		Imported:  imported,
		Skipped:   skipped,
		Errors:    errors,
		Success:   len(errors) == 0 || imported > 0,
	}
}
