package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podiumhq/podium/internal/models"
)

func TestParseCSV_Valid(t *testing.T) {
	content := "full_name,grade,email\nAsha Sharma,11,asha@example.com\nBikash Thapa,12,\n"

	students, errs := ParseCSV(content)

	require.Empty(t, errs)
	require.Len(t, students, 2)

	assert.Equal(t, "Asha Sharma", students[0].FullName)
	require.NotNil(t, students[0].Grade)
	assert.Equal(t, 11, *students[0].Grade)
	assert.Equal(t, "asha@example.com", students[0].Email)
	assert.True(t, students[0].IsActive)

	assert.Equal(t, "Bikash Thapa", students[1].FullName)
	assert.Empty(t, students[1].Email)
}

func TestParseCSV_MissingHeaders(t *testing.T) {
	students, errs := ParseCSV("name,class\nAsha,11\n")

	assert.Empty(t, students)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "full_name")
}

func TestParseCSV_MissingName(t *testing.T) {
	students, errs := ParseCSV("full_name,grade\n,11\nAsha Sharma,11\n")

	require.Len(t, students, 1)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "line 2")
}

func TestParseCSV_DuplicateInFile(t *testing.T) {
	students, errs := ParseCSV("full_name,grade\nAsha Sharma,11\nasha sharma,12\n")

	require.Len(t, students, 1)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "duplicate")
}

func TestParseCSV_GradeValidation(t *testing.T) {
	content := "full_name,grade\nAsha,13\nBikash,abc\nChandra,\nDipesh,1\n"

	students, errs := ParseCSV(content)

	// grade 13 and "abc" rejected; empty grade and grade 1 accepted
	require.Len(t, students, 2)
	assert.Len(t, errs, 2)
	assert.Nil(t, students[0].Grade)
	require.NotNil(t, students[1].Grade)
	assert.Equal(t, 1, *students[1].Grade)
}

func TestFilterExisting(t *testing.T) {
	parsed := []models.Student{
		{FullName: "Asha Sharma"},
		{FullName: "Bikash Thapa"},
	}
	existing := []models.Student{
		{FullName: "ASHA SHARMA"},
	}

	valid, warnings := FilterExisting(parsed, existing)

	require.Len(t, valid, 1)
	assert.Equal(t, "Bikash Thapa", valid[0].FullName)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Asha Sharma")
}

func TestSummarize(t *testing.T) {
	s := Summarize(5, 3, 2, []string{"one error"})
	assert.Equal(t, 5, s.TotalRows)
	assert.True(t, s.Success) // imported > 0 despite errors

	s = Summarize(2, 0, 2, []string{"bad"})
	assert.False(t, s.Success)

	s = Summarize(0, 0, 0, nil)
	assert.True(t, s.Success)
	assert.NotNil(t, s.Errors)
}
