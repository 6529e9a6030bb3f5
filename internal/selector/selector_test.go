package selector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podiumhq/podium/internal/models"
)

func intPtr(i int) *int { return &i }

func makeStudents(ids ...string) []models.Student {
	students := make([]models.Student, 0, len(ids))
	for _, id := range ids {
		students = append(students, models.Student{
			BaseModel: models.BaseModel{ID: id},
			FullName:  "Student " + id,
			IsActive:  true,
		})
	}
	return students
}

func TestAvailableStudents_ExcludesSpoken(t *testing.T) {
	students := makeStudents("a", "b", "c")
	status := []models.SpeakerStatus{
		{SessionID: "s1", StudentID: "a", HasSpoken: true},
		{SessionID: "s2", StudentID: "b", HasSpoken: true}, // different session
		{SessionID: "s1", StudentID: "c", HasSpoken: false},
	}

	available := AvailableStudents(students, "s1", status, nil)

	require.Len(t, available, 2)
	assert.Equal(t, "b", available[0].ID)
	assert.Equal(t, "c", available[1].ID)
}

func TestAvailableStudents_ExcludesInactive(t *testing.T) {
	students := makeStudents("a", "b")
	students[1].IsActive = false

	available := AvailableStudents(students, "s1", nil, nil)

	require.Len(t, available, 1)
	assert.Equal(t, "a", available[0].ID)
}

func TestAvailableStudents_GradeFilter(t *testing.T) {
	students := makeStudents("a", "b", "c")
	students[0].Grade = intPtr(11)
	students[1].Grade = intPtr(12)
	// students[2] has no grade at all

	available := AvailableStudents(students, "s1", nil, intPtr(11))

	require.Len(t, available, 1)
	assert.Equal(t, "a", available[0].ID)
}

func TestSelectRandom_PoolSmallerThanCount(t *testing.T) {
	students := makeStudents("a", "b")
	rng := rand.New(rand.NewSource(1))

	selected := SelectRandom(students, 5, rng)

	assert.Len(t, selected, 2)
}

func TestSelectRandom_Deterministic(t *testing.T) {
	students := makeStudents("a", "b", "c", "d", "e")

	first := SelectRandom(students, 3, rand.New(rand.NewSource(42)))
	second := SelectRandom(students, 3, rand.New(rand.NewSource(42)))

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.NoError(t, ValidateSelection(first, 1))
}

func TestCheckAvailability(t *testing.T) {
	tests := []struct {
		name           string
		available      int
		required       int
		ok             bool
		recommendation string
	}{
		{"enough", 10, 5, true, ""},
		{"exact", 5, 5, true, ""},
		{"short", 3, 5, false, RecommendPartialOrReset},
		{"empty", 0, 5, false, RecommendReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg, rec := CheckAvailability(tt.available, tt.required)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.recommendation, rec)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestValidateSelection_Duplicates(t *testing.T) {
	students := makeStudents("a", "a")

	err := ValidateSelection(students, 1)

	assert.Error(t, err)
}

func TestValidateSelection_BelowMinimum(t *testing.T) {
	err := ValidateSelection(nil, 1)
	assert.Error(t, err)
}

func TestParticipantRecords(t *testing.T) {
	students := makeStudents("a", "b")

	records := ParticipantRecords("w1", students)

	require.Len(t, records, 2)
	for i, r := range records {
		assert.Equal(t, "w1", r.WeekID)
		assert.Equal(t, students[i].ID, r.StudentID)
		assert.False(t, r.IsWinner)
		assert.Zero(t, r.Score)
	}
}

func TestSpeakerStatusRecords(t *testing.T) {
	records := SpeakerStatusRecords("s1", []string{"a", "b"}, "w1")

	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "s1", r.SessionID)
		assert.Equal(t, "w1", r.SpokenInWeekID)
		assert.True(t, r.HasSpoken)
	}
}
