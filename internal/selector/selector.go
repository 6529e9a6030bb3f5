// Package selector implements random participant selection for extempore
// rounds. A student speaks at most once per session until the speaker pool
// is reset.
package selector

import (
	"fmt"
	"math/rand"

	"github.com/podiumhq/podium/internal/models"
)

// Recommendation values returned by CheckAvailability when the pool is short.
const (
	RecommendPartialOrReset = "partial_or_reset"
	RecommendReset          = "reset_required"
)

// AvailableStudents filters the roster down to students eligible for
// selection: active, matching the optional grade filter, and not yet marked
// as having spoken in this session.
func AvailableStudents(all []models.Student, sessionID string, status []models.SpeakerStatus, gradeFilter *int) []models.Student {
	spoken := make(map[string]bool, len(status))
	for _, s := range status {
		if s.SessionID == sessionID && s.HasSpoken {
			spoken[s.StudentID] = true
		}
	}

	var available []models.Student
	for _, student := range all {
		if spoken[student.ID] {
			continue
		}
		if !student.IsActive {
			continue
		}
		if gradeFilter != nil {
			if student.Grade == nil || *student.Grade != *gradeFilter {
				continue
			}
		}
		available = append(available, student)
	}

	return available
}

// SelectRandom picks count students uniformly at random. If the pool is not
// larger than count, the whole pool is returned. rng may be seeded for
// deterministic tests.
func SelectRandom(available []models.Student, count int, rng *rand.Rand) []models.Student {
	if len(available) <= count {
		out := make([]models.Student, len(available))
		copy(out, available)
		return out
	}

	perm := rng.Perm(len(available))
	selected := make([]models.Student, 0, count)
	for _, idx := range perm[:count] {
		selected = append(selected, available[idx])
	}
	return selected
}

// CheckAvailability reports whether the pool can satisfy the request, with a
// human-readable message and a recommendation when it cannot.
func CheckAvailability(availableCount, requiredCount int) (bool, string, string) {
	switch {
	case availableCount >= requiredCount:
		return true, fmt.Sprintf("%d students available", availableCount), ""
	case availableCount > 0:
		return false, fmt.Sprintf("only %d students available (need %d)", availableCount, requiredCount), RecommendPartialOrReset
	default:
		return false, "no students available", RecommendReset
	}
}

// ValidateSelection rejects selections below the minimum or containing
// duplicate students.
func ValidateSelection(selected []models.Student, minimumRequired int) error {
	if len(selected) < minimumRequired {
		return fmt.Errorf("need at least %d participant(s)", minimumRequired)
	}

	seen := make(map[string]bool, len(selected))
	for _, s := range selected {
		if seen[s.ID] {
			return fmt.Errorf("duplicate student %q in selection", s.FullName)
		}
		seen[s.ID] = true
	}

	return nil
}

// ParticipantRecords builds unsaved participant rows for the selected
// students.
func ParticipantRecords(weekID string, selected []models.Student) []models.Participant {
	participants := make([]models.Participant, 0, len(selected))
	for _, s := range selected {
		participants = append(participants, models.Participant{
			WeekID:    weekID,
			StudentID: s.ID,
		})
	}
	return participants
}

// SpeakerStatusRecords builds unsaved speaker status rows marking the given
// students as having spoken in weekID.
func SpeakerStatusRecords(sessionID string, studentIDs []string, weekID string) []models.SpeakerStatus {
	records := make([]models.SpeakerStatus, 0, len(studentIDs))
	for _, id := range studentIDs {
		records = append(records, models.SpeakerStatus{
			SessionID:      sessionID,
			StudentID:      id,
			HasSpoken:      true,
			SpokenInWeekID: weekID,
		})
	}
	return records
}
