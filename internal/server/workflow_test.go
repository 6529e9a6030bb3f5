package server

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podiumhq/podium/internal/models"
)

// seedSessionWithWeek creates an event session with one week and n students.
func seedSessionWithWeek(t *testing.T, s *Server, n int) (models.EventSession, models.Week) {
	t.Helper()

	var event models.Event
	require.NoError(t, s.db.Where("name = ?", "Extempore").First(&event).Error)

	session := models.EventSession{
		EventID:       event.ID,
		Name:          "Fall 2026",
		SessionNumber: 1,
		Language:      "en",
		IsActive:      true,
	}
	require.NoError(t, s.db.Create(&session).Error)

	week := models.Week{SessionID: session.ID, WeekNumber: 1, Topic: "Climate"}
	require.NoError(t, s.db.Create(&week).Error)

	for i := 0; i < n; i++ {
		grade := 9
		student := models.Student{
			FullName: fmt.Sprintf("Student %02d", i),
			Grade:    &grade,
			IsActive: true,
		}
		require.NoError(t, s.db.Create(&student).Error)
	}

	return session, week
}

func TestAddRandomParticipants(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := createTestUser(t, s, "admin@example.com", true)
	session, week := seedSessionWithWeek(t, s, 5)

	w := doJSON(t, s, http.MethodPost, "/admin/api/weeks/"+week.ID+"/add-random-participants",
		adminToken, jsonBody{"count": 3})
	require.Equal(t, http.StatusOK, w.Code)

	var resp RandomSelectionResponse
	decode(t, w, &resp)
	assert.Len(t, resp.Selected, 3)
	assert.False(t, resp.IsPartial)
	assert.Equal(t, 5, resp.AvailableCount)

	// Selected students are marked spoken for the session.
	var spoken int64
	require.NoError(t, s.db.Model(&models.SpeakerStatus{}).
		Where("session_id = ? AND has_spoken = ?", session.ID, true).
		Count(&spoken).Error)
	assert.EqualValues(t, 3, spoken)

	// A second draw excludes them; only 2 remain, so a request for 3 fails
	// without accept_partial.
	week2 := models.Week{SessionID: session.ID, WeekNumber: 2, Topic: "Energy"}
	require.NoError(t, s.db.Create(&week2).Error)

	w = doJSON(t, s, http.MethodPost, "/admin/api/weeks/"+week2.ID+"/add-random-participants",
		adminToken, jsonBody{"count": 3})
	assert.Equal(t, http.StatusConflict, w.Code)

	decode(t, w, &resp)
	assert.Equal(t, 2, resp.AvailableCount)
	assert.NotEmpty(t, resp.Recommendation)

	// With accept_partial the draw succeeds and marks the week partial.
	w = doJSON(t, s, http.MethodPost, "/admin/api/weeks/"+week2.ID+"/add-random-participants",
		adminToken, jsonBody{"count": 3, "accept_partial": true})
	require.Equal(t, http.StatusOK, w.Code)

	decode(t, w, &resp)
	assert.Len(t, resp.Selected, 2)
	assert.True(t, resp.IsPartial)

	var reloaded models.Week
	require.NoError(t, models.FindByID(s.db, week2.ID, &reloaded))
	assert.True(t, reloaded.IsPartial)
}

// Overlapping draws share one rng; sampleStudents must serialize access
// so concurrent requests never corrupt its state.
func TestSampleStudentsConcurrent(t *testing.T) {
	s := newTestServer(t)

	students := make([]models.Student, 10)
	for i := range students {
		students[i] = models.Student{FullName: fmt.Sprintf("Student %d", i)}
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got := s.sampleStudents(students, 3)
				if len(got) != 3 {
					t.Errorf("expected a sample of 3, got %d", len(got))
				}
			}
		}()
	}
	wg.Wait()
}

func TestResetSpeakersRestoresPool(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := createTestUser(t, s, "admin@example.com", true)
	session, week := seedSessionWithWeek(t, s, 3)

	w := doJSON(t, s, http.MethodPost, "/admin/api/weeks/"+week.ID+"/add-random-participants",
		adminToken, jsonBody{"count": 3})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/admin/api/sessions/"+session.ID+"/reset-speakers",
		adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var spoken int64
	require.NoError(t, s.db.Model(&models.SpeakerStatus{}).
		Where("session_id = ? AND has_spoken = ?", session.ID, true).
		Count(&spoken).Error)
	assert.EqualValues(t, 0, spoken)
}

func TestScoringRequiresPermission(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := createTestUser(t, s, "admin@example.com", true)
	_, judgeToken := createTestUser(t, s, "judge@example.com", false)
	_, week := seedSessionWithWeek(t, s, 3)

	w := doJSON(t, s, http.MethodPost, "/admin/api/weeks/"+week.ID+"/add-random-participants",
		adminToken, jsonBody{"count": 3})
	require.Equal(t, http.StatusOK, w.Code)

	var participants []models.Participant
	require.NoError(t, s.db.Where("week_id = ?", week.ID).Find(&participants).Error)
	require.Len(t, participants, 3)

	submit := jsonBody{
		"participant_id": participants[0].ID,
		"judge_type":     "content",
		"score":          25,
		"max_score":      30,
	}

	// Without a grant, scoring is forbidden.
	w = doJSON(t, s, http.MethodPost, "/judge/api/submit-score", judgeToken, submit)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Grant content judging for the week.
	w = doJSON(t, s, http.MethodPost, "/admin/api/judge-permissions", adminToken, jsonBody{
		"user_email": "judge@example.com",
		"week_id":    week.ID,
		"judge_type": "content",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodPost, "/judge/api/submit-score", judgeToken, submit)
	require.Equal(t, http.StatusOK, w.Code)

	var score models.JudgeScore
	decode(t, w, &score)
	assert.Equal(t, 25, score.Score)

	// Re-submitting overwrites rather than duplicating.
	submit["score"] = 28
	w = doJSON(t, s, http.MethodPost, "/judge/api/submit-score", judgeToken, submit)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, s.db.Model(&models.JudgeScore{}).
		Where("participant_id = ?", participants[0].ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Revoking the grant blocks further submissions.
	var permission models.JudgePermission
	require.NoError(t, s.db.Where("user_email = ?", "judge@example.com").First(&permission).Error)

	w = doJSON(t, s, http.MethodPost, "/admin/api/judge-permissions/"+permission.ID+"/revoke",
		adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/judge/api/submit-score", judgeToken, submit)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Reactivation restores it.
	w = doJSON(t, s, http.MethodPost, "/admin/api/judge-permissions/"+permission.ID+"/reactivate",
		adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/judge/api/submit-score", judgeToken, submit)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJudgeParticipantListScoredFlags(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := createTestUser(t, s, "admin@example.com", true)
	_, judgeToken := createTestUser(t, s, "judge@example.com", false)
	_, week := seedSessionWithWeek(t, s, 3)

	w := doJSON(t, s, http.MethodPost, "/admin/api/weeks/"+week.ID+"/add-random-participants",
		adminToken, jsonBody{"count": 3})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/admin/api/judge-permissions", adminToken, jsonBody{
		"user_email": "judge@example.com",
		"week_id":    week.ID,
		"judge_type": "content",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var participants []models.Participant
	require.NoError(t, s.db.Where("week_id = ?", week.ID).Find(&participants).Error)
	require.Len(t, participants, 3)

	w = doJSON(t, s, http.MethodPost, "/judge/api/submit-score", judgeToken, jsonBody{
		"participant_id": participants[0].ID,
		"judge_type":     "content",
		"score":          20,
		"max_score":      30,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/judge/api/week/"+week.ID+"/participants?judge_type=content",
		judgeToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []JudgeParticipant
	decode(t, w, &listed)
	require.Len(t, listed, 3)

	flags := make(map[string]bool, len(listed))
	for _, p := range listed {
		flags[p.ID] = p.Scored
	}
	assert.True(t, flags[participants[0].ID])
	assert.False(t, flags[participants[1].ID])
	assert.False(t, flags[participants[2].ID])
}

func TestSubmitScoreRejectsOverMax(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := createTestUser(t, s, "admin@example.com", true)
	_, judgeToken := createTestUser(t, s, "judge@example.com", false)
	_, week := seedSessionWithWeek(t, s, 1)

	w := doJSON(t, s, http.MethodPost, "/admin/api/weeks/"+week.ID+"/add-random-participants",
		adminToken, jsonBody{"count": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/admin/api/judge-permissions", adminToken, jsonBody{
		"user_email": "judge@example.com",
		"week_id":    week.ID,
		"judge_type": "overall",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var participant models.Participant
	require.NoError(t, s.db.Where("week_id = ?", week.ID).First(&participant).Error)

	w = doJSON(t, s, http.MethodPost, "/judge/api/submit-score", judgeToken, jsonBody{
		"participant_id": participant.ID,
		"judge_type":     "overall",
		"score":          40,
		"max_score":      30,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishWinners(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := createTestUser(t, s, "admin@example.com", true)
	_, judgeToken := createTestUser(t, s, "judge@example.com", false)
	_, week := seedSessionWithWeek(t, s, 4)

	w := doJSON(t, s, http.MethodPost, "/admin/api/weeks/"+week.ID+"/add-random-participants",
		adminToken, jsonBody{"count": 4})
	require.Equal(t, http.StatusOK, w.Code)

	// Publishing with no scores is rejected.
	w = doJSON(t, s, http.MethodPost, "/admin/api/publish-winners/"+week.ID, adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s, http.MethodPost, "/admin/api/judge-permissions", adminToken, jsonBody{
		"user_email": "judge@example.com",
		"week_id":    week.ID,
		"judge_type": "overall",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var participants []models.Participant
	require.NoError(t, s.db.Where("week_id = ?", week.ID).
		Order("created_at ASC").Find(&participants).Error)
	require.Len(t, participants, 4)

	// Scores 10, 20, 30, 40: the last three should win.
	for i, p := range participants {
		w = doJSON(t, s, http.MethodPost, "/judge/api/submit-score", judgeToken, jsonBody{
			"participant_id": p.ID,
			"judge_type":     "overall",
			"score":          (i + 1) * 10,
			"max_score":      100,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = doJSON(t, s, http.MethodPost, "/admin/api/publish-winners/"+week.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var results WeekResults
	decode(t, w, &results)
	assert.True(t, results.Published)
	require.Len(t, results.Results, 4)

	first := results.Results[0].Participant
	assert.True(t, first.IsWinner)
	require.NotNil(t, first.Position)
	assert.Equal(t, 1, *first.Position)
	assert.Equal(t, 40, results.Results[0].TotalScore)

	last := results.Results[3].Participant
	assert.False(t, last.IsWinner)
	assert.Nil(t, last.Position)

	// Winners now appear on the public board without auth.
	w = doJSON(t, s, http.MethodGet, "/api/winners", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var winners []WinnerEntry
	decode(t, w, &winners)
	assert.Len(t, winners, 3)

	// Public rankings are visible once published.
	w = doJSON(t, s, http.MethodGet, "/api/week-rankings/"+week.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Unpublish hides them again.
	w = doJSON(t, s, http.MethodPost, "/admin/api/unpublish-winners/"+week.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/week-rankings/"+week.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/winners", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &winners)
	assert.Empty(t, winners)
}

func TestCSVImportEndpoint(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := createTestUser(t, s, "admin@example.com", true)

	csv := "full_name,grade\nAsha Rai,9\nBinod Thapa,10\nAsha Rai,9\n"
	w := doJSON(t, s, http.MethodPost, "/admin/api/import-csv", adminToken, jsonBody{
		"content": csv,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		TotalRows int      `json:"total_rows"`
		Imported  int      `json:"imported"`
		Errors    []string `json:"errors"`
		Success   bool     `json:"success"`
	}
	decode(t, w, &summary)
	assert.Equal(t, 2, summary.Imported)
	assert.True(t, summary.Success)
	assert.NotEmpty(t, summary.Errors) // the in-file duplicate

	// Re-importing skips the existing rows.
	w = doJSON(t, s, http.MethodPost, "/admin/api/import-csv", adminToken, jsonBody{
		"content": "full_name,grade\nAsha Rai,9\n",
	})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &summary)
	assert.Equal(t, 0, summary.Imported)
}
