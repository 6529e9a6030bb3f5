package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podiumhq/podium/internal/models"
)

type SubmitScoreRequest struct {
	ParticipantID string         `json:"participant_id" binding:"required"`
	JudgeType     string         `json:"judge_type" binding:"required,judgetype"`
	Score         int            `json:"score" binding:"min=0"`
	MaxScore      int            `json:"max_score" binding:"required,min=1"`
	Comments      string         `json:"comments"`
	Criteria      map[string]int `json:"criteria_breakdown"`
}

// activePermission loads the caller's active judging permission for a week
// and judge type. Returns nil when no active grant exists.
func (s *Server) activePermission(email, weekID, judgeType string) (*models.JudgePermission, error) {
	var permission models.JudgePermission
	err := s.db.Where("user_email = ? AND week_id = ? AND judge_type = ? AND is_active = ?",
		email, weekID, judgeType, true).First(&permission).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

// @Summary List my judging assignments
// @Description Active judging permissions for the logged-in user, with the
// @Description week and session they apply to.
// @Router /judge/api/my-assignments [get]
// @Success 200 {object} []models.JudgePermission
func (s *Server) listMyAssignments(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var permissions []models.JudgePermission
	err := s.db.Preload("Week").Preload("Week.Session").Preload("Week.Session.Event").
		Where("user_email = ? AND is_active = ?", sessionData.Email, true).
		Order("created_at DESC").
		Find(&permissions).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load assignments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, permissions)
}

// JudgeParticipant is a week participant annotated with whether the
// calling judge has already scored them in the requested judge type.
type JudgeParticipant struct {
	models.Participant
	Scored bool `json:"scored"`
}

// @Summary List week participants for scoring
// @Description Participants of a week the caller is permitted to judge,
// @Description each flagged with whether the caller already scored them.
// @Router /judge/api/week/{id}/participants [get]
// @Success 200 {object} []JudgeParticipant
func (s *Server) listWeekParticipantsForJudge(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	weekID := c.Param("id")

	// Any active grant for the week, regardless of judge type, allows
	// viewing the lineup.
	var count int64
	err := s.db.Model(&models.JudgePermission{}).
		Where("user_email = ? AND week_id = ? AND is_active = ?", sessionData.Email, weekID, true).
		Count(&count).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check judge permission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if count == 0 && !sessionData.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "No judging permission for this week"})
		return
	}

	var participants []models.Participant
	err = s.db.Preload("Student").
		Where("week_id = ?", weekID).
		Order("created_at ASC").
		Find(&participants).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load participants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	scoredQuery := s.db.Model(&models.JudgeScore{}).
		Joins("JOIN participants ON participants.id = judge_scores.participant_id").
		Where("participants.week_id = ? AND judge_scores.judge_email = ?", weekID, sessionData.Email)
	if judgeType := c.Query("judge_type"); judgeType != "" {
		scoredQuery = scoredQuery.Where("judge_scores.judge_type = ?", judgeType)
	}

	var scoredIDs []string
	if err := scoredQuery.Pluck("judge_scores.participant_id", &scoredIDs).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load scored participants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	scored := make(map[string]bool, len(scoredIDs))
	for _, id := range scoredIDs {
		scored[id] = true
	}

	out := make([]JudgeParticipant, 0, len(participants))
	for _, p := range participants {
		out = append(out, JudgeParticipant{Participant: p, Scored: scored[p.ID]})
	}

	c.JSON(http.StatusOK, out)
}

// @Router /judge/api/criteria [get]
// @Success 200 {object} []models.JudgingCriteria
func (s *Server) listCriteriaForJudge(c *gin.Context) {
	query := s.db.Order("name ASC")

	if judgeType := c.Query("judge_type"); judgeType != "" {
		if !models.ValidJudgeType(judgeType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid judge type"})
			return
		}
		query = query.Where("judge_type = ?", judgeType)
	}

	var criteria []models.JudgingCriteria
	if err := query.Find(&criteria).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load criteria")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, criteria)
}

// @Summary Submit a score
// @Description Upserts the caller's score for one participant in one judge
// @Description type. Requires an active permission for the participant's
// @Description week; re-submitting overwrites the previous score.
// @Router /judge/api/submit-score [post]
// @Success 200 {object} models.JudgeScore
func (s *Server) submitScore(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Score > req.MaxScore {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Score exceeds max score"})
		return
	}

	var participant models.Participant
	if err := models.FindByIDWithPreload(s.db, req.ParticipantID, &participant, "Week"); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
		return
	}

	permission, err := s.activePermission(sessionData.Email, participant.WeekID, req.JudgeType)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check judge permission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if permission == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "No active judging permission for this week and judge type"})
		return
	}

	var breakdown string
	if len(req.Criteria) > 0 {
		data, err := json.Marshal(req.Criteria)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid criteria breakdown"})
			return
		}
		breakdown = string(data)
	}

	var score models.JudgeScore
	err = s.db.Where("participant_id = ? AND judge_email = ? AND judge_type = ?",
		req.ParticipantID, sessionData.Email, req.JudgeType).First(&score).Error
	switch err {
	case nil:
		score.Score = req.Score
		score.MaxScore = req.MaxScore
		score.Comments = req.Comments
		score.Criteria = breakdown
		if err := s.db.Save(&score).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to update score")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit score"})
			return
		}
	case gorm.ErrRecordNotFound:
		score = models.JudgeScore{
			ParticipantID: req.ParticipantID,
			JudgeEmail:    sessionData.Email,
			JudgeType:     req.JudgeType,
			Score:         req.Score,
			MaxScore:      req.MaxScore,
			Comments:      req.Comments,
			Criteria:      breakdown,
		}
		if err := s.db.Create(&score).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to create score")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit score"})
			return
		}
	default:
		s.logger.Error().Err(err).Msg("Failed to load score")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.logger.Info().
		Str("participant_id", req.ParticipantID).
		Str("judge_email", sessionData.Email).
		Str("judge_type", req.JudgeType).
		Int("score", req.Score).
		Msg("Score submitted")

	c.JSON(http.StatusOK, score)
}

// @Router /judge/api/my-scores [get]
// @Success 200 {object} []models.JudgeScore
func (s *Server) listMyScores(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	query := s.db.Preload("Participant").Preload("Participant.Student").
		Where("judge_email = ?", sessionData.Email).
		Order("updated_at DESC")

	if weekID := c.Query("week_id"); weekID != "" {
		query = query.Joins("JOIN participants ON participants.id = judge_scores.participant_id").
			Where("participants.week_id = ?", weekID)
	}

	var scores []models.JudgeScore
	if err := query.Find(&scores).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load scores")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, scores)
}
