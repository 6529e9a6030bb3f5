package server

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podiumhq/podium/internal/audit"
	"github.com/podiumhq/podium/internal/models"
)

// ParticipantResult aggregates all judge scores for one participant.
type ParticipantResult struct {
	Participant models.Participant  `json:"participant"`
	Scores      []models.JudgeScore `json:"scores"`
	TotalScore  int                 `json:"total_score"`
	MaxTotal    int                 `json:"max_total"`
	JudgeCount  int                 `json:"judge_count"`
}

// WeekResults is the full ranked leaderboard for a week.
type WeekResults struct {
	Week      models.Week         `json:"week"`
	Results   []ParticipantResult `json:"results"`
	Published bool                `json:"published"`
}

// weekResults loads and ranks all participants of a week by total score.
func (s *Server) weekResults(weekID string) (*WeekResults, error) {
	var week models.Week
	err := models.FindByIDWithPreload(s.db, weekID, &week, "Session", "Session.Event")
	if err != nil {
		return nil, err
	}

	var participants []models.Participant
	err = s.db.Preload("Student").Where("week_id = ?", weekID).Find(&participants).Error
	if err != nil {
		return nil, err
	}

	published := false
	results := make([]ParticipantResult, 0, len(participants))
	for _, p := range participants {
		var scores []models.JudgeScore
		if err := s.db.Where("participant_id = ?", p.ID).Find(&scores).Error; err != nil {
			return nil, err
		}

		result := ParticipantResult{Participant: p, Scores: scores}
		judges := make(map[string]bool)
		for _, sc := range scores {
			result.TotalScore += sc.Score
			result.MaxTotal += sc.MaxScore
			judges[sc.JudgeEmail] = true
		}
		result.JudgeCount = len(judges)

		if p.IsWinner {
			published = true
		}

		results = append(results, result)
	}

	// Highest total first; published position wins ties so the stored
	// ranking stays stable after publishing.
	sort.SliceStable(results, func(i, j int) bool {
		pi, pj := results[i].Participant.Position, results[j].Participant.Position
		if pi != nil && pj != nil {
			return *pi < *pj
		}
		if pi != nil {
			return true
		}
		if pj != nil {
			return false
		}
		return results[i].TotalScore > results[j].TotalScore
	})

	return &WeekResults{Week: week, Results: results, Published: published}, nil
}

// @Summary Week results
// @Description Ranked leaderboard with per-participant score breakdowns.
// @Router /admin/api/results/{weekId} [get]
// @Success 200 {object} WeekResults
func (s *Server) getWeekResults(c *gin.Context) {
	results, err := s.weekResults(c.Param("weekId"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load week results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// @Router /admin/api/participant/{id}/scores [get]
// @Success 200 {object} []models.JudgeScore
func (s *Server) getParticipantScores(c *gin.Context) {
	var participant models.Participant
	if err := models.FindByID(s.db, c.Param("id"), &participant); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
		return
	}

	var scores []models.JudgeScore
	err := s.db.Where("participant_id = ?", participant.ID).
		Order("judge_type ASC").
		Find(&scores).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load participant scores")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, scores)
}

// @Summary Publish winners
// @Description Ranks the week by total judge score and records the top three
// @Description as winners with positions. Publishing again re-ranks.
// @Router /admin/api/publish-winners/{weekId} [post]
// @Success 200 {object} WeekResults
func (s *Server) publishWinners(c *gin.Context) {
	weekID := c.Param("weekId")

	results, err := s.weekResults(weekID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load week results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if len(results.Results) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Week has no participants"})
		return
	}

	scored := 0
	for _, r := range results.Results {
		if r.JudgeCount > 0 {
			scored++
		}
	}
	if scored == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "No scores submitted yet"})
		return
	}

	// Rank purely by total for publishing, ignoring any previous positions.
	ranked := make([]ParticipantResult, len(results.Results))
	copy(ranked, results.Results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i, r := range ranked {
			updates := map[string]interface{}{
				"score":     r.TotalScore,
				"is_winner": false,
				"position":  nil,
			}
			if i < 3 {
				position := i + 1
				updates["is_winner"] = true
				updates["position"] = position
			}
			if err := tx.Model(&models.Participant{}).
				Where("id = ?", r.Participant.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish winners")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish winners"})
		return
	}

	s.recordAudit(c, audit.ActionUpdate, "week", weekID, results.Week.Topic, nil,
		gin.H{"published": true}, "Published winners")

	s.logger.Info().Str("week_id", weekID).Msg("Winners published")

	updated, err := s.weekResults(weekID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to reload week results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// @Summary Unpublish winners
// @Description Clears winner flags and positions for the week.
// @Router /admin/api/unpublish-winners/{weekId} [post]
// @Success 200 {object} map[string]interface{}
func (s *Server) unpublishWinners(c *gin.Context) {
	var week models.Week
	if err := models.FindByID(s.db, c.Param("weekId"), &week); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	err := s.db.Model(&models.Participant{}).
		Where("week_id = ?", week.ID).
		Updates(map[string]interface{}{"is_winner": false, "position": nil}).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to unpublish winners")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unpublish winners"})
		return
	}

	s.recordAudit(c, audit.ActionUpdate, "week", week.ID, week.Topic, nil,
		gin.H{"published": false}, "Unpublished winners")

	c.JSON(http.StatusOK, gin.H{"message": "Winners unpublished"})
}

// @Router /admin/api/week/{weekId}/publish-status [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) getPublishStatus(c *gin.Context) {
	var week models.Week
	if err := models.FindByID(s.db, c.Param("weekId"), &week); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	var count int64
	err := s.db.Model(&models.Participant{}).
		Where("week_id = ? AND is_winner = ?", week.ID, true).
		Count(&count).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check publish status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_id":      week.ID,
		"published":    count > 0,
		"winner_count": count,
	})
}
