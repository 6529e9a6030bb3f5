package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podiumhq/podium/internal/audit"
	"github.com/podiumhq/podium/internal/models"
	"github.com/podiumhq/podium/internal/selector"
)

type CreateWeekRequest struct {
	SessionID   string     `json:"session_id" binding:"required"`
	WeekNumber  int        `json:"week_number" binding:"required,min=1"`
	Topic       string     `json:"topic"`
	TopicNepali string     `json:"topic_nepali"`
	Date        *time.Time `json:"date"`
	Notes       string     `json:"notes"`
}

type UpdateWeekRequest struct {
	WeekNumber  *int       `json:"week_number" binding:"omitempty,min=1"`
	Topic       *string    `json:"topic"`
	TopicNepali *string    `json:"topic_nepali"`
	Date        *time.Time `json:"date"`
	Notes       *string    `json:"notes"`
}

type AddRandomParticipantsRequest struct {
	Count int  `json:"count" binding:"required,min=1"`
	Grade *int `json:"grade" binding:"omitempty,grade"`
	// AcceptPartial continues with fewer students than requested instead of
	// failing when the unspoken pool is too small.
	AcceptPartial bool `json:"accept_partial"`
}

// RandomSelectionResponse reports the outcome of a random draw.
type RandomSelectionResponse struct {
	Selected       []models.Student `json:"selected"`
	Requested      int              `json:"requested"`
	AvailableCount int              `json:"available_count"`
	IsPartial      bool             `json:"is_partial"`
	Message        string           `json:"message,omitempty"`
	Recommendation string           `json:"recommendation,omitempty"`
}

// @Router /admin/api/weeks [get]
// @Success 200 {object} []models.Week
func (s *Server) listWeeks(c *gin.Context) {
	query := s.db.Preload("Session").Order("week_number ASC")

	if sessionID := c.Query("session_id"); sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}

	var weeks []models.Week
	if err := query.Find(&weeks).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load weeks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, weeks)
}

// @Router /admin/api/weeks/{id} [get]
// @Success 200 {object} models.Week
func (s *Server) getWeek(c *gin.Context) {
	var week models.Week
	err := models.FindByIDWithPreload(s.db, c.Param("id"), &week,
		"Session", "Session.Event", "Participants", "Participants.Student")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	c.JSON(http.StatusOK, week)
}

// @Router /admin/api/weeks [post]
// @Success 201 {object} models.Week
func (s *Server) createWeek(c *gin.Context) {
	var req CreateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var session models.EventSession
	if err := models.FindByID(s.db, req.SessionID, &session); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	var existing models.Week
	err := s.db.Where("session_id = ? AND week_number = ?", req.SessionID, req.WeekNumber).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Week number already exists in this session"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		s.logger.Error().Err(err).Msg("Failed to check week number")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	week := models.Week{
		SessionID:   req.SessionID,
		WeekNumber:  req.WeekNumber,
		Topic:       req.Topic,
		TopicNepali: req.TopicNepali,
		Date:        req.Date,
		Notes:       req.Notes,
	}

	if err := s.db.Create(&week).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create week")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create week"})
		return
	}

	s.recordAudit(c, audit.ActionCreate, "week", week.ID, week.Topic, nil, week, "Created week")

	c.JSON(http.StatusCreated, week)
}

// @Router /admin/api/weeks/{id} [put]
// @Success 200 {object} models.Week
func (s *Server) updateWeek(c *gin.Context) {
	var week models.Week
	if err := models.FindByID(s.db, c.Param("id"), &week); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	var req UpdateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	old := week

	if req.WeekNumber != nil {
		week.WeekNumber = *req.WeekNumber
	}
	if req.Topic != nil {
		week.Topic = *req.Topic
	}
	if req.TopicNepali != nil {
		week.TopicNepali = *req.TopicNepali
	}
	if req.Date != nil {
		week.Date = req.Date
	}
	if req.Notes != nil {
		week.Notes = *req.Notes
	}

	if err := s.db.Save(&week).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update week")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update week"})
		return
	}

	s.recordAudit(c, audit.ActionUpdate, "week", week.ID, week.Topic, old, week, "Updated week")

	c.JSON(http.StatusOK, week)
}

// @Router /admin/api/weeks/{id} [delete]
// @Success 200 {object} map[string]interface{}
func (s *Server) deleteWeek(c *gin.Context) {
	var week models.Week
	if err := models.FindByID(s.db, c.Param("id"), &week); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Return this week's speakers to the unspoken pool before the week
		// and its participants go away.
		if err := tx.Model(&models.SpeakerStatus{}).
			Where("spoken_in_week_id = ?", week.ID).
			Updates(map[string]interface{}{"has_spoken": false, "spoken_in_week_id": ""}).Error; err != nil {
			return err
		}
		if err := tx.Where("week_id = ?", week.ID).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("week_id = ?", week.ID).Delete(&models.WeekJudge{}).Error; err != nil {
			return err
		}
		if err := tx.Where("week_id = ?", week.ID).Delete(&models.WeekCriteria{}).Error; err != nil {
			return err
		}
		return tx.Delete(&week).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete week")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete week"})
		return
	}

	s.recordAudit(c, audit.ActionDelete, "week", week.ID, week.Topic, week, nil, "Deleted week")

	c.JSON(http.StatusOK, gin.H{"message": "Week deleted"})
}

// @Summary Randomly select participants
// @Description Draws students who have not yet spoken in the session and
// @Description adds them to the week. With accept_partial the draw succeeds
// @Description with a smaller pool and marks the week partial.
// @Router /admin/api/weeks/{id}/add-random-participants [post]
// @Success 200 {object} RandomSelectionResponse
func (s *Server) addRandomParticipants(c *gin.Context) {
	var week models.Week
	if err := models.FindByID(s.db, c.Param("id"), &week); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	var req AddRandomParticipantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var students []models.Student
	if err := s.db.Find(&students).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load students")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var statuses []models.SpeakerStatus
	if err := s.db.Where("session_id = ?", week.SessionID).Find(&statuses).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load speaker statuses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	available := selector.AvailableStudents(students, week.SessionID, statuses, req.Grade)

	ok, message, recommendation := selector.CheckAvailability(len(available), req.Count)
	if !ok && !(req.AcceptPartial && len(available) > 0) {
		c.JSON(http.StatusConflict, RandomSelectionResponse{
			Requested:      req.Count,
			AvailableCount: len(available),
			Message:        message,
			Recommendation: recommendation,
		})
		return
	}

	selected := s.sampleStudents(available, req.Count)
	isPartial := len(selected) < req.Count

	err := s.db.Transaction(func(tx *gorm.DB) error {
		participants := selector.ParticipantRecords(week.ID, selected)
		for i := range participants {
			if err := tx.Create(&participants[i]).Error; err != nil {
				return err
			}
		}

		ids := make([]string, len(selected))
		for i, st := range selected {
			ids[i] = st.ID
		}
		for _, status := range selector.SpeakerStatusRecords(week.SessionID, ids, week.ID) {
			var existing models.SpeakerStatus
			err := tx.Where(models.SpeakerStatus{SessionID: status.SessionID, StudentID: status.StudentID}).
				Assign(map[string]interface{}{
					"has_spoken":        true,
					"spoken_in_week_id": week.ID,
				}).
				FirstOrCreate(&existing).Error
			if err != nil {
				return err
			}
		}

		if isPartial && !week.IsPartial {
			week.IsPartial = true
			if err := tx.Model(&week).Update("is_partial", true).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to add random participants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add participants"})
		return
	}

	s.recordAudit(c, audit.ActionCreate, "participant", week.ID, week.Topic, nil,
		gin.H{"count": len(selected), "partial": isPartial}, "Randomly selected participants")

	s.logger.Info().
		Str("week_id", week.ID).
		Int("requested", req.Count).
		Int("selected", len(selected)).
		Bool("partial", isPartial).
		Msg("Random participant selection")

	c.JSON(http.StatusOK, RandomSelectionResponse{
		Selected:       selected,
		Requested:      req.Count,
		AvailableCount: len(available),
		IsPartial:      isPartial,
		Message:        message,
		Recommendation: recommendation,
	})
}
