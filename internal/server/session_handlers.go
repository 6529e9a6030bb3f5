package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/podiumhq/podium/internal/audit"
	"github.com/podiumhq/podium/internal/i18n"
	"github.com/podiumhq/podium/internal/models"
)

type CreateSessionRequest struct {
	EventID       string     `json:"event_id" binding:"required"`
	Name          string     `json:"name" binding:"required"`
	SessionNumber int        `json:"session_number" binding:"required,min=1"`
	Language      string     `json:"language"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

type UpdateSessionRequest struct {
	Name          *string    `json:"name"`
	SessionNumber *int       `json:"session_number" binding:"omitempty,min=1"`
	Language      *string    `json:"language"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	IsActive      *bool      `json:"is_active"`
}

// @Router /admin/api/sessions [get]
// @Success 200 {object} []models.EventSession
func (s *Server) listSessions(c *gin.Context) {
	query := s.db.Preload("Event").Order("created_at DESC")

	if eventID := c.Query("event_id"); eventID != "" {
		query = query.Where("event_id = ?", eventID)
	}

	var sessions []models.EventSession
	if err := query.Find(&sessions).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Router /admin/api/sessions [post]
// @Success 201 {object} models.EventSession
func (s *Server) createSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var event models.Event
	if err := models.FindByID(s.db, req.EventID, &event); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	session := models.EventSession{
		EventID:       req.EventID,
		Name:          req.Name,
		SessionNumber: req.SessionNumber,
		Language:      i18n.Normalize(req.Language),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsActive:      true,
	}

	if err := s.db.Create(&session).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	s.recordAudit(c, audit.ActionCreate, "session", session.ID, session.Name, nil, session, "Created session")

	c.JSON(http.StatusCreated, session)
}

// @Router /admin/api/sessions/{id} [put]
// @Success 200 {object} models.EventSession
func (s *Server) updateSession(c *gin.Context) {
	var session models.EventSession
	if err := models.FindByID(s.db, c.Param("id"), &session); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	old := session

	if req.Name != nil {
		session.Name = *req.Name
	}
	if req.SessionNumber != nil {
		session.SessionNumber = *req.SessionNumber
	}
	if req.Language != nil {
		session.Language = i18n.Normalize(*req.Language)
	}
	if req.StartDate != nil {
		session.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		session.EndDate = req.EndDate
	}
	if req.IsActive != nil {
		session.IsActive = *req.IsActive
	}

	if err := s.db.Save(&session).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
		return
	}

	s.recordAudit(c, audit.ActionUpdate, "session", session.ID, session.Name, old, session, "Updated session")

	c.JSON(http.StatusOK, session)
}

// @Router /admin/api/sessions/{id} [delete]
// @Success 200 {object} map[string]interface{}
func (s *Server) deleteSession(c *gin.Context) {
	var session models.EventSession
	if err := models.FindByID(s.db, c.Param("id"), &session); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	var weekCount int64
	if err := s.db.Model(&models.Week{}).Where("session_id = ?", session.ID).Count(&weekCount).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count weeks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if weekCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Session has weeks; delete them first"})
		return
	}

	if err := s.db.Delete(&session).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
		return
	}

	s.recordAudit(c, audit.ActionDelete, "session", session.ID, session.Name, session, nil, "Deleted session")

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// @Summary Reset speaker pool
// @Description Clears HasSpoken for every student in the session so random
// @Description selection can draw from the full roster again.
// @Router /admin/api/sessions/{id}/reset-speakers [post]
// @Success 200 {object} map[string]interface{}
func (s *Server) resetSessionSpeakers(c *gin.Context) {
	var session models.EventSession
	if err := models.FindByID(s.db, c.Param("id"), &session); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	result := s.db.Model(&models.SpeakerStatus{}).
		Where("session_id = ?", session.ID).
		Updates(map[string]interface{}{"has_spoken": false, "spoken_in_week_id": ""})
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Msg("Failed to reset speaker statuses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset speakers"})
		return
	}

	s.recordAudit(c, audit.ActionUpdate, "session", session.ID, session.Name, nil,
		gin.H{"reset_count": result.RowsAffected}, "Reset speaker pool")

	s.logger.Info().
		Str("session_id", session.ID).
		Int64("reset_count", result.RowsAffected).
		Msg("Speaker pool reset")

	c.JSON(http.StatusOK, gin.H{
		"message":     "Speaker pool reset",
		"reset_count": result.RowsAffected,
	})
}
