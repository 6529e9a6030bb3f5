package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/podiumhq/podium/internal/models"
)

// WinnerEntry is one published winner on the public dashboard.
type WinnerEntry struct {
	WeekID      string `json:"week_id"`
	WeekNumber  int    `json:"week_number"`
	Topic       string `json:"topic"`
	TopicNepali string `json:"topic_nepali,omitempty"`
	SessionName string `json:"session_name"`
	EventName   string `json:"event_name"`
	StudentName string `json:"student_name"`
	Grade       *int   `json:"grade,omitempty"`
	Position    int    `json:"position"`
	Score       int    `json:"score"`
}

// @Router /api/events [get]
// @Success 200 {object} []models.Event
func (s *Server) listEvents(c *gin.Context) {
	var events []models.Event
	if err := s.db.Order("name ASC").Find(&events).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// @Router /api/sessions/{eventId} [get]
// @Success 200 {object} []models.EventSession
func (s *Server) listSessionsByEvent(c *gin.Context) {
	query := s.db.Where("event_id = ?", c.Param("eventId"))
	if lang := c.Query("language"); lang != "" {
		query = query.Where("language = ?", lang)
	}

	var sessions []models.EventSession
	err := query.Order("session_number DESC").Find(&sessions).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Router /api/weeks/{sessionId} [get]
// @Success 200 {object} []models.Week
func (s *Server) listWeeksBySession(c *gin.Context) {
	var weeks []models.Week
	err := s.db.Where("session_id = ?", c.Param("sessionId")).
		Order("week_number ASC").
		Find(&weeks).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load weeks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, weeks)
}

// @Summary Weeks across all sessions of an event
// @Router /api/weeks-by-event/{eventId} [get]
// @Success 200 {object} []models.Week
func (s *Server) listWeeksByEvent(c *gin.Context) {
	var weeks []models.Week
	err := s.db.Preload("Session").
		Joins("JOIN event_sessions ON event_sessions.id = weeks.session_id").
		Where("event_sessions.event_id = ?", c.Param("eventId")).
		Order("weeks.week_number ASC").
		Find(&weeks).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load weeks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, weeks)
}

// @Router /api/week-detail/{id} [get]
// @Success 200 {object} models.Week
func (s *Server) getWeekDetail(c *gin.Context) {
	var week models.Week
	err := models.FindByIDWithPreload(s.db, c.Param("id"), &week,
		"Session", "Session.Event", "Participants", "Participants.Student")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	c.JSON(http.StatusOK, week)
}

// @Summary Published winners
// @Description Public winner board. Only weeks whose results were published
// @Description appear; optional event_id and session_id filters.
// @Router /api/winners [get]
// @Success 200 {object} []WinnerEntry
func (s *Server) listWinners(c *gin.Context) {
	query := s.db.Preload("Student").Preload("Week").
		Preload("Week.Session").Preload("Week.Session.Event").
		Where("is_winner = ?", true)

	if sessionID := c.Query("session_id"); sessionID != "" {
		query = query.Joins("JOIN weeks ON weeks.id = participants.week_id").
			Where("weeks.session_id = ?", sessionID)
	} else if eventID := c.Query("event_id"); eventID != "" {
		query = query.Joins("JOIN weeks ON weeks.id = participants.week_id").
			Joins("JOIN event_sessions ON event_sessions.id = weeks.session_id").
			Where("event_sessions.event_id = ?", eventID)
	}

	var winners []models.Participant
	if err := query.Find(&winners).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load winners")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	entries := make([]WinnerEntry, 0, len(winners))
	for _, w := range winners {
		position := 0
		if w.Position != nil {
			position = *w.Position
		}
		entries = append(entries, WinnerEntry{
			WeekID:      w.WeekID,
			WeekNumber:  w.Week.WeekNumber,
			Topic:       w.Week.Topic,
			TopicNepali: w.Week.TopicNepali,
			SessionName: w.Week.Session.Name,
			EventName:   w.Week.Session.Event.Name,
			StudentName: w.Student.FullName,
			Grade:       w.Student.Grade,
			Position:    position,
			Score:       w.Score,
		})
	}

	c.JSON(http.StatusOK, entries)
}

// @Summary Public week rankings
// @Description Full ranking for a week whose winners have been published.
// @Router /api/week-rankings/{id} [get]
// @Success 200 {object} []models.Participant
func (s *Server) getWeekRankings(c *gin.Context) {
	weekID := c.Param("id")

	var winnerCount int64
	err := s.db.Model(&models.Participant{}).
		Where("week_id = ? AND is_winner = ?", weekID, true).
		Count(&winnerCount).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check publish status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if winnerCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Results not published for this week"})
		return
	}

	// Published positions first, everyone else by score.
	var participants []models.Participant
	err = s.db.Preload("Student").
		Where("week_id = ?", weekID).
		Order("position IS NULL, position ASC, score DESC").
		Find(&participants).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load rankings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, participants)
}
