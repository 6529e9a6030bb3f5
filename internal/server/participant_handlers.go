package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podiumhq/podium/internal/audit"
	"github.com/podiumhq/podium/internal/models"
)

type AddParticipantRequest struct {
	WeekID    string `json:"week_id" binding:"required"`
	StudentID string `json:"student_id" binding:"required"`
	Notes     string `json:"notes"`
}

type UpdateParticipantRequest struct {
	Score *int    `json:"score" binding:"omitempty,min=0"`
	Notes *string `json:"notes"`
}

// @Summary Manually add a participant
// @Description Adds a student to a week and marks them spoken for the
// @Description session, same as a random draw would.
// @Router /admin/api/participants [post]
// @Success 201 {object} models.Participant
func (s *Server) addParticipant(c *gin.Context) {
	var req AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var week models.Week
	if err := models.FindByID(s.db, req.WeekID, &week); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	var student models.Student
	if err := models.FindByID(s.db, req.StudentID, &student); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var existing models.Participant
	err := s.db.Where("week_id = ? AND student_id = ?", req.WeekID, req.StudentID).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Student is already a participant in this week"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		s.logger.Error().Err(err).Msg("Failed to check participant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	participant := models.Participant{
		WeekID:    req.WeekID,
		StudentID: req.StudentID,
		Notes:     req.Notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&participant).Error; err != nil {
			return err
		}

		var status models.SpeakerStatus
		return tx.Where(models.SpeakerStatus{SessionID: week.SessionID, StudentID: student.ID}).
			Assign(map[string]interface{}{
				"has_spoken":        true,
				"spoken_in_week_id": week.ID,
			}).
			FirstOrCreate(&status).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to add participant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add participant"})
		return
	}

	s.recordAudit(c, audit.ActionCreate, "participant", participant.ID, student.FullName,
		nil, participant, "Added participant")

	c.JSON(http.StatusCreated, participant)
}

// @Router /admin/api/participants/{id} [put]
// @Success 200 {object} models.Participant
func (s *Server) updateParticipant(c *gin.Context) {
	var participant models.Participant
	if err := models.FindByIDWithPreload(s.db, c.Param("id"), &participant, "Student"); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
		return
	}

	var req UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	old := participant

	if req.Score != nil {
		participant.Score = *req.Score
	}
	if req.Notes != nil {
		participant.Notes = *req.Notes
	}

	if err := s.db.Save(&participant).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update participant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update participant"})
		return
	}

	s.recordAudit(c, audit.ActionUpdate, "participant", participant.ID, participant.Student.FullName,
		old, participant, "Updated participant")

	c.JSON(http.StatusOK, participant)
}

// @Summary Remove a participant
// @Description Removes the student from the week and returns them to the
// @Description unspoken pool.
// @Router /admin/api/participants/{id} [delete]
// @Success 200 {object} map[string]interface{}
func (s *Server) removeParticipant(c *gin.Context) {
	var participant models.Participant
	if err := models.FindByIDWithPreload(s.db, c.Param("id"), &participant, "Week", "Student"); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SpeakerStatus{}).
			Where("session_id = ? AND student_id = ?", participant.Week.SessionID, participant.StudentID).
			Updates(map[string]interface{}{"has_spoken": false, "spoken_in_week_id": ""}).Error; err != nil {
			return err
		}
		if err := tx.Where("participant_id = ?", participant.ID).Delete(&models.JudgeScore{}).Error; err != nil {
			return err
		}
		return tx.Delete(&participant).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to remove participant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove participant"})
		return
	}

	s.recordAudit(c, audit.ActionDelete, "participant", participant.ID, participant.Student.FullName,
		participant, nil, "Removed participant")

	c.JSON(http.StatusOK, gin.H{"message": "Participant removed"})
}
