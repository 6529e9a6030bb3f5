package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podiumhq/podium/internal/audit"
	"github.com/podiumhq/podium/internal/models"
	"github.com/podiumhq/podium/internal/roster"
)

type CreateStudentRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Grade    *int   `json:"grade" binding:"omitempty,grade"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type UpdateStudentRequest struct {
	FullName *string `json:"full_name"`
	Grade    *int    `json:"grade" binding:"omitempty,grade"`
	Email    *string `json:"email" binding:"omitempty,email"`
	IsActive *bool   `json:"is_active"`
}

type ImportCSVRequest struct {
	Content string `json:"content" binding:"required"`
}

// @Router /admin/api/students [get]
// @Success 200 {object} []models.Student
func (s *Server) listStudents(c *gin.Context) {
	query := s.db.Order("full_name ASC")

	if grade := c.Query("grade"); grade != "" {
		query = query.Where("grade = ?", grade)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load students")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, students)
}

// @Router /admin/api/students [post]
// @Success 201 {object} models.Student
func (s *Server) createStudent(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student := models.Student{
		FullName: req.FullName,
		Grade:    req.Grade,
		Email:    req.Email,
		IsActive: true,
	}

	if err := s.db.Create(&student).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create student")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create student"})
		return
	}

	s.recordAudit(c, audit.ActionCreate, "student", student.ID, student.FullName, nil, student, "Created student")

	c.JSON(http.StatusCreated, student)
}

// @Router /admin/api/students/{id} [put]
// @Success 200 {object} models.Student
func (s *Server) updateStudent(c *gin.Context) {
	var student models.Student
	if err := models.FindByID(s.db, c.Param("id"), &student); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var req UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	old := student

	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Grade != nil {
		student.Grade = req.Grade
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}

	if err := s.db.Save(&student).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update student")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update student"})
		return
	}

	s.recordAudit(c, audit.ActionUpdate, "student", student.ID, student.FullName, old, student, "Updated student")

	c.JSON(http.StatusOK, student)
}

// @Router /admin/api/students/{id} [delete]
// @Success 200 {object} map[string]interface{}
func (s *Server) deleteStudent(c *gin.Context) {
	var student models.Student
	if err := models.FindByID(s.db, c.Param("id"), &student); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	if err := s.db.Delete(&student).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete student")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete student"})
		return
	}

	s.recordAudit(c, audit.ActionDelete, "student", student.ID, student.FullName, student, nil, "Deleted student")

	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}

// @Summary Import students from CSV
// @Description Parses CSV content with full_name and grade columns, skips
// @Description rows that already exist, and reports per-row errors.
// @Router /admin/api/import-csv [post]
// @Success 200 {object} roster.ImportSummary
func (s *Server) importStudentsCSV(c *gin.Context) {
	var req ImportCSVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed, parseErrors := roster.ParseCSV(req.Content)

	var existing []models.Student
	if err := s.db.Find(&existing).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load students for import")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	toImport, skipMessages := roster.FilterExisting(parsed, existing)

	imported := 0
	if len(toImport) > 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			for i := range toImport {
				if err := tx.Create(&toImport[i]).Error; err != nil {
					return err
				}
				imported++
			}
			return nil
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to import students")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import students"})
			return
		}
	}

	totalRows := len(parsed) + len(parseErrors)
	summary := roster.Summarize(totalRows, imported, len(skipMessages), append(parseErrors, skipMessages...))

	s.recordAudit(c, audit.ActionCreate, "student", "", "csv-import", nil, summary,
		"Imported students from CSV")

	s.logger.Info().
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Int("errors", len(summary.Errors)).
		Msg("CSV import finished")

	c.JSON(http.StatusOK, summary)
}

// recordAudit queues an audit entry attributed to the current admin.
func (s *Server) recordAudit(c *gin.Context, action, entityType, entityID, entityName string, oldValue, newValue interface{}, description string) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		return
	}

	s.audit.Record(audit.Entry{
		AdminEmail:  sessionData.Email,
		AdminID:     sessionData.UserID,
		ActionType:  action,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityName:  entityName,
		OldValue:    oldValue,
		NewValue:    newValue,
		Description: description,
	})
}
