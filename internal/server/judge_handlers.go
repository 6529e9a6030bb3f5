package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podiumhq/podium/internal/audit"
	"github.com/podiumhq/podium/internal/models"
)

type CreateJudgeRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Title    string `json:"title"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type UpdateJudgeRequest struct {
	FullName *string `json:"full_name"`
	Title    *string `json:"title"`
	Email    *string `json:"email" binding:"omitempty,email"`
	IsActive *bool   `json:"is_active"`
}

type AssignJudgeRequest struct {
	JudgeID string `json:"judge_id" binding:"required"`
}

type AssignCriteriaRequest struct {
	CriteriaID string `json:"criteria_id" binding:"required"`
}

type GrantPermissionRequest struct {
	UserEmail string `json:"user_email" binding:"required,email"`
	WeekID    string `json:"week_id" binding:"required"`
	JudgeType string `json:"judge_type" binding:"required,judgetype"`
}

// @Router /admin/api/judges [get]
// @Success 200 {object} []models.Judge
func (s *Server) listJudges(c *gin.Context) {
	var judges []models.Judge
	if err := s.db.Order("full_name ASC").Find(&judges).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load judges")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, judges)
}

// @Router /admin/api/judges [post]
// @Success 201 {object} models.Judge
func (s *Server) createJudge(c *gin.Context) {
	var req CreateJudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	judge := models.Judge{
		FullName: req.FullName,
		Title:    req.Title,
		Email:    req.Email,
		IsActive: true,
	}

	if err := s.db.Create(&judge).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create judge")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create judge"})
		return
	}

	s.recordAudit(c, audit.ActionCreate, "judge", judge.ID, judge.FullName, nil, judge, "Created judge")

	c.JSON(http.StatusCreated, judge)
}

// @Router /admin/api/judges/{id} [put]
// @Success 200 {object} models.Judge
func (s *Server) updateJudge(c *gin.Context) {
	var judge models.Judge
	if err := models.FindByID(s.db, c.Param("id"), &judge); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Judge not found"})
		return
	}

	var req UpdateJudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	old := judge

	if req.FullName != nil {
		judge.FullName = *req.FullName
	}
	if req.Title != nil {
		judge.Title = *req.Title
	}
	if req.Email != nil {
		judge.Email = *req.Email
	}
	if req.IsActive != nil {
		judge.IsActive = *req.IsActive
	}

	if err := s.db.Save(&judge).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update judge")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update judge"})
		return
	}

	s.recordAudit(c, audit.ActionUpdate, "judge", judge.ID, judge.FullName, old, judge, "Updated judge")

	c.JSON(http.StatusOK, judge)
}

// @Router /admin/api/judges/{id} [delete]
// @Success 200 {object} map[string]interface{}
func (s *Server) deleteJudge(c *gin.Context) {
	var judge models.Judge
	if err := models.FindByID(s.db, c.Param("id"), &judge); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Judge not found"})
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("judge_id = ?", judge.ID).Delete(&models.WeekJudge{}).Error; err != nil {
			return err
		}
		return tx.Delete(&judge).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete judge")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete judge"})
		return
	}

	s.recordAudit(c, audit.ActionDelete, "judge", judge.ID, judge.FullName, judge, nil, "Deleted judge")

	c.JSON(http.StatusOK, gin.H{"message": "Judge deleted"})
}

// @Router /admin/api/weeks/{id}/judges [post]
// @Success 201 {object} models.WeekJudge
func (s *Server) assignJudgeToWeek(c *gin.Context) {
	var week models.Week
	if err := models.FindByID(s.db, c.Param("id"), &week); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	var req AssignJudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var judge models.Judge
	if err := models.FindByID(s.db, req.JudgeID, &judge); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Judge not found"})
		return
	}

	var existing models.WeekJudge
	err := s.db.Where("week_id = ? AND judge_id = ?", week.ID, judge.ID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Judge already assigned to this week"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		s.logger.Error().Err(err).Msg("Failed to check week judge")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	weekJudge := models.WeekJudge{WeekID: week.ID, JudgeID: judge.ID}
	if err := s.db.Create(&weekJudge).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to assign judge")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign judge"})
		return
	}

	s.recordAudit(c, audit.ActionCreate, "week_judge", weekJudge.ID, judge.FullName,
		nil, weekJudge, "Assigned judge to week")

	c.JSON(http.StatusCreated, weekJudge)
}

// @Router /admin/api/weeks/{id}/criteria [post]
// @Success 201 {object} models.WeekCriteria
func (s *Server) assignCriteriaToWeek(c *gin.Context) {
	var week models.Week
	if err := models.FindByID(s.db, c.Param("id"), &week); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	var req AssignCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var criteria models.JudgingCriteria
	if err := models.FindByID(s.db, req.CriteriaID, &criteria); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Criteria not found"})
		return
	}

	var existing models.WeekCriteria
	err := s.db.Where("week_id = ? AND criteria_id = ?", week.ID, criteria.ID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Criteria already assigned to this week"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		s.logger.Error().Err(err).Msg("Failed to check week criteria")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	weekCriteria := models.WeekCriteria{WeekID: week.ID, CriteriaID: criteria.ID}
	if err := s.db.Create(&weekCriteria).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to assign criteria")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign criteria"})
		return
	}

	s.recordAudit(c, audit.ActionCreate, "week_criteria", weekCriteria.ID, criteria.Name,
		nil, weekCriteria, "Assigned criteria to week")

	c.JSON(http.StatusCreated, weekCriteria)
}

// @Router /admin/api/judging-criteria [get]
// @Success 200 {object} []models.JudgingCriteria
func (s *Server) listCriteria(c *gin.Context) {
	query := s.db.Order("name ASC")

	if judgeType := c.Query("judge_type"); judgeType != "" {
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

// @Router /admin/api/judge-permissions [get]
// @Success 200 {object} []models.JudgePermission
func (s *Server) listJudgePermissions(c *gin.Context) {
	query := s.db.Preload("Week").Order("created_at DESC")

	if weekID := c.Query("week_id"); weekID != "" {
		query = query.Where("week_id = ?", weekID)
	}
	if email := c.Query("user_email"); email != "" {
		query = query.Where("user_email = ?", email)
	}

	var permissions []models.JudgePermission
	if err := query.Find(&permissions).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load judge permissions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, permissions)
}

// @Summary Grant judging permission
// @Description Grants a user the right to submit scores of one judge type
// @Description for one week. Re-granting a revoked permission reactivates it.
// @Router /admin/api/judge-permissions [post]
// @Success 201 {object} models.JudgePermission
func (s *Server) grantJudgePermission(c *gin.Context) {
	var req GrantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var week models.Week
	if err := models.FindByID(s.db, req.WeekID, &week); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
		return
	}

	sessionData, _ := GetSessionData(c)

	var existing models.JudgePermission
	err := s.db.Where("user_email = ? AND week_id = ? AND judge_type = ?",
		req.UserEmail, req.WeekID, req.JudgeType).First(&existing).Error
	if err == nil {
		if existing.IsActive {
			c.JSON(http.StatusConflict, gin.H{"error": "Permission already granted"})
			return
		}
		// Revoked grant exists; reactivate instead of duplicating.
		existing.IsActive = true
		existing.RevokedAt = nil
		existing.RevokedByEmail = ""
		existing.GrantedByEmail = sessionData.Email
		if err := s.db.Save(&existing).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to reactivate judge permission")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grant permission"})
			return
		}

		s.recordAudit(c, audit.ActionUpdate, "judge_permission", existing.ID, existing.UserEmail,
			nil, existing, "Reactivated judging permission")

		c.JSON(http.StatusOK, existing)
		return
	}
	if err != gorm.ErrRecordNotFound {
		s.logger.Error().Err(err).Msg("Failed to check judge permission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	permission := models.JudgePermission{
		UserEmail:      req.UserEmail,
		WeekID:         req.WeekID,
		JudgeType:      req.JudgeType,
		GrantedByEmail: sessionData.Email,
		IsActive:       true,
	}

	if err := s.db.Create(&permission).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to grant judge permission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grant permission"})
		return
	}

	s.recordAudit(c, audit.ActionCreate, "judge_permission", permission.ID, permission.UserEmail,
		nil, permission, "Granted judging permission")

	c.JSON(http.StatusCreated, permission)
}

// @Router /admin/api/judge-permissions/{id}/revoke [post]
// @Success 200 {object} models.JudgePermission
func (s *Server) revokeJudgePermission(c *gin.Context) {
	var permission models.JudgePermission
	if err := models.FindByID(s.db, c.Param("id"), &permission); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Permission not found"})
		return
	}

	if !permission.IsActive {
		c.JSON(http.StatusConflict, gin.H{"error": "Permission already revoked"})
		return
	}

	sessionData, _ := GetSessionData(c)

	now := time.Now().UTC()
	old := permission
	permission.IsActive = false
	permission.RevokedAt = &now
	permission.RevokedByEmail = sessionData.Email

	if err := s.db.Save(&permission).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to revoke judge permission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke permission"})
		return
	}

	s.recordAudit(c, audit.ActionUpdate, "judge_permission", permission.ID, permission.UserEmail,
		old, permission, "Revoked judging permission")

	c.JSON(http.StatusOK, permission)
}

// @Router /admin/api/judge-permissions/{id}/reactivate [post]
// @Success 200 {object} models.JudgePermission
func (s *Server) reactivateJudgePermission(c *gin.Context) {
	var permission models.JudgePermission
	if err := models.FindByID(s.db, c.Param("id"), &permission); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Permission not found"})
		return
	}

	if permission.IsActive {
		c.JSON(http.StatusConflict, gin.H{"error": "Permission is already active"})
		return
	}

	sessionData, _ := GetSessionData(c)

	old := permission
	permission.IsActive = true
	permission.RevokedAt = nil
	permission.RevokedByEmail = ""
	permission.GrantedByEmail = sessionData.Email

	if err := s.db.Save(&permission).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to reactivate judge permission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reactivate permission"})
		return
	}

	s.recordAudit(c, audit.ActionUpdate, "judge_permission", permission.ID, permission.UserEmail,
		old, permission, "Reactivated judging permission")

	c.JSON(http.StatusOK, permission)
}
