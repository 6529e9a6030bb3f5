package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/podiumhq/podium/internal/models"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 500
)

// @Summary List audit logs
// @Description Newest first. Filterable by admin email, action and entity
// @Description type; paginated with limit/offset.
// @Router /admin/api/audit-logs [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) listAuditLogs(c *gin.Context) {
	query := s.db.Model(&models.AuditLog{})

	if email := c.Query("admin_email"); email != "" {
		query = query.Where("admin_email = ?", email)
	}
	if action := c.Query("action_type"); action != "" {
		query = query.Where("action_type = ?", action)
	}
	if entity := c.Query("entity_type"); entity != "" {
		query = query.Where("entity_type = ?", entity)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count audit logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	limit := defaultAuditPageSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load audit logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":   logs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
