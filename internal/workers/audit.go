package workers

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/podiumhq/podium/internal/models"
	"github.com/podiumhq/podium/internal/tasks"
)

// HandleAuditRecord persists one queued audit log entry.
func HandleAuditRecord(ctx context.Context, task *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseAuditRecordPayload(task)
	if err != nil {
		return err
	}

	entry := models.AuditLog{
		AdminEmail:  payload.AdminEmail,
		AdminID:     payload.AdminID,
		ActionType:  payload.ActionType,
		EntityType:  payload.EntityType,
		EntityID:    payload.EntityID,
		EntityName:  payload.EntityName,
		OldValue:    payload.OldValue,
		NewValue:    payload.NewValue,
		Description: payload.Description,
	}

	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		logger.Error().Err(err).
			Str("entity_type", payload.EntityType).
			Str("action_type", payload.ActionType).
			Msg("Failed to persist audit log entry")
		return err
	}

	logger.Debug().
		Str("audit_id", entry.ID).
		Str("entity_type", entry.EntityType).
		Str("action_type", entry.ActionType).
		Msg("Audit log entry persisted")

	return nil
}

// HandleAuditPrune deletes audit log entries older than the retention
// window.
func HandleAuditPrune(ctx context.Context, task *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseAuditPrunePayload(task)
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -payload.RetentionDays)

	result := db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	if result.Error != nil {
		logger.Error().Err(result.Error).Msg("Failed to prune audit logs")
		return result.Error
	}

	logger.Info().
		Int64("deleted", result.RowsAffected).
		Time("cutoff", cutoff).
		Msg("Audit logs pruned")

	return nil
}
