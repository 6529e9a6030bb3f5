package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Audit trail tasks
	TypeAuditRecord = "audit:record"
	TypeAuditPrune  = "audit:prune"
)

// AuditRecordPayload is the payload for an audit:record task.
type AuditRecordPayload struct {
	AdminEmail  string `json:"admin_email"`
	AdminID     string `json:"admin_id,omitempty"`
	ActionType  string `json:"action_type"`
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id,omitempty"`
	EntityName  string `json:"entity_name,omitempty"`
	OldValue    string `json:"old_value,omitempty"`
	NewValue    string `json:"new_value,omitempty"`
	Description string `json:"description,omitempty"`
}

// AuditPrunePayload is the payload for an audit:prune task.
type AuditPrunePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditRecordTask creates a task to persist one audit log entry
func NewAuditRecordTask(payload AuditRecordPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeAuditRecord, data), nil
}

// NewAuditPruneTask creates a task to delete audit logs older than the
// retention window
func NewAuditPruneTask(retentionDays int) (*asynq.Task, error) {
	data, err := json.Marshal(AuditPrunePayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeAuditPrune, data), nil
}

// ParseAuditRecordPayload parses an audit:record payload from an Asynq task
func ParseAuditRecordPayload(task *asynq.Task) (AuditRecordPayload, error) {
	var payload AuditRecordPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}

// ParseAuditPrunePayload parses an audit:prune payload from an Asynq task
func ParseAuditPrunePayload(task *asynq.Task) (AuditPrunePayload, error) {
	var payload AuditPrunePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
