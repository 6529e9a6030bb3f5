// Package audit records admin actions. Entries are enqueued as background
// tasks rather than written inline, so a slow or unavailable queue never
// fails the request that triggered the entry.
package audit

import (
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/podiumhq/podium/internal/tasks"
)

// Action type values.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Entry describes one admin action to record.
type Entry struct {
	AdminEmail  string
	AdminID     string
	ActionType  string
	EntityType  string
	EntityID    string
	EntityName  string
	OldValue    interface{}
	NewValue    interface{}
	Description string
}

// Recorder accepts audit entries. The nop implementation is used in tests.
type Recorder interface {
	Record(entry Entry)
}

// QueueRecorder enqueues audit entries onto the low-priority task queue.
type QueueRecorder struct {
	client *asynq.Client
	logger zerolog.Logger
}

// NewQueueRecorder creates a Recorder backed by an Asynq client.
func NewQueueRecorder(client *asynq.Client, logger zerolog.Logger) *QueueRecorder {
	return &QueueRecorder{client: client, logger: logger}
}

// Record enqueues the entry. Failures are logged and swallowed; auditing is
// best-effort and must never fail the operation being audited.
func (r *QueueRecorder) Record(entry Entry) {
	payload := tasks.AuditRecordPayload{
		AdminEmail:  entry.AdminEmail,
		AdminID:     entry.AdminID,
		ActionType:  entry.ActionType,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		EntityName:  entry.EntityName,
		OldValue:    marshal(entry.OldValue),
		NewValue:    marshal(entry.NewValue),
		Description: entry.Description,
	}

	task, err := tasks.NewAuditRecordTask(payload)
	if err != nil {
		r.logger.Error().Err(err).Str("entity_type", entry.EntityType).Msg("Failed to build audit task")
		return
	}

	if _, err := r.client.Enqueue(task, asynq.Queue("low")); err != nil {
		r.logger.Error().Err(err).Str("entity_type", entry.EntityType).Msg("Failed to enqueue audit task")
	}
}

func marshal(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// NopRecorder discards all entries.
type NopRecorder struct{}

func (NopRecorder) Record(Entry) {}
