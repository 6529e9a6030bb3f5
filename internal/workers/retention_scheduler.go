package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/podiumhq/podium/internal/config"
	"github.com/podiumhq/podium/internal/tasks"
)

// StartRetentionScheduler enqueues an audit:prune task on the configured
// cron schedule. It checks every minute whether the next scheduled run has
// passed, the same pattern the rest of the worker uses for periodic work.
func StartRetentionScheduler(client *asynq.Client, cfg *config.Config, logger zerolog.Logger) {
	schedule, err := parseSchedule(cfg.Audit.RetentionSchedule)
	if err != nil {
		logger.Error().Err(err).
			Str("schedule", cfg.Audit.RetentionSchedule).
			Msg("Invalid audit retention schedule - pruning disabled")
		return
	}

	next := schedule.Next(time.Now())
	logger.Info().
		Str("schedule", cfg.Audit.RetentionSchedule).
		Int("retention_days", cfg.Audit.RetentionDays).
		Time("next_run", next).
		Msg("Audit retention scheduler started")

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		if now.Before(next) {
			continue
		}

		task, err := tasks.NewAuditPruneTask(cfg.Audit.RetentionDays)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to build audit prune task")
		} else if _, err := client.Enqueue(task, asynq.Queue("low")); err != nil {
			logger.Error().Err(err).Msg("Failed to enqueue audit prune task")
		} else {
			logger.Info().Time("ran_at", now).Msg("Audit prune task enqueued")
		}

		next = schedule.Next(now)
	}
}

// parseSchedule parses a standard 5-field cron expression
// (minute hour day-of-month month day-of-week).
func parseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}
