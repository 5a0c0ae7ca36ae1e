// Package jobs runs the periodic background work of the ledger on asynq:
// notification delivery, message promotion, outbox relay and token cleanup.
package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every periodic task is enqueued on.
	QueueDefault = "default"

	TaskNotificationsDispatch = "notifications:dispatch"
	TaskMessagesPromote       = "messages:promote"
	TaskOutboxRelay           = "outbox:relay"
	TaskAuthCleanupTokens     = "auth:cleanup_tokens"
)

// NewTask builds a payload-less periodic task. Sweeps read their work from
// the database, so they carry no arguments.
func NewTask(taskType string) *asynq.Task {
	return asynq.NewTask(taskType, nil)
}

// ScheduleConfig holds cron specs for the periodic tasks.
type ScheduleConfig struct {
	NotificationsDispatch string
	MessagesPromote       string
	OutboxRelay           string
	AuthCleanupTokens     string
}

// Schedule turns the config into cron registrations. Empty specs disable a
// task. Each task is unique for one interval so a slow run is not stacked.
func Schedule(cfg ScheduleConfig) []CronRegistration {
	entries := []struct {
		spec     string
		taskType string
	}{
		{cfg.NotificationsDispatch, TaskNotificationsDispatch},
		{cfg.MessagesPromote, TaskMessagesPromote},
		{cfg.OutboxRelay, TaskOutboxRelay},
		{cfg.AuthCleanupTokens, TaskAuthCleanupTokens},
	}

	var out []CronRegistration
	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		out = append(out, CronRegistration{
			Spec: e.spec,
			Task: NewTask(e.taskType),
			Options: []asynq.Option{
				asynq.Queue(QueueDefault),
				asynq.MaxRetry(0),
				asynq.Unique(uniqueTTL),
			},
		})
	}
	return out
}
