package tasks

import (
	"github.com/hibiken/asynq"
)

const TypeProcessWebhook = "webhook:process"

// NewWebhookTask wraps a raw webhook body for background processing.
// MaxRetry(0) keeps processing at-most-once: the platform was already
// acked, so a failure is logged and dropped rather than replayed with
// its business side effects.
func NewWebhookTask(rawBody []byte) (*asynq.Task, []asynq.Option) {
	task := asynq.NewTask(TypeProcessWebhook, rawBody)
	opts := []asynq.Option{asynq.MaxRetry(0)}

	return task, opts
}
