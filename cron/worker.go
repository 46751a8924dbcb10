package cron

import (
	"context"
	"encoding/json"
	"fmt"

	"barberflow/config"
	"barberflow/models"
	"barberflow/services/conversation"
	"barberflow/services/messenger"
	"barberflow/services/tasks"
	"barberflow/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// bookingLookup is the slice of the booking repository the reminder
// handler needs to re-check a booking at fire time.
type bookingLookup interface {
	GetByID(ctx context.Context, shopID, id string) (*models.Booking, error)
}

// StartWorker runs the asynq server that drains the webhook and
// reminder queues. The returned server is shut down by main on exit;
// Run errors after startup are fatal because a service that acks
// webhooks but never processes them is silently broken.
func StartWorker(cfg config.Config, dispatcher *conversation.Dispatcher, sender messenger.Sender, bookings bookingLookup) *asynq.Server {
	logger := utils.GetLogger()

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}

	concurrency := cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeProcessWebhook, handleWebhookTask(dispatcher))
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(sender, bookings))

	go func() {
		logger.Info("starting background worker", zap.Int("concurrency", concurrency))
		if err := srv.Run(mux); err != nil {
			logger.Fatal("background worker failed", zap.Error(err))
		}
	}()

	return srv
}

// handleWebhookTask unpacks one acked webhook delivery. The dispatcher
// logs and swallows everything; returning nil keeps asynq from
// replaying business side effects that the at-most-once contract
// forbids.
func handleWebhookTask(dispatcher *conversation.Dispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		return dispatcher.ProcessPayload(ctx, task.Payload())
	}
}

// handleReminderTask sends the appointment reminder. The booking is
// looked up again at fire time: a reminder scheduled hours ago must
// not reach a customer who cancelled in the meantime. Send and lookup
// errors propagate so asynq retries delivery with its default policy.
func handleReminderTask(sender messenger.Sender, bookings bookingLookup) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("invalid reminder payload", zap.Error(err))
			return nil // malformed payloads never become deliverable
		}

		booking, err := bookings.GetByID(ctx, p.ShopID, p.BookingID)
		if err != nil {
			utils.GetLogger().Warn("reminder booking lookup failed, will retry",
				zap.String("booking_id", p.BookingID),
				zap.Error(err))
			return err
		}
		if booking == nil || !booking.Status.Blocks() {
			utils.GetLogger().Debug("reminder skipped: booking no longer active",
				zap.String("booking_id", p.BookingID))
			return nil
		}

		body := fmt.Sprintf(
			"Reminder from %s: your %s with %s is today at %s. Booking code %s. See you soon! 💈",
			p.ShopName, p.ServiceLabel, p.BarberName, p.StartTime, p.Code,
		)
		if err := sender.SendText(ctx, p.PhoneNumberID, p.Phone, body); err != nil {
			utils.GetLogger().Warn("reminder send failed, will retry",
				zap.String("booking_id", p.BookingID),
				zap.Error(err))
			return err
		}
		return nil
	}
}
