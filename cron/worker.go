package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"eventra/config"
	bookingRepo "eventra/database/repository/booking"
	reviewRepo "eventra/database/repository/review"
	"eventra/models"
	"eventra/services/notification"
	"eventra/services/tasks"

	"github.com/hibiken/asynq"
)

// InitReviewReminderWorker runs the async worker in background. Reminders
// are idempotent: a reminder for a booking that is no longer delivered, or
// whose user has already reviewed the target, is dropped silently, so the
// sweep is safe to run concurrently with itself.
func InitReviewReminderWorker(
	bookings bookingRepo.BookingRepository,
	reviews reviewRepo.ReviewRepository,
	notifSvc notification.NotificationService,
) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReviewReminder, handleReviewReminderTask(bookings, reviews, notifSvc))

	go func() {
		log.Println("[ReviewReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReviewReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReviewReminderWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleReviewReminderTask(
	bookings bookingRepo.BookingRepository,
	reviews reviewRepo.ReviewRepository,
	notifSvc notification.NotificationService,
) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ReviewReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReviewReminderHandler] invalid payload: %v", err)
			return err
		}

		b, err := bookings.GetByID(ctx, p.BookingID)
		if err != nil {
			log.Printf("[ReviewReminderHandler] booking %s not loadable: %v", p.BookingID, err)
			return err
		}
		if b.Status != models.BookingDelivered {
			return nil
		}

		reviewed, err := reviews.HasUserReview(ctx, b.UserID, models.TargetProvider, b.ProviderID)
		if err != nil {
			return err
		}
		if reviewed {
			return nil
		}

		if err := notifSvc.ReviewInvitationReminder(ctx, b); err != nil {
			log.Printf("[ReviewReminderHandler] failed to send reminder for booking %s: %v", b.ID, err)
			return err
		}
		return nil
	}
}
