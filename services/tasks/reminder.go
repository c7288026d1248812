package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeReviewReminder = "review:reminder"

// ReviewReminderPayload identifies the delivered booking a reminder is about.
type ReviewReminderPayload struct {
	BookingID string `json:"bookingId"`
}

// NewReviewReminderTask builds a delayed review-invitation reminder for a
// delivered booking.
func NewReviewReminderTask(bookingID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ReviewReminderPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReviewReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
