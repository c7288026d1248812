package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "eventra/database/repository/booking"
	"eventra/models"
	"eventra/services/tasks"

	"go.uber.org/zap"
)

// transitions defines the only legal lifecycle edges:
// PENDING -> CONFIRMED -> PAID -> DELIVERED on the success path,
// PENDING|CONFIRMED -> CANCELLED on the failure path.
var transitions = map[models.BookingStatus]map[models.BookingEvent]models.BookingStatus{
	models.BookingPending: {
		models.EventConfirm: models.BookingConfirmed,
		models.EventCancel:  models.BookingCancelled,
	},
	models.BookingConfirmed: {
		models.EventPaymentSettled: models.BookingPaid,
		models.EventCancel:         models.BookingCancelled,
	},
	models.BookingPaid: {
		models.EventDeliver: models.BookingDelivered,
	},
}

// Transition applies a lifecycle event to the booking. Out-of-order events
// fail with InvalidTransition and leave the state unchanged; a repeated
// payment-settled signal for an already-paid booking is a no-op.
func (s *DefaultLedgerService) Transition(ctx context.Context, bookingID string, event models.BookingEvent) (*models.Booking, error) {
	return s.transition(ctx, bookingID, event, "")
}

// Cancel is permitted only while the booking is PENDING or CONFIRMED; the
// terminal CANCELLED state frees the window for future reservations.
func (s *DefaultLedgerService) Cancel(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.EventCancel, reason)
}

func (s *DefaultLedgerService) transition(ctx context.Context, bookingID string, event models.BookingEvent, reason string) (*models.Booking, error) {
	// The CAS retries once in case another handler moved the booking
	// between our read and our write.
	for attempt := 0; attempt < 2; attempt++ {
		b, err := s.Repo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}

		next, ok := transitions[b.Status][event]
		if !ok {
			if event == models.EventPaymentSettled && b.Status == models.BookingPaid {
				// Duplicate settlement signal: no error, no side effects.
				return b, nil
			}
			return nil, &BookingError{
				Code:    CodeInvalidTransition,
				Message: fmt.Sprintf("cannot apply %s while %s", event, b.Status),
			}
		}

		updated, err := s.Repo.CompareAndSetStatus(ctx, bookingID, b.Status, next, statusUpdate(event, reason))
		if err == bookingRepo.ErrStateChanged {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.fireSideEffects(ctx, updated, event)
		return updated, nil
	}
	return nil, &BookingError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("booking state changed while applying %s", event),
	}
}

func statusUpdate(event models.BookingEvent, reason string) bookingRepo.StatusUpdate {
	now := time.Now().UTC()
	var upd bookingRepo.StatusUpdate
	switch event {
	case models.EventPaymentSettled:
		settled := models.PaymentSettled
		upd.PaymentStatus = &settled
	case models.EventDeliver:
		upd.DeliveredAt = &now
	case models.EventCancel:
		upd.CancelReason = reason
		upd.CancelledAt = &now
	}
	return upd
}

// fireSideEffects notifies collaborators after a committed transition.
// Collaborator failures are logged, never propagated: the transition stands.
func (s *DefaultLedgerService) fireSideEffects(ctx context.Context, b *models.Booking, event models.BookingEvent) {
	logger := zap.L()
	switch event {
	case models.EventConfirm:
		if s.Notifier != nil {
			if err := s.Notifier.BookingConfirmed(ctx, b); err != nil {
				logger.Warn("booking confirmation notification failed",
					zap.String("bookingId", b.ID), zap.Error(err))
			}
		}
	case models.EventDeliver:
		if s.Notifier != nil {
			if err := s.Notifier.ReviewInvitation(ctx, b); err != nil {
				logger.Warn("review invitation notification failed",
					zap.String("bookingId", b.ID), zap.Error(err))
			}
		}
		s.scheduleReviewReminder(b)
	}
}

func (s *DefaultLedgerService) scheduleReviewReminder(b *models.Booking) {
	if s.Tasks == nil {
		return
	}
	delay := s.ReminderDelay
	if delay <= 0 {
		delay = 48 * time.Hour
	}
	task, opts, err := tasks.NewReviewReminderTask(b.ID, time.Now().Add(delay))
	if err != nil {
		zap.L().Warn("failed to build review reminder task",
			zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	if _, err := s.Tasks.Enqueue(task, opts...); err != nil {
		zap.L().Warn("failed to enqueue review reminder",
			zap.String("bookingId", b.ID), zap.Error(err))
	}
}
