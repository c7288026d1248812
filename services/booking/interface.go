package booking

import (
	"context"
	"time"

	bookingRepo "eventra/database/repository/booking"
	"eventra/models"
	"eventra/services/availability"
	"eventra/services/notification"
	"eventra/utils"

	"github.com/hibiken/asynq"
)

// LedgerService is the authoritative booking engine: it commits reservations
// against resolved availability and drives each booking's lifecycle.
type LedgerService interface {
	Reserve(ctx context.Context, req models.ReservationRequest) (*models.Booking, error)
	Transition(ctx context.Context, bookingID string, event models.BookingEvent) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, reason string) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByProvider(ctx context.Context, providerID string, from, to time.Time) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
}

// TaskEnqueuer schedules background tasks; *asynq.Client satisfies it.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultLedgerService implements LedgerService. Reservation commits are
// serialized per provider through Locks; the repository transaction makes
// the overlap check and insert atomic against the store.
type DefaultLedgerService struct {
	Repo          bookingRepo.BookingRepository
	Availability  availability.Service
	Notifier      notification.NotificationService
	Tasks         TaskEnqueuer
	Locks         *utils.KeyedMutex
	ReminderDelay time.Duration
}
