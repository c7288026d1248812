package bookingRepo

import (
	"context"
	"time"

	"eventra/models"
)

// StatusUpdate carries the fields a state transition is allowed to touch
// besides the status itself.
type StatusUpdate struct {
	PaymentStatus *models.PaymentStatus
	CancelReason  string
	CancelledAt   *time.Time
	DeliveredAt   *time.Time
}

// BookingRepository is the authoritative store of committed bookings. The
// overlap check and the insert in ReserveTransactionally run inside one
// transaction so concurrent reservations cannot both commit.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	FindOverlapping(ctx context.Context, providerID string, start, end time.Time) ([]models.Booking, error)
	ListByProvider(ctx context.Context, providerID string, from, to time.Time) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	// ReserveTransactionally inserts the booking after re-checking for
	// overlap; it reports *ConflictError when a non-cancelled booking
	// already intersects the window.
	ReserveTransactionally(ctx context.Context, booking *models.Booking) error
	// CompareAndSetStatus updates the booking's status only when it still
	// equals from; it reports ErrStateChanged otherwise.
	CompareAndSetStatus(ctx context.Context, bookingID string, from, to models.BookingStatus, upd StatusUpdate) (*models.Booking, error)
	EnsureIndexes() error
}
