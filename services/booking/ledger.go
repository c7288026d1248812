package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "eventra/database/repository/booking"
	"eventra/models"

	"github.com/google/uuid"
)

// Reserve validates the requested window against resolved availability and
// commits the booking. The whole check-and-commit runs under the provider's
// lock, and the repository re-checks for overlap inside its transaction, so
// concurrent attempts on overlapping windows cannot both succeed.
func (s *DefaultLedgerService) Reserve(ctx context.Context, req models.ReservationRequest) (*models.Booking, error) {
	start := req.Start.UTC()
	end := req.End.UTC()
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return nil, &BookingError{
			Code:    CodeInvalidWindow,
			Message: "start must be before end",
		}
	}

	s.Locks.Lock(req.ProviderID)
	defer s.Locks.Unlock(req.ProviderID)

	intervals, err := s.Availability.ResolveOpenIntervals(ctx, req.ProviderID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve availability: %w", err)
	}
	if !covered(intervals, start, end) {
		return nil, &BookingError{
			Code:    CodeOutsideAvailability,
			Message: fmt.Sprintf("window [%s, %s) is not within the provider's open availability", start.Format(time.RFC3339), end.Format(time.RFC3339)),
		}
	}

	now := time.Now().UTC()
	b := &models.Booking{
		ID:            uuid.New().String(),
		ProviderID:    req.ProviderID,
		UserID:        req.UserID,
		ServiceID:     req.ServiceID,
		Start:         start,
		End:           end,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentUnpaid,
		TotalAmount:   req.TotalAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Repo.ReserveTransactionally(ctx, b); err != nil {
		var conflict *bookingRepo.ConflictError
		if errors.As(err, &conflict) {
			return nil, &BookingError{
				Code:    CodeSlotConflict,
				Message: "window overlaps an existing booking",
				Conflict: &models.OpenInterval{
					Start: conflict.Existing.Start,
					End:   conflict.Existing.End,
				},
			}
		}
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}
	return b, nil
}

// covered reports whether [start, end) is fully inside the union of the
// resolved open intervals. Intervals arrive disjoint and sorted, so a single
// forward sweep finds any gap.
func covered(intervals []models.OpenInterval, start, end time.Time) bool {
	cursor := start
	for _, iv := range intervals {
		if !iv.Overlaps(cursor, end) {
			continue
		}
		if iv.Start.After(cursor) {
			return false
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
		if !cursor.Before(end) {
			return true
		}
	}
	return !cursor.Before(end)
}

func (s *DefaultLedgerService) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.Repo.GetByID(ctx, bookingID)
}

func (s *DefaultLedgerService) ListByProvider(ctx context.Context, providerID string, from, to time.Time) ([]models.Booking, error) {
	return s.Repo.ListByProvider(ctx, providerID, from, to)
}

func (s *DefaultLedgerService) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.Repo.ListByUser(ctx, userID)
}
