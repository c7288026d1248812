package notification

import (
	"context"

	"eventra/models"

	"go.uber.org/zap"
)

// NotificationService is the boundary to the external notification
// collaborator. Calls are fire-and-forget from the engine's point of view:
// a delivery failure must never roll back the state transition that
// triggered it.
type NotificationService interface {
	BookingConfirmed(ctx context.Context, b *models.Booking) error
	ReviewInvitation(ctx context.Context, b *models.Booking) error
	ReviewInvitationReminder(ctx context.Context, b *models.Booking) error
}

// LogNotificationService records each notification intent. Actual delivery
// (push, email) belongs to the collaborator service; this implementation
// stands in for it in development and tests.
type LogNotificationService struct {
	Logger *zap.Logger
}

func (s *LogNotificationService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

func (s *LogNotificationService) BookingConfirmed(ctx context.Context, b *models.Booking) error {
	s.logger().Info("notify: booking confirmed",
		zap.String("bookingId", b.ID),
		zap.String("userId", b.UserID),
		zap.String("providerId", b.ProviderID))
	return nil
}

func (s *LogNotificationService) ReviewInvitation(ctx context.Context, b *models.Booking) error {
	s.logger().Info("notify: review invitation",
		zap.String("bookingId", b.ID),
		zap.String("userId", b.UserID))
	return nil
}

func (s *LogNotificationService) ReviewInvitationReminder(ctx context.Context, b *models.Booking) error {
	s.logger().Info("notify: review invitation reminder",
		zap.String("bookingId", b.ID),
		zap.String("userId", b.UserID))
	return nil
}
