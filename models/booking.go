package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingPaid      BookingStatus = "paid"
	BookingDelivered BookingStatus = "delivered"
	BookingCancelled BookingStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingDelivered || s == BookingCancelled
}

// PaymentStatus tracks settlement of the booking amount.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentSettled  PaymentStatus = "settled"
	PaymentRefunded PaymentStatus = "refunded"
)

// BookingEvent drives the booking state machine.
type BookingEvent string

const (
	EventConfirm        BookingEvent = "confirm"
	EventPaymentSettled BookingEvent = "payment_settled"
	EventDeliver        BookingEvent = "deliver"
	EventCancel         BookingEvent = "cancel"
)

// Booking is a committed reservation of a provider's time. It is created by
// a reservation request, mutated only through state-machine transitions, and
// never hard-deleted; cancellation is a terminal state, not removal.
type Booking struct {
	ID            string        `bson:"id" json:"id"`
	ProviderID    string        `bson:"provider_id" json:"providerId"`
	UserID        string        `bson:"user_id" json:"userId"`
	ServiceID     string        `bson:"service_id" json:"serviceId"`
	Start         time.Time     `bson:"start" json:"start"` // UTC instant
	End           time.Time     `bson:"end" json:"end"`     // UTC instant
	Status        BookingStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"paymentStatus"`
	TotalAmount   float64       `bson:"total_amount" json:"totalAmount"`
	CancelReason  string        `bson:"cancel_reason,omitempty" json:"cancelReason,omitempty"`
	CancelledAt   *time.Time    `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	DeliveredAt   *time.Time    `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}

// ReservationRequest is the input for creating a booking.
type ReservationRequest struct {
	ProviderID  string    `json:"providerId" binding:"required"`
	ServiceID   string    `json:"serviceId" binding:"required"`
	UserID      string    `json:"-"`
	Start       time.Time `json:"start" binding:"required"`
	End         time.Time `json:"end" binding:"required"`
	TotalAmount float64   `json:"totalAmount" binding:"min=0"`
}
