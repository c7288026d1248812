package booking

import (
	"context"
	"errors"
	"testing"

	"eventra/models"
)

func mustReserve(t *testing.T, fx *ledgerFixture) *models.Booking {
	t.Helper()
	b, err := fx.svc.Reserve(context.Background(), reservation(10, 0, 11, 0))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	return b
}

func mustTransition(t *testing.T, fx *ledgerFixture, id string, event models.BookingEvent) *models.Booking {
	t.Helper()
	b, err := fx.svc.Transition(context.Background(), id, event)
	if err != nil {
		t.Fatalf("transition %s: %v", event, err)
	}
	return b
}

func TestLifecycleHappyPath(t *testing.T) {
	fx := newLedgerFixture()
	b := mustReserve(t, fx)

	if got := mustTransition(t, fx, b.ID, models.EventConfirm); got.Status != models.BookingConfirmed {
		t.Fatalf("after confirm: %s", got.Status)
	}
	paid := mustTransition(t, fx, b.ID, models.EventPaymentSettled)
	if paid.Status != models.BookingPaid || paid.PaymentStatus != models.PaymentSettled {
		t.Fatalf("after settle: %s/%s", paid.Status, paid.PaymentStatus)
	}
	delivered := mustTransition(t, fx, b.ID, models.EventDeliver)
	if delivered.Status != models.BookingDelivered {
		t.Fatalf("after deliver: %s", delivered.Status)
	}
	if delivered.DeliveredAt == nil {
		t.Fatal("delivered booking has no DeliveredAt")
	}

	if fx.notifier.confirmed != 1 {
		t.Fatalf("confirmation notified %d times, want 1", fx.notifier.confirmed)
	}
	if fx.notifier.invited != 1 {
		t.Fatalf("review invitation sent %d times, want 1", fx.notifier.invited)
	}
	if len(fx.enqueuer.tasks) != 1 {
		t.Fatalf("%d reminder tasks enqueued, want 1", len(fx.enqueuer.tasks))
	}
}

func TestSkippingStatesIsRejected(t *testing.T) {
	fx := newLedgerFixture()
	b := mustReserve(t, fx)
	ctx := context.Background()

	for _, event := range []models.BookingEvent{models.EventDeliver, models.EventPaymentSettled} {
		_, err := fx.svc.Transition(ctx, b.ID, event)
		var be *BookingError
		if !errors.As(err, &be) || be.Code != CodeInvalidTransition {
			t.Fatalf("%s from pending: got %v, want %s", event, err, CodeInvalidTransition)
		}
	}

	// The failed attempts must leave the state untouched.
	got, err := fx.svc.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.BookingPending {
		t.Fatalf("status after rejected events: %s, want pending", got.Status)
	}
}

func TestDuplicatePaymentSettledIsNoOp(t *testing.T) {
	fx := newLedgerFixture()
	b := mustReserve(t, fx)

	mustTransition(t, fx, b.ID, models.EventConfirm)
	mustTransition(t, fx, b.ID, models.EventPaymentSettled)

	// A replayed settlement signal succeeds without changing anything.
	again := mustTransition(t, fx, b.ID, models.EventPaymentSettled)
	if again.Status != models.BookingPaid || again.PaymentStatus != models.PaymentSettled {
		t.Fatalf("after duplicate settle: %s/%s", again.Status, again.PaymentStatus)
	}

	mustTransition(t, fx, b.ID, models.EventDeliver)
	if fx.notifier.invited != 1 || len(fx.enqueuer.tasks) != 1 {
		t.Fatalf("duplicate settlement produced extra side effects: invited=%d tasks=%d",
			fx.notifier.invited, len(fx.enqueuer.tasks))
	}
}

func TestCancelFromPendingAndConfirmed(t *testing.T) {
	fx := newLedgerFixture()
	ctx := context.Background()

	pending := mustReserve(t, fx)
	cancelled, err := fx.svc.Cancel(ctx, pending.ID, "no longer needed")
	if err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if cancelled.Status != models.BookingCancelled || cancelled.CancelReason != "no longer needed" {
		t.Fatalf("cancelled booking: %s %q", cancelled.Status, cancelled.CancelReason)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("cancelled booking has no CancelledAt")
	}

	confirmed := mustReserve(t, fx)
	mustTransition(t, fx, confirmed.ID, models.EventConfirm)
	if _, err := fx.svc.Cancel(ctx, confirmed.ID, ""); err != nil {
		t.Fatalf("cancel confirmed: %v", err)
	}
}

func TestCancelAfterPaymentIsRejected(t *testing.T) {
	fx := newLedgerFixture()
	b := mustReserve(t, fx)

	mustTransition(t, fx, b.ID, models.EventConfirm)
	mustTransition(t, fx, b.ID, models.EventPaymentSettled)

	_, err := fx.svc.Cancel(context.Background(), b.ID, "too late")
	var be *BookingError
	if !errors.As(err, &be) || be.Code != CodeInvalidTransition {
		t.Fatalf("cancel paid booking: got %v, want %s", err, CodeInvalidTransition)
	}
}

func TestTerminalStatesAdmitNoEvents(t *testing.T) {
	fx := newLedgerFixture()
	ctx := context.Background()

	b := mustReserve(t, fx)
	mustTransition(t, fx, b.ID, models.EventConfirm)
	mustTransition(t, fx, b.ID, models.EventPaymentSettled)
	mustTransition(t, fx, b.ID, models.EventDeliver)

	for _, event := range []models.BookingEvent{models.EventConfirm, models.EventCancel} {
		_, err := fx.svc.Transition(ctx, b.ID, event)
		var be *BookingError
		if !errors.As(err, &be) || be.Code != CodeInvalidTransition {
			t.Fatalf("%s on delivered booking: got %v, want %s", event, err, CodeInvalidTransition)
		}
	}
}
