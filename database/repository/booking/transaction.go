package bookingRepo

import (
	"context"
	"fmt"

	"eventra/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ReserveTransactionally re-runs the overlap check and inserts the booking
// inside a single MongoDB transaction. Together with the ledger's
// per-provider lock this makes check-and-commit atomic: two overlapping
// reservations for one provider can never both succeed.
func (repo *MongoBookingRepo) ReserveTransactionally(ctx context.Context, booking *models.Booking) error {
	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var conflict *ConflictError

	txnFn := func(sc mongo.SessionContext) error {
		existing, err := repo.FindOverlapping(sc, booking.ProviderID, booking.Start, booking.End)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			conflict = &ConflictError{Existing: existing[0]}
			return conflict
		}
		if _, err := repo.coll.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if conflict != nil {
			return conflict
		}
		return fmt.Errorf("reservation transaction failed: %w", err)
	}

	return nil
}
