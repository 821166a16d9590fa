package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/Kolahan61/OAMA-sub000/app/models"
)

// SaveCheckoutSession records a pending checkout keyed by the Stripe session id.
func (s *Store) SaveCheckoutSession(ctx context.Context, cs *models.CheckoutSession) error {
	if cs.Status == "" {
		cs.Status = "pending"
	}
	cs.CreatedAt = time.Now().UTC()
	_, err := s.fs.Collection(colCheckoutSess).Doc(cs.ID).Set(ctx, cs)
	return err
}

// CompleteCheckout reconciles a checkout.session.completed event: marks the
// session completed, loads the plan it paid for, and upserts the user's
// membership snapshot — all in one transaction, so a missing plan aborts the
// whole reconciliation.
func (s *Store) CompleteCheckout(ctx context.Context, sessionID, customerID, subscriptionID string) error {
	sessRef := s.fs.Collection(colCheckoutSess).Doc(sessionID)

	return s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		sessDoc, err := tx.Get(sessRef)
		if err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		var sess models.CheckoutSession
		if err := sessDoc.DataTo(&sess); err != nil {
			return err
		}

		planDoc, err := tx.Get(s.fs.Collection(colMemberships).Doc(sess.MembershipID))
		if err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		plan, err := planFromSnapshot(planDoc)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		membership := &models.Membership{
			PlanID:               plan.ID,
			PlanName:             plan.Name,
			Price:                plan.Price,
			BillingCycle:         plan.BillingCycle,
			Status:               "active",
			StartDate:            now,
			ExpirationDate:       models.NextExpiry(plan.BillingCycle, now),
			StripeCustomerID:     customerID,
			StripeSubscriptionID: subscriptionID,
		}

		if err := tx.Update(sessRef, []firestore.Update{
			{Path: "status", Value: "completed"},
			{Path: "completedAt", Value: now},
		}); err != nil {
			return err
		}

		userUpdates := []firestore.Update{
			{Path: "membership", Value: membership},
			{Path: "membershipStatus", Value: models.MembershipActive},
			{Path: "updatedAt", Value: now},
		}
		if customerID != "" {
			userUpdates = append(userUpdates, firestore.Update{Path: "stripeCustomerId", Value: customerID})
		}
		if subscriptionID != "" {
			userUpdates = append(userUpdates, firestore.Update{Path: "stripeSubscriptionId", Value: subscriptionID})
		}
		return tx.Update(s.fs.Collection(colUsers).Doc(sess.UserID), userUpdates)
	})
}

// AddPaymentHistory appends a ledger entry. Entries are never mutated.
func (s *Store) AddPaymentHistory(ctx context.Context, entry *models.PaymentHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()
	_, err := s.fs.Collection(colPaymentHistory).Doc(entry.ID).Set(ctx, entry)
	return err
}

// ListPaymentsSince returns ledger entries created at or after the cutoff.
func (s *Store) ListPaymentsSince(ctx context.Context, cutoff time.Time) ([]models.PaymentHistory, error) {
	iter := s.fs.Collection(colPaymentHistory).Where("createdAt", ">=", cutoff).Documents(ctx)
	defer iter.Stop()

	var out []models.PaymentHistory
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var p models.PaymentHistory
		if err := doc.DataTo(&p); err != nil {
			return nil, err
		}
		p.ID = doc.Ref.ID
		out = append(out, p)
	}
	return out, nil
}

// MarkEventProcessed records a webhook event id and reports whether it had
// already been processed. Stripe delivers at-least-once; a duplicate means the
// handler should skip re-processing.
func (s *Store) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	ref := s.fs.Collection(colProcessedEvents).Doc(eventID)

	duplicate := false
	err := s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if err == nil {
			duplicate = true
			return nil
		}
		if !isNotFound(err) {
			return err
		}
		return tx.Create(ref, map[string]any{
			"processedAt": time.Now().UTC(),
		})
	})
	return duplicate, err
}

// UnmarkEvent releases an idempotency marker after a failed handler, so the
// processor's redelivery is processed rather than skipped.
func (s *Store) UnmarkEvent(ctx context.Context, eventID string) error {
	_, err := s.fs.Collection(colProcessedEvents).Doc(eventID).Delete(ctx)
	return err
}
