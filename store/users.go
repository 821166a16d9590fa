package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Kolahan61/OAMA-sub000/app/models"
)

// CreateUser writes a fresh profile document keyed by the Firebase UID.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.MembershipStatus == "" {
		u.MembershipStatus = models.MembershipNone
	}
	if u.RegisteredClasses == nil {
		u.RegisteredClasses = []string{}
	}
	_, err := s.fs.Collection(colUsers).Doc(u.UID).Set(ctx, u)
	return err
}

func (s *Store) GetUser(ctx context.Context, uid string) (*models.User, error) {
	doc, err := s.fs.Collection(colUsers).Doc(uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var u models.User
	if err := doc.DataTo(&u); err != nil {
		return nil, err
	}
	u.UID = doc.Ref.ID
	return &u, nil
}

// GetUserByStripeCustomer resolves a user from the Stripe customer id stamped
// on the profile during checkout.
func (s *Store) GetUserByStripeCustomer(ctx context.Context, customerID string) (*models.User, error) {
	return s.findUser(ctx, "stripeCustomerId", customerID)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email", email)
}

func (s *Store) findUser(ctx context.Context, field, value string) (*models.User, error) {
	iter := s.fs.Collection(colUsers).Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := doc.DataTo(&u); err != nil {
		return nil, err
	}
	u.UID = doc.Ref.ID
	return &u, nil
}

// UpdateUserProfile applies display-name/email edits from the profile endpoint.
func (s *Store) UpdateUserProfile(ctx context.Context, uid, displayName string) error {
	_, err := s.fs.Collection(colUsers).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "displayName", Value: displayName},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

// DeleteUser removes the profile document. Booking cascade happens first via
// CancelAllForUser; the caller owns the ordering.
func (s *Store) DeleteUser(ctx context.Context, uid string) error {
	_, err := s.fs.Collection(colUsers).Doc(uid).Delete(ctx)
	return err
}

// SetMembership upserts the membership snapshot plus the top-level status and
// Stripe ids in one write.
func (s *Store) SetMembership(ctx context.Context, uid string, m *models.Membership, status models.MembershipStatus) error {
	updates := []firestore.Update{
		{Path: "membership", Value: m},
		{Path: "membershipStatus", Value: status},
		{Path: "updatedAt", Value: time.Now().UTC()},
	}
	if m.StripeCustomerID != "" {
		updates = append(updates, firestore.Update{Path: "stripeCustomerId", Value: m.StripeCustomerID})
	}
	if m.StripeSubscriptionID != "" {
		updates = append(updates, firestore.Update{Path: "stripeSubscriptionId", Value: m.StripeSubscriptionID})
	}
	_, err := s.fs.Collection(colUsers).Doc(uid).Update(ctx, updates)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

// SetMembershipStatus mirrors a subscription lifecycle change onto the user.
func (s *Store) SetMembershipStatus(ctx context.Context, uid string, status models.MembershipStatus, subStatus string, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool) error {
	updates := []firestore.Update{
		{Path: "membershipStatus", Value: status},
		{Path: "updatedAt", Value: time.Now().UTC()},
	}
	if subStatus != "" {
		updates = append(updates, firestore.Update{Path: "membership.status", Value: subStatus})
	}
	if !periodStart.IsZero() {
		updates = append(updates, firestore.Update{Path: "membership.startDate", Value: periodStart})
	}
	if !periodEnd.IsZero() {
		updates = append(updates, firestore.Update{Path: "membership.expirationDate", Value: periodEnd})
	}
	updates = append(updates, firestore.Update{Path: "membership.cancelAtPeriodEnd", Value: cancelAtPeriodEnd})
	_, err := s.fs.Collection(colUsers).Doc(uid).Update(ctx, updates)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

// SetPaymentFailed flips the payment-failed flag after a failed invoice.
func (s *Store) SetPaymentFailed(ctx context.Context, uid string, failed bool) error {
	_, err := s.fs.Collection(colUsers).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "paymentFailed", Value: failed},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

// SetTrialEnding records the trial end date pushed by the processor.
func (s *Store) SetTrialEnding(ctx context.Context, uid string, endsAt time.Time) error {
	_, err := s.fs.Collection(colUsers).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "trialEndsAt", Value: endsAt},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

// LinkStripeCustomer stamps a Stripe customer id onto a user profile.
func (s *Store) LinkStripeCustomer(ctx context.Context, uid, customerID string) error {
	_, err := s.fs.Collection(colUsers).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "stripeCustomerId", Value: customerID},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

// ListUsers returns every profile document, for admin reporting.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	iter := s.fs.Collection(colUsers).Documents(ctx)
	defer iter.Stop()

	var out []models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var u models.User
		if err := doc.DataTo(&u); err != nil {
			return nil, err
		}
		u.UID = doc.Ref.ID
		out = append(out, u)
	}
	return out, nil
}
