package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/Kolahan61/OAMA-sub000/app/models"
)

// RegisterBooking admits a user into a class session. The capacity check, the
// duplicate check, the booking create and the registeredClasses update all
// commit in one transaction, so two concurrent registrations cannot both slip
// past the ceiling.
func (s *Store) RegisterBooking(ctx context.Context, userID, classID string) (*models.Booking, error) {
	classRef := s.fs.Collection(colClassSessions).Doc(classID)
	userRef := s.fs.Collection(colUsers).Doc(userID)
	bookingRef := s.fs.Collection(colBookings).Doc(uuid.NewString())

	var created models.Booking
	err := s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		classDoc, err := tx.Get(classRef)
		if err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		var class models.ClassSession
		if err := classDoc.DataTo(&class); err != nil {
			return err
		}
		class.ID = classDoc.Ref.ID

		activeQ := s.fs.Collection(colBookings).
			Where("classId", "==", classID).
			Where("status", "==", string(models.BookingActive))
		iter := tx.Documents(activeQ)
		defer iter.Stop()

		active := 0
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}
			active++
			if owner, _ := doc.DataAt("userId"); owner == userID {
				return ErrAlreadyRegistered
			}
		}
		if active >= class.EffectiveCapacity() {
			return ErrClassFull
		}

		created = models.Booking{
			ID:           bookingRef.ID,
			UserID:       userID,
			ClassID:      class.ID,
			ClassTitle:   class.Title,
			ClassDay:     class.DayOfWeek,
			ClassTime:    class.StartTime,
			Status:       models.BookingActive,
			RegisteredAt: time.Now().UTC(),
		}
		if err := tx.Create(bookingRef, &created); err != nil {
			return err
		}
		return tx.Update(userRef, []firestore.Update{
			{Path: "registeredClasses", Value: firestore.ArrayUnion(class.ID)},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CancelBooking flips a booking to cancelled and removes the class from the
// owner's registeredClasses list, atomically. Admins may cancel on behalf of
// any user; everyone else only their own.
func (s *Store) CancelBooking(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*models.Booking, error) {
	bookingRef := s.fs.Collection(colBookings).Doc(bookingID)

	var cancelled models.Booking
	err := s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(bookingRef)
		if err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		var b models.Booking
		if err := doc.DataTo(&b); err != nil {
			return err
		}
		b.ID = doc.Ref.ID

		if b.UserID != requesterID && !isAdmin {
			return ErrForbidden
		}
		if b.Status == models.BookingCancelled {
			return ErrAlreadyCancelled
		}

		now := time.Now().UTC()
		b.Status = models.BookingCancelled
		b.CancelledAt = now
		b.CancelledBy = requesterID
		cancelled = b

		if err := tx.Update(bookingRef, []firestore.Update{
			{Path: "status", Value: string(models.BookingCancelled)},
			{Path: "cancelledAt", Value: now},
			{Path: "cancelledBy", Value: requesterID},
		}); err != nil {
			return err
		}
		return tx.Update(s.fs.Collection(colUsers).Doc(b.UserID), []firestore.Update{
			{Path: "registeredClasses", Value: firestore.ArrayRemove(b.ClassID)},
			{Path: "updatedAt", Value: now},
		})
	})
	if err != nil {
		return nil, err
	}
	return &cancelled, nil
}

// ActiveBookingForClass finds the user's active booking for a class, if any.
func (s *Store) ActiveBookingForClass(ctx context.Context, userID, classID string) (*models.Booking, error) {
	iter := s.fs.Collection(colBookings).
		Where("userId", "==", userID).
		Where("classId", "==", classID).
		Where("status", "==", string(models.BookingActive)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var b models.Booking
	if err := doc.DataTo(&b); err != nil {
		return nil, err
	}
	b.ID = doc.Ref.ID
	return &b, nil
}

// ListBookingsForUser returns a user's bookings, newest-registered first.
// status narrows the result when non-empty.
func (s *Store) ListBookingsForUser(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error) {
	q := s.fs.Collection(colBookings).Where("userId", "==", userID)
	if status != "" {
		q = q.Where("status", "==", string(status))
	}
	return s.collectBookings(ctx, q.OrderBy("registeredAt", firestore.Desc))
}

// ListBookingsForClass returns a class's bookings, newest-registered first.
func (s *Store) ListBookingsForClass(ctx context.Context, classID string, status models.BookingStatus) ([]models.Booking, error) {
	q := s.fs.Collection(colBookings).Where("classId", "==", classID)
	if status != "" {
		q = q.Where("status", "==", string(status))
	}
	return s.collectBookings(ctx, q.OrderBy("registeredAt", firestore.Desc))
}

// ListBookingsSince returns bookings registered at or after the cutoff, for
// admin reporting.
func (s *Store) ListBookingsSince(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	q := s.fs.Collection(colBookings).Where("registeredAt", ">=", cutoff)
	return s.collectBookings(ctx, q)
}

// CancelAllForUser cancels every active booking a user holds, as part of the
// account-deletion cascade. Returns the number cancelled.
func (s *Store) CancelAllForUser(ctx context.Context, userID string) (int, error) {
	active, err := s.ListBookingsForUser(ctx, userID, models.BookingActive)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, b := range active {
		if _, err := s.CancelBooking(ctx, b.ID, userID, true); err != nil {
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *Store) collectBookings(ctx context.Context, q firestore.Query) ([]models.Booking, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.Booking
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var b models.Booking
		if err := doc.DataTo(&b); err != nil {
			return nil, err
		}
		b.ID = doc.Ref.ID
		out = append(out, b)
	}
	return out, nil
}
