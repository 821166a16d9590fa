package models

import "time"

type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Booking records a user's spot in a class session. Bookings are never
// physically deleted; cancellation flips the status and stamps cancelledAt.
type Booking struct {
	ID           string        `firestore:"-" json:"id"`
	UserID       string        `firestore:"userId" json:"userId,omitempty"`
	ClassID      string        `firestore:"classId" json:"classId"`
	ClassTitle   string        `firestore:"classTitle" json:"classTitle"`
	ClassDay     string        `firestore:"classDay" json:"classDay"`
	ClassTime    string        `firestore:"classTime" json:"classTime"`
	Status       BookingStatus `firestore:"status" json:"status"`
	RegisteredAt time.Time     `firestore:"registeredAt" json:"registeredAt"`
	CancelledAt  time.Time     `firestore:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy  string        `firestore:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
}
