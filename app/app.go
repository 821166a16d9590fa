// Package app wires HTTP handlers for the academy API: auth, catalog, booking,
// billing and admin reporting.
package app

import (
	"context"
	"time"

	"github.com/Kolahan61/OAMA-sub000/app/config"
	"github.com/Kolahan61/OAMA-sub000/app/models"
)

// UserStore is the per-user profile accessor.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
	GetUserByStripeCustomer(ctx context.Context, customerID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, uid, displayName string) error
	DeleteUser(ctx context.Context, uid string) error
	SetMembership(ctx context.Context, uid string, m *models.Membership, status models.MembershipStatus) error
	SetMembershipStatus(ctx context.Context, uid string, status models.MembershipStatus, subStatus string, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool) error
	SetPaymentFailed(ctx context.Context, uid string, failed bool) error
	SetTrialEnding(ctx context.Context, uid string, endsAt time.Time) error
	LinkStripeCustomer(ctx context.Context, uid, customerID string) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// CatalogStore reads the class/program/plan catalog.
type CatalogStore interface {
	ListClassSessions(ctx context.Context, filter models.ClassFilter) ([]models.ClassSession, error)
	GetClassSession(ctx context.Context, id string) (*models.ClassSession, error)
	ListPrograms(ctx context.Context, activeOnly bool, category string) ([]models.Program, error)
	GetProgram(ctx context.Context, id string) (*models.Program, error)
	ListMembershipPlans(ctx context.Context) ([]models.MembershipPlan, error)
	GetMembershipPlan(ctx context.Context, id string) (*models.MembershipPlan, error)
}

// BookingStore owns the booking lifecycle and its invariants.
type BookingStore interface {
	RegisterBooking(ctx context.Context, userID, classID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, requesterID string, isAdmin bool) (*models.Booking, error)
	ActiveBookingForClass(ctx context.Context, userID, classID string) (*models.Booking, error)
	ListBookingsForUser(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error)
	ListBookingsForClass(ctx context.Context, classID string, status models.BookingStatus) ([]models.Booking, error)
	ListBookingsSince(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	CancelAllForUser(ctx context.Context, userID string) (int, error)
}

// BillingStore persists billing reconciliation state.
type BillingStore interface {
	SaveCheckoutSession(ctx context.Context, cs *models.CheckoutSession) error
	CompleteCheckout(ctx context.Context, sessionID, customerID, subscriptionID string) error
	AddPaymentHistory(ctx context.Context, entry *models.PaymentHistory) error
	ListPaymentsSince(ctx context.Context, cutoff time.Time) ([]models.PaymentHistory, error)
	MarkEventProcessed(ctx context.Context, eventID string) (bool, error)
	UnmarkEvent(ctx context.Context, eventID string) error
}

// DataStore is the full persistence surface, satisfied by *store.Store.
type DataStore interface {
	UserStore
	CatalogStore
	BookingStore
	BillingStore
}

// Accounts manages identity-provider accounts (Firebase Authentication).
type Accounts interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (string, error)
	DeleteAccount(ctx context.Context, uid string) error
}

// App holds the injected service handles. Lifecycle is owned by the process
// entry point; nothing here re-initializes itself.
type App struct {
	Store    DataStore
	Accounts Accounts
	Cfg      *config.Config
}

func New(cfg *config.Config, store DataStore, accounts Accounts) *App {
	return &App{
		Store:    store,
		Accounts: accounts,
		Cfg:      cfg,
	}
}
