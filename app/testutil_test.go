package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kolahan61/OAMA-sub000/app/config"
	"github.com/Kolahan61/OAMA-sub000/app/models"
	"github.com/Kolahan61/OAMA-sub000/store"
)

// memStore is an in-memory DataStore with the same invariant semantics as the
// Firestore implementation, for handler tests.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	classes   map[string]*models.ClassSession
	programs  map[string]*models.Program
	plans     map[string]*models.MembershipPlan
	bookings  map[string]*models.Booking
	payments  []models.PaymentHistory
	checkouts map[string]*models.CheckoutSession
	processed map[string]bool
	seq       int
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*models.User{},
		classes:   map[string]*models.ClassSession{},
		programs:  map[string]*models.Program{},
		plans:     map[string]*models.MembershipPlan{},
		bookings:  map[string]*models.Booking{},
		checkouts: map[string]*models.CheckoutSession{},
		processed: map[string]bool{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.MembershipStatus == "" {
		u.MembershipStatus = models.MembershipNone
	}
	if u.RegisteredClasses == nil {
		u.RegisteredClasses = []string{}
	}
	cp := *u
	m.users[u.UID] = &cp
	return nil
}

func (m *memStore) GetUser(_ context.Context, uid string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByStripeCustomer(_ context.Context, customerID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.StripeCustomerID == customerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpdateUserProfile(_ context.Context, uid, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return store.ErrNotFound
	}
	u.DisplayName = displayName
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, uid)
	return nil
}

func (m *memStore) SetMembership(_ context.Context, uid string, mem *models.Membership, status models.MembershipStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return store.ErrNotFound
	}
	u.Membership = mem
	u.MembershipStatus = status
	if mem.StripeCustomerID != "" {
		u.StripeCustomerID = mem.StripeCustomerID
	}
	if mem.StripeSubscriptionID != "" {
		u.StripeSubscriptionID = mem.StripeSubscriptionID
	}
	return nil
}

func (m *memStore) SetMembershipStatus(_ context.Context, uid string, status models.MembershipStatus, subStatus string, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return store.ErrNotFound
	}
	u.MembershipStatus = status
	if u.Membership != nil {
		if subStatus != "" {
			u.Membership.Status = subStatus
		}
		if !periodStart.IsZero() {
			u.Membership.StartDate = periodStart
		}
		if !periodEnd.IsZero() {
			u.Membership.ExpirationDate = periodEnd
		}
		u.Membership.CancelAtPeriodEnd = cancelAtPeriodEnd
	}
	return nil
}

func (m *memStore) SetPaymentFailed(_ context.Context, uid string, failed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return store.ErrNotFound
	}
	u.PaymentFailed = failed
	return nil
}

func (m *memStore) SetTrialEnding(_ context.Context, uid string, endsAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return store.ErrNotFound
	}
	u.TrialEndsAt = endsAt
	return nil
}

func (m *memStore) LinkStripeCustomer(_ context.Context, uid, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return store.ErrNotFound
	}
	u.StripeCustomerID = customerID
	return nil
}

func (m *memStore) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memStore) ListClassSessions(_ context.Context, filter models.ClassFilter) ([]models.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ClassSession
	for _, cs := range m.classes {
		if filter.Day != "" && cs.DayOfWeek != filter.Day {
			continue
		}
		if filter.ProgramID != "" && cs.ProgramID != filter.ProgramID {
			continue
		}
		if filter.Category != "" && cs.Category != filter.Category {
			continue
		}
		out = append(out, *cs)
	}
	return out, nil
}

func (m *memStore) GetClassSession(_ context.Context, id string) (*models.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.classes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *cs
	return &cp, nil
}

func (m *memStore) ListPrograms(_ context.Context, activeOnly bool, category string) ([]models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Program
	for _, p := range m.programs {
		if activeOnly && !p.Active {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) GetProgram(_ context.Context, id string) (*models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.programs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListMembershipPlans(_ context.Context) ([]models.MembershipPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MembershipPlan
	for _, mp := range m.plans {
		if mp.Active {
			out = append(out, *mp)
		}
	}
	return out, nil
}

func (m *memStore) GetMembershipPlan(_ context.Context, id string) (*models.MembershipPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mp, ok := m.plans[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *mp
	return &cp, nil
}

func (m *memStore) RegisterBooking(_ context.Context, userID, classID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	class, ok := m.classes[classID]
	if !ok {
		return nil, store.ErrNotFound
	}

	active := 0
	for _, b := range m.bookings {
		if b.ClassID != classID || b.Status != models.BookingActive {
			continue
		}
		if b.UserID == userID {
			return nil, store.ErrAlreadyRegistered
		}
		active++
	}
	if active >= class.EffectiveCapacity() {
		return nil, store.ErrClassFull
	}

	booking := &models.Booking{
		ID:           m.nextID("bk"),
		UserID:       userID,
		ClassID:      classID,
		ClassTitle:   class.Title,
		ClassDay:     class.DayOfWeek,
		ClassTime:    class.StartTime,
		Status:       models.BookingActive,
		RegisteredAt: time.Now().UTC(),
	}
	m.bookings[booking.ID] = booking
	if u, ok := m.users[userID]; ok {
		u.RegisteredClasses = append(u.RegisteredClasses, classID)
	}
	cp := *booking
	return &cp, nil
}

func (m *memStore) CancelBooking(_ context.Context, bookingID, requesterID string, isAdmin bool) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if b.UserID != requesterID && !isAdmin {
		return nil, store.ErrForbidden
	}
	if b.Status == models.BookingCancelled {
		return nil, store.ErrAlreadyCancelled
	}

	b.Status = models.BookingCancelled
	b.CancelledAt = time.Now().UTC()
	b.CancelledBy = requesterID
	if u, ok := m.users[b.UserID]; ok {
		kept := u.RegisteredClasses[:0]
		removed := false
		for _, id := range u.RegisteredClasses {
			if id == b.ClassID && !removed {
				removed = true
				continue
			}
			kept = append(kept, id)
		}
		u.RegisteredClasses = kept
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) ActiveBookingForClass(_ context.Context, userID, classID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.UserID == userID && b.ClassID == classID && b.Status == models.BookingActive {
			cp := *b
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListBookingsForUser(_ context.Context, userID string, status models.BookingStatus) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.UserID != userID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, *b)
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *memStore) ListBookingsForClass(_ context.Context, classID string, status models.BookingStatus) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.ClassID != classID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, *b)
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *memStore) ListBookingsSince(_ context.Context, cutoff time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if !b.RegisteredAt.Before(cutoff) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) CancelAllForUser(ctx context.Context, userID string) (int, error) {
	active, err := m.ListBookingsForUser(ctx, userID, models.BookingActive)
	if err != nil {
		return 0, err
	}
	for i, b := range active {
		if _, err := m.CancelBooking(ctx, b.ID, userID, true); err != nil {
			return i, err
		}
	}
	return len(active), nil
}

func (m *memStore) SaveCheckoutSession(_ context.Context, cs *models.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cs.Status == "" {
		cs.Status = "pending"
	}
	cs.CreatedAt = time.Now().UTC()
	cp := *cs
	m.checkouts[cs.ID] = &cp
	return nil
}

func (m *memStore) CompleteCheckout(_ context.Context, sessionID, customerID, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.checkouts[sessionID]
	if !ok {
		return store.ErrNotFound
	}
	plan, ok := m.plans[sess.MembershipID]
	if !ok {
		return store.ErrNotFound
	}
	u, ok := m.users[sess.UserID]
	if !ok {
		return store.ErrNotFound
	}

	now := time.Now().UTC()
	sess.Status = "completed"
	sess.CompletedAt = now
	u.Membership = &models.Membership{
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
	u.MembershipStatus = models.MembershipActive
	if customerID != "" {
		u.StripeCustomerID = customerID
	}
	if subscriptionID != "" {
		u.StripeSubscriptionID = subscriptionID
	}
	return nil
}

func (m *memStore) AddPaymentHistory(_ context.Context, entry *models.PaymentHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == "" {
		entry.ID = m.nextID("pay")
	}
	entry.CreatedAt = time.Now().UTC()
	m.payments = append(m.payments, *entry)
	return nil
}

func (m *memStore) ListPaymentsSince(_ context.Context, cutoff time.Time) ([]models.PaymentHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentHistory
	for _, p := range m.payments {
		if !p.CreatedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) MarkEventProcessed(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed[eventID] {
		return true, nil
	}
	m.processed[eventID] = true
	return false, nil
}

func (m *memStore) UnmarkEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.processed, eventID)
	return nil
}

func sortNewestFirst(bookings []models.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].RegisteredAt.After(bookings[j].RegisteredAt)
	})
}

// fakeAccounts satisfies Accounts without calling Firebase.
type fakeAccounts struct {
	mu      sync.Mutex
	emails  map[string]string
	deleted []string
	seq     int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{emails: map[string]string{}}
}

func (f *fakeAccounts) CreateAccount(_ context.Context, email, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.emails[email]; ok {
		return "", ErrEmailTaken
	}
	f.seq++
	uid := fmt.Sprintf("uid-%d", f.seq)
	f.emails[email] = uid
	return uid, nil
}

func (f *fakeAccounts) DeleteAccount(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, uid)
	return nil
}

func newTestApp() (*App, *memStore, *fakeAccounts) {
	ms := newMemStore()
	accounts := newFakeAccounts()
	cfg := &config.Config{}
	cfg.Stripe.WebhookSecret = "whsec_test"
	cfg.Stripe.PublishableKey = "pk_test"
	cfg.Stripe.Currency = "usd"
	return New(cfg, ms, accounts), ms, accounts
}

// injectUser stands in for the auth middleware chain in handler tests.
func injectUser(ms *memStore, uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := ms.GetUser(c.Request.Context(), uid)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}
		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), u))
		c.Next()
	}
}
