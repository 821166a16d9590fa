package models

import "time"

// Billing cycles recognized on membership plans.
const (
	CycleMonthly   = "monthly"
	CycleYearly    = "yearly"
	CycleQuarterly = "quarterly"
	CycleBiweekly  = "biweekly"
)

// NextExpiry computes a membership expiration one billing-cycle unit after from.
// Unrecognized cycles fall back to monthly.
func NextExpiry(cycle string, from time.Time) time.Time {
	switch cycle {
	case CycleYearly:
		return from.AddDate(1, 0, 0)
	case CycleQuarterly:
		return from.AddDate(0, 3, 0)
	case CycleBiweekly:
		return from.AddDate(0, 0, 14)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// PaymentHistory is an append-only ledger entry written by webhook
// reconciliation. Entries are never mutated.
type PaymentHistory struct {
	ID                   string    `firestore:"-" json:"id"`
	UserID               string    `firestore:"userId" json:"userId"`
	StripeCustomerID     string    `firestore:"stripeCustomerId" json:"stripeCustomerId"`
	StripeSubscriptionID string    `firestore:"stripeSubscriptionId,omitempty" json:"stripeSubscriptionId,omitempty"`
	StripeInvoiceID      string    `firestore:"stripeInvoiceId,omitempty" json:"stripeInvoiceId,omitempty"`
	Amount               int64     `firestore:"amount" json:"amount"`
	Currency             string    `firestore:"currency" json:"currency"`
	Status               string    `firestore:"status" json:"status"` // succeeded | failed
	FailureReason        string    `firestore:"failureReason,omitempty" json:"failureReason,omitempty"`
	PeriodStart          time.Time `firestore:"periodStart,omitempty" json:"periodStart,omitempty"`
	PeriodEnd            time.Time `firestore:"periodEnd,omitempty" json:"periodEnd,omitempty"`
	CreatedAt            time.Time `firestore:"createdAt" json:"createdAt"`
}

// CheckoutSession tracks a Stripe Checkout flow from creation until the
// checkout.session.completed webhook lands. The document id is the Stripe
// session id.
type CheckoutSession struct {
	ID           string    `firestore:"-" json:"id"`
	UserID       string    `firestore:"userId" json:"userId"`
	MembershipID string    `firestore:"membershipId" json:"membershipId"`
	Status       string    `firestore:"status" json:"status"` // pending | completed
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
	CompletedAt  time.Time `firestore:"completedAt,omitempty" json:"completedAt,omitempty"`
}
