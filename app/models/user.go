// Package models defines the Firestore document schemas for the academy API.
package models

import "time"

type MembershipStatus string

const (
	MembershipNone     MembershipStatus = "none"
	MembershipTrial    MembershipStatus = "trial"
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

// Membership is the plan snapshot embedded on a user document. It is written
// by billing reconciliation and read by the access-control middleware.
type Membership struct {
	PlanID               string    `firestore:"planId" json:"planId"`
	PlanName             string    `firestore:"planName" json:"planName"`
	Price                int64     `firestore:"price" json:"price"`
	BillingCycle         string    `firestore:"billingCycle" json:"billingCycle"`
	Status               string    `firestore:"status" json:"status"`
	StartDate            time.Time `firestore:"startDate" json:"startDate"`
	ExpirationDate       time.Time `firestore:"expirationDate" json:"expirationDate"`
	StripeCustomerID     string    `firestore:"stripeCustomerId,omitempty" json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string    `firestore:"stripeSubscriptionId,omitempty" json:"stripeSubscriptionId,omitempty"`
	CancelAtPeriodEnd    bool      `firestore:"cancelAtPeriodEnd" json:"cancelAtPeriodEnd"`
}

// User is the per-user profile document. The document id is the Firebase UID.
type User struct {
	UID                  string           `firestore:"-" json:"uid"`
	Email                string           `firestore:"email" json:"email"`
	DisplayName          string           `firestore:"displayName" json:"displayName"`
	MembershipStatus     MembershipStatus `firestore:"membershipStatus" json:"membershipStatus"`
	Admin                bool             `firestore:"admin" json:"admin"`
	StripeCustomerID     string           `firestore:"stripeCustomerId,omitempty" json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string           `firestore:"stripeSubscriptionId,omitempty" json:"stripeSubscriptionId,omitempty"`
	Membership           *Membership      `firestore:"membership,omitempty" json:"membership,omitempty"`
	RegisteredClasses    []string         `firestore:"registeredClasses" json:"registeredClasses"`
	PaymentFailed        bool             `firestore:"paymentFailed" json:"paymentFailed"`
	TrialEndsAt          time.Time        `firestore:"trialEndsAt,omitempty" json:"trialEndsAt,omitempty"`
	CreatedAt            time.Time        `firestore:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time        `firestore:"updatedAt" json:"updatedAt"`
}

// HasActiveMembership reports whether the user may access member-only routes.
func (u *User) HasActiveMembership() bool {
	return u.MembershipStatus == MembershipActive || u.MembershipStatus == MembershipTrial
}
