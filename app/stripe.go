package app

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/customer"
)

// InitStripe wires the Stripe API key. Call once at process start.
func InitStripe(secretKey string) {
	stripe.Key = secretKey
}

// ensureStripeCustomer finds or creates a Stripe Customer for the given user.
// It uses the stripeCustomerId on the profile when present, otherwise creates
// a new customer with metadata uid = <uid>, then stores that on the profile.
func (a *App) ensureStripeCustomer(ctx context.Context, uid string) (string, error) {
	if uid == "" {
		return "", errors.New("missing uid")
	}

	user, err := a.Store.GetUser(ctx, uid)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Name:  stripe.String(user.DisplayName),
	}
	params.AddMetadata("uid", uid)
	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	if err := a.Store.LinkStripeCustomer(ctx, uid, cust.ID); err != nil {
		return "", err
	}
	return cust.ID, nil
}
