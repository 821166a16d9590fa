package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	portal "github.com/stripe/stripe-go/v79/billingportal/session"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/Kolahan61/OAMA-sub000/app/models"
	"github.com/Kolahan61/OAMA-sub000/store"
)

// StripeConfig exposes the publishable key to the frontend.
func (a *App) StripeConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publishableKey": a.Cfg.Stripe.PublishableKey})
}

type createPaymentIntentRequest struct {
	Amount       int64  `json:"amount"`
	MembershipID string `json:"membershipId"`
	UserID       string `json:"userId"`
}

// CreatePaymentIntent starts a one-off payment for a membership.
func (a *App) CreatePaymentIntent(c *gin.Context) {
	var req createPaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Amount <= 0 || req.MembershipID == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount, membershipId and userId are required"})
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(a.Cfg.Stripe.Currency),
	}
	params.AddMetadata("membershipId", req.MembershipID)
	params.AddMetadata("userId", req.UserID)

	pi, err := paymentintent.New(params)
	if err != nil {
		log.Printf("payment intent create failed user=%s err=%v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create payment intent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": pi.ClientSecret})
}

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
	MembershipID    string `json:"membershipId"`
	UserID          string `json:"userId"`
}

// ConfirmPayment re-fetches a payment intent and, if it succeeded, activates
// the membership on the user record with an expiration one billing-cycle out.
func (a *App) ConfirmPayment(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.PaymentIntentID == "" || req.MembershipID == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paymentIntentId, membershipId and userId are required"})
		return
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		log.Printf("payment intent fetch failed id=%s err=%v", req.PaymentIntentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch payment intent"})
		return
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment not completed"})
		return
	}

	plan, err := a.Store.GetMembershipPlan(c.Request.Context(), req.MembershipID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "membership not found"})
			return
		}
		log.Printf("membership lookup failed id=%s err=%v", req.MembershipID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load membership"})
		return
	}

	now := time.Now().UTC()
	membership := &models.Membership{
		PlanID:         plan.ID,
		PlanName:       plan.Name,
		Price:          plan.Price,
		BillingCycle:   plan.BillingCycle,
		Status:         "active",
		StartDate:      now,
		ExpirationDate: models.NextExpiry(plan.BillingCycle, now),
	}
	if err := a.Store.SetMembership(c.Request.Context(), req.UserID, membership, models.MembershipActive); err != nil {
		log.Printf("membership activation failed user=%s err=%v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate membership"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type createCheckoutSessionRequest struct {
	MembershipID string `json:"membershipId"`
	UserID       string `json:"userId"`
}

// CreateCheckoutSession starts a subscription-mode Stripe Checkout for a
// membership plan and records the pending session.
func (a *App) CreateCheckoutSession(c *gin.Context) {
	var req createCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.MembershipID == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "membershipId and userId are required"})
		return
	}

	plan, err := a.Store.GetMembershipPlan(c.Request.Context(), req.MembershipID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "membership not found"})
			return
		}
		log.Printf("membership lookup failed id=%s err=%v", req.MembershipID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load membership"})
		return
	}
	if plan.StripePriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "membership has no linked price"})
		return
	}

	frontendURL := strings.TrimRight(a.Cfg.Stripe.FrontendURL, "/")
	if frontendURL == "" {
		log.Printf("missing Stripe config: frontend_url=false")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
		return
	}

	customerID, err := a.ensureStripeCustomer(c.Request.Context(), req.UserID)
	if err != nil {
		log.Printf("ensureStripeCustomer failed user=%s err=%v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare billing"})
		return
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(frontendURL + "/membership/success"),
		CancelURL:  stripe.String(frontendURL + "/membership/cancel"),
	}
	params.AddMetadata("membershipId", req.MembershipID)
	params.AddMetadata("userId", req.UserID)

	sess, err := session.New(params)
	if err != nil {
		log.Printf("stripe checkout session failed user=%s err=%v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create checkout session"})
		return
	}

	record := &models.CheckoutSession{
		ID:           sess.ID,
		UserID:       req.UserID,
		MembershipID: req.MembershipID,
		Status:       "pending",
	}
	if err := a.Store.SaveCheckoutSession(c.Request.Context(), record); err != nil {
		log.Printf("checkout session persist failed session=%s err=%v", sess.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": sess.ID, "url": sess.URL})
}

// CreatePortalSession creates a Stripe Customer Portal session for the
// authenticated user.
func (a *App) CreatePortalSession(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}
	if user.StripeCustomerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stripe customer missing for user"})
		return
	}

	frontendURL := strings.TrimRight(a.Cfg.Stripe.FrontendURL, "/")
	if frontendURL == "" {
		log.Printf("missing Stripe config: frontend_url=false")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
		return
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(frontendURL + "/membership"),
	}

	sess, err := portal.New(params)
	if err != nil {
		log.Printf("stripe portal session failed user=%s err=%v", user.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL})
}

// StripeWebhook handles Stripe subscription lifecycle events and reconciles
// them into user records and the payment-history ledger. Stripe delivers
// at-least-once; processed event ids are recorded so redelivery is a no-op.
func (a *App) StripeWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		log.Printf("stripe webhook read failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	endpointSecret := a.Cfg.Stripe.WebhookSecret
	if endpointSecret == "" {
		log.Printf("stripe webhook secret missing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		c.GetHeader("Stripe-Signature"),
		endpointSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		log.Printf("stripe webhook signature failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		return
	}

	duplicate, err := a.Store.MarkEventProcessed(c.Request.Context(), event.ID)
	if err != nil {
		log.Printf("stripe event dedup failed id=%s err=%v", event.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record event"})
		return
	}
	if duplicate {
		log.Printf("stripe event redelivered, skipping id=%s type=%s", event.ID, event.Type)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := a.dispatchStripeEvent(c.Request.Context(), event); err != nil {
		// Release the marker so Stripe's retry is processed, not skipped.
		if unmarkErr := a.Store.UnmarkEvent(c.Request.Context(), event.ID); unmarkErr != nil {
			log.Printf("stripe event unmark failed id=%s err=%v", event.ID, unmarkErr)
		}
		log.Printf("stripe event handling failed id=%s type=%s err=%v", event.ID, event.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (a *App) dispatchStripeEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return a.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.created", "customer.subscription.updated":
		return a.handleSubscriptionChanged(ctx, event)
	case "customer.subscription.deleted":
		return a.handleSubscriptionDeleted(ctx, event)
	case "invoice.payment_succeeded":
		return a.handleInvoiceSucceeded(ctx, event)
	case "invoice.payment_failed":
		return a.handleInvoiceFailed(ctx, event)
	case "customer.subscription.trial_will_end":
		return a.handleTrialWillEnd(ctx, event)
	case "customer.created":
		return a.handleCustomerCreated(ctx, event)
	default:
		// Intentionally ignore unhandled events.
		return nil
	}
}

func (a *App) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return err
	}

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	subscriptionID := ""
	if sess.Subscription != nil {
		subscriptionID = sess.Subscription.ID
	}
	return a.Store.CompleteCheckout(ctx, sess.ID, customerID, subscriptionID)
}

func (a *App) handleSubscriptionChanged(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}

	user, err := a.userForSubscription(ctx, &sub)
	if err != nil || user == nil {
		return err
	}

	status := models.MembershipInactive
	switch sub.Status {
	case stripe.SubscriptionStatusActive:
		status = models.MembershipActive
	case stripe.SubscriptionStatusTrialing:
		status = models.MembershipTrial
	}

	return a.Store.SetMembershipStatus(
		ctx,
		user.UID,
		status,
		string(sub.Status),
		time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		sub.CancelAtPeriodEnd,
	)
}

func (a *App) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}

	user, err := a.userForSubscription(ctx, &sub)
	if err != nil || user == nil {
		return err
	}

	return a.Store.SetMembershipStatus(ctx, user.UID, models.MembershipInactive, "canceled", time.Time{}, time.Time{}, false)
}

func (a *App) handleInvoiceSucceeded(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return err
	}

	user, err := a.userForCustomer(ctx, invoiceCustomerID(&inv))
	if err != nil || user == nil {
		return err
	}

	periodStart := time.Unix(inv.PeriodStart, 0).UTC()
	periodEnd := time.Unix(inv.PeriodEnd, 0).UTC()
	if err := a.Store.SetMembershipStatus(ctx, user.UID, models.MembershipActive, "active", periodStart, periodEnd, false); err != nil {
		return err
	}
	if err := a.Store.SetPaymentFailed(ctx, user.UID, false); err != nil {
		return err
	}

	return a.Store.AddPaymentHistory(ctx, &models.PaymentHistory{
		UserID:               user.UID,
		StripeCustomerID:     invoiceCustomerID(&inv),
		StripeSubscriptionID: invoiceSubscriptionID(&inv),
		StripeInvoiceID:      inv.ID,
		Amount:               inv.AmountPaid,
		Currency:             string(inv.Currency),
		Status:               "succeeded",
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
	})
}

func (a *App) handleInvoiceFailed(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return err
	}

	user, err := a.userForCustomer(ctx, invoiceCustomerID(&inv))
	if err != nil || user == nil {
		return err
	}

	if err := a.Store.SetPaymentFailed(ctx, user.UID, true); err != nil {
		return err
	}

	reason := "payment_failed"
	if inv.LastFinalizationError != nil && inv.LastFinalizationError.Msg != "" {
		reason = inv.LastFinalizationError.Msg
	}
	return a.Store.AddPaymentHistory(ctx, &models.PaymentHistory{
		UserID:               user.UID,
		StripeCustomerID:     invoiceCustomerID(&inv),
		StripeSubscriptionID: invoiceSubscriptionID(&inv),
		StripeInvoiceID:      inv.ID,
		Amount:               inv.AmountDue,
		Currency:             string(inv.Currency),
		Status:               "failed",
		FailureReason:        reason,
		PeriodStart:          time.Unix(inv.PeriodStart, 0).UTC(),
		PeriodEnd:            time.Unix(inv.PeriodEnd, 0).UTC(),
	})
}

func (a *App) handleTrialWillEnd(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}

	user, err := a.userForSubscription(ctx, &sub)
	if err != nil || user == nil {
		return err
	}
	return a.Store.SetTrialEnding(ctx, user.UID, time.Unix(sub.TrialEnd, 0).UTC())
}

func (a *App) handleCustomerCreated(ctx context.Context, event stripe.Event) error {
	var cust stripe.Customer
	if err := json.Unmarshal(event.Data.Raw, &cust); err != nil {
		return err
	}
	if cust.Email == "" {
		return nil
	}

	user, err := a.Store.GetUserByEmail(ctx, cust.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("stripe customer has no matching user email=%s customer=%s", cust.Email, cust.ID)
			return nil
		}
		return err
	}
	if user.StripeCustomerID != "" {
		return nil
	}
	return a.Store.LinkStripeCustomer(ctx, user.UID, cust.ID)
}

func (a *App) userForSubscription(ctx context.Context, sub *stripe.Subscription) (*models.User, error) {
	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}
	return a.userForCustomer(ctx, customerID)
}

// userForCustomer resolves a user by Stripe customer id. A missing mapping is
// a warning, not an error: the event is acknowledged and dropped.
func (a *App) userForCustomer(ctx context.Context, customerID string) (*models.User, error) {
	if customerID == "" {
		log.Printf("stripe event missing customer id")
		return nil, nil
	}
	user, err := a.Store.GetUserByStripeCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("no user for stripe customer=%s", customerID)
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func invoiceCustomerID(inv *stripe.Invoice) string {
	if inv.Customer != nil {
		return inv.Customer.ID
	}
	return ""
}

func invoiceSubscriptionID(inv *stripe.Invoice) string {
	if inv.Subscription != nil {
		return inv.Subscription.ID
	}
	return ""
}
