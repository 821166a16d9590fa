// Package app wires shared HTTP routes for both local and Lambda execution.
package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Kolahan61/OAMA-sub000/auth"
)

// NewRouter builds the shared HTTP router for both local and Lambda execution.
func NewRouter(a *App, verifier *auth.Verifier) (*gin.Engine, error) {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)

	// Public catalog reads. The single-session read takes an optional bearer
	// token so it can report the caller's registration state.
	router.GET("/api/class-sessions", a.ListClassSessions)
	router.GET("/api/class-sessions/day/:day", a.ListClassSessionsByDay)
	router.GET("/api/class-sessions/program/:id", a.ListClassSessionsByProgram)
	router.GET("/api/class-sessions/:id",
		auth.Middleware(verifier, auth.MiddlewareConfig{Optional: true}),
		a.LoadUserOptional(),
		a.GetClassSession)
	router.GET("/api/programs", a.ListPrograms)
	router.GET("/api/programs/category/:category", a.ListProgramsByCategory)
	router.GET("/api/programs/:id", a.GetProgram)
	router.GET("/api/memberships", a.ListMemberships)
	router.GET("/api/memberships/:id", a.GetMembership)

	// Billing endpoints reachable without a session.
	router.GET("/api/stripe/config", a.StripeConfig)
	router.POST("/api/stripe/create-payment-intent", a.CreatePaymentIntent)
	router.POST("/api/stripe/confirm-payment", a.ConfirmPayment)
	router.POST("/api/stripe/create-checkout-session", a.CreateCheckoutSession)
	router.POST("/api/stripe/webhook", a.StripeWebhook)

	// Account creation and login happen before a bearer session exists.
	router.POST("/api/auth/register", a.Register)
	router.POST("/api/auth/login", a.Login(verifier))

	protected := router.Group("/")
	protected.Use(auth.Middleware(verifier, auth.MiddlewareConfig{}))
	protected.Use(a.LoadUser())

	protected.GET("/api/auth/user", a.GetProfile)
	protected.PUT("/api/auth/user", a.UpdateProfile)
	protected.DELETE("/api/auth/user", a.DeleteAccount)

	protected.POST("/api/bookings/register", a.RegisterBooking)
	protected.DELETE("/api/bookings/cancel/:bookingId", a.CancelBooking)
	protected.POST("/api/bookings/cancel-by-class", a.CancelBookingByClass)
	protected.GET("/api/bookings/user", a.ListUserBookings)
	protected.GET("/api/bookings/class/:id", a.ListClassBookings)
	protected.GET("/api/bookings/check/:id", a.CheckRegistration)

	protected.POST("/api/stripe/portal-session", a.CreatePortalSession)

	member := protected.Group("/api/member")
	member.Use(a.RequireActiveMembership())
	member.GET("/schedule", a.MemberSchedule)

	admin := protected.Group("/api/admin")
	admin.Use(a.RequireAdmin())
	admin.GET("/dashboard", a.AdminDashboard)
	admin.GET("/analytics", a.AdminAnalytics)
	admin.GET("/users", a.AdminListUsers)
	admin.GET("/bookings", a.AdminListBookings)
	admin.DELETE("/bookings/:bookingId", a.CancelBooking)

	return router, nil
}
