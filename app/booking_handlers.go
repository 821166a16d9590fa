// Package app exposes the booking workflow over HTTP.
package app

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kolahan61/OAMA-sub000/app/models"
	"github.com/Kolahan61/OAMA-sub000/store"
)

type registerBookingRequest struct {
	ClassSessionID string `json:"classSessionId"`
}

// RegisterBooking books the authenticated user into a class session.
func (a *App) RegisterBooking(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req registerBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ClassSessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing classSessionId"})
		return
	}

	booking, err := a.Store.RegisterBooking(c.Request.Context(), user.UID, req.ClassSessionID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "class session not found"})
		case errors.Is(err, store.ErrClassFull):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Class is full"})
		case errors.Is(err, store.ErrAlreadyRegistered):
			c.JSON(http.StatusBadRequest, gin.H{"error": "already registered for this class"})
		default:
			log.Printf("booking registration failed user=%s class=%s err=%v", user.UID, req.ClassSessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// CancelBooking cancels a booking by id. Owners cancel their own; admins may
// cancel anyone's.
func (a *App) CancelBooking(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	bookingID := c.Param("bookingId")
	booking, err := a.Store.CancelBooking(c.Request.Context(), bookingID, user.UID, user.Admin)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, store.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to cancel this booking"})
		case errors.Is(err, store.ErrAlreadyCancelled):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking already cancelled"})
		default:
			log.Printf("booking cancel failed booking=%s user=%s err=%v", bookingID, user.UID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}

type cancelByClassRequest struct {
	ClassSessionID string `json:"classSessionId"`
}

// CancelBookingByClass cancels the user's active booking for a class without
// requiring the booking id.
func (a *App) CancelBookingByClass(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req cancelByClassRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ClassSessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing classSessionId"})
		return
	}

	booking, err := a.Store.ActiveBookingForClass(c.Request.Context(), user.UID, req.ClassSessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active booking for this class"})
			return
		}
		log.Printf("booking lookup failed user=%s class=%s err=%v", user.UID, req.ClassSessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to find booking"})
		return
	}

	cancelled, err := a.Store.CancelBooking(c.Request.Context(), booking.ID, user.UID, user.Admin)
	if err != nil {
		log.Printf("booking cancel failed booking=%s user=%s err=%v", booking.ID, user.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		return
	}

	c.JSON(http.StatusOK, cancelled)
}

// ListUserBookings returns the caller's bookings, optionally filtered by
// ?status=, newest-registered first.
func (a *App) ListUserBookings(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	bookings, err := a.Store.ListBookingsForUser(c.Request.Context(), user.UID, models.BookingStatus(c.Query("status")))
	if err != nil {
		log.Printf("booking listing failed user=%s err=%v", user.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

// ListClassBookings returns a class's bookings. The owning user id on each
// booking is redacted unless the requester is admin or owns that booking.
func (a *App) ListClassBookings(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	bookings, err := a.Store.ListBookingsForClass(c.Request.Context(), c.Param("id"), models.BookingStatus(c.Query("status")))
	if err != nil {
		log.Printf("class booking listing failed class=%s err=%v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, redactBooking(b, user))
	}
	c.JSON(http.StatusOK, out)
}

// CheckRegistration reports whether the caller holds an active booking for a
// class, and its id if so. Used by the frontend to toggle register/cancel.
func (a *App) CheckRegistration(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	booking, err := a.Store.ActiveBookingForClass(c.Request.Context(), user.UID, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"isRegistered": false})
			return
		}
		log.Printf("registration check failed user=%s class=%s err=%v", user.UID, c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isRegistered": true,
		"bookingId":    booking.ID,
	})
}

func redactBooking(b models.Booking, requester *models.User) models.Booking {
	if requester.Admin || b.UserID == requester.UID {
		return b
	}
	b.UserID = ""
	return b
}
