// Package app serves admin-only dashboard and management endpoints.
package app

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kolahan61/OAMA-sub000/app/models"
)

// AdminDashboard returns headline counts and revenue for the trailing window
// (?days=, default 30).
func (a *App) AdminDashboard(c *gin.Context) {
	days := parseWindowDays(c.Query("days"))
	cutoff := windowCutoff(time.Now(), days)

	users, err := a.Store.ListUsers(c.Request.Context())
	if err != nil {
		log.Printf("admin user scan failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}
	bookings, err := a.Store.ListBookingsSince(c.Request.Context(), cutoff)
	if err != nil {
		log.Printf("admin booking scan failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}
	payments, err := a.Store.ListPaymentsSince(c.Request.Context(), cutoff)
	if err != nil {
		log.Printf("admin payment scan failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"windowDays":     days,
		"totalUsers":     len(users),
		"activeMembers":  countActiveMembers(users),
		"bookings":       len(bookings),
		"activeBookings": countActiveBookings(bookings),
		"revenue":        totalRevenue(payments),
	})
}

// AdminAnalytics returns trend series over the trailing window.
func (a *App) AdminAnalytics(c *gin.Context) {
	days := parseWindowDays(c.Query("days"))
	cutoff := windowCutoff(time.Now(), days)

	users, err := a.Store.ListUsers(c.Request.Context())
	if err != nil {
		log.Printf("admin user scan failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}
	bookings, err := a.Store.ListBookingsSince(c.Request.Context(), cutoff)
	if err != nil {
		log.Printf("admin booking scan failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}
	payments, err := a.Store.ListPaymentsSince(c.Request.Context(), cutoff)
	if err != nil {
		log.Printf("admin payment scan failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"windowDays":             days,
		"bookingsPerDay":         bookingsPerDay(bookings),
		"revenuePerDay":          revenuePerDay(payments),
		"classPopularity":        classPopularity(bookings),
		"membershipDistribution": membershipDistribution(users),
	})
}

// AdminListUsers returns every profile document.
func (a *App) AdminListUsers(c *gin.Context) {
	users, err := a.Store.ListUsers(c.Request.Context())
	if err != nil {
		log.Printf("admin user scan failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// AdminListBookings returns bookings for a class (?classId=) or the trailing
// window, optionally filtered by ?status=.
func (a *App) AdminListBookings(c *gin.Context) {
	status := models.BookingStatus(c.Query("status"))

	var (
		bookings []models.Booking
		err      error
	)
	if classID := c.Query("classId"); classID != "" {
		bookings, err = a.Store.ListBookingsForClass(c.Request.Context(), classID, status)
	} else {
		days := parseWindowDays(c.Query("days"))
		bookings, err = a.Store.ListBookingsSince(c.Request.Context(), windowCutoff(time.Now(), days))
		if status != "" {
			filtered := bookings[:0]
			for _, b := range bookings {
				if b.Status == status {
					filtered = append(filtered, b)
				}
			}
			bookings = filtered
		}
	}
	if err != nil {
		log.Printf("admin booking scan failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

func parseWindowDays(raw string) int {
	if raw == "" {
		return 30
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 365 {
		return v
	}
	return 30
}
