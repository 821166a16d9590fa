// Package app serves member-only routes, gated on an active or trial membership.
package app

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kolahan61/OAMA-sub000/app/models"
	"github.com/Kolahan61/OAMA-sub000/store"
)

// MemberSchedule returns the class sessions the member currently holds active
// bookings for. Runs behind RequireActiveMembership.
func (a *App) MemberSchedule(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	bookings, err := a.Store.ListBookingsForUser(c.Request.Context(), user.UID, models.BookingActive)
	if err != nil {
		log.Printf("schedule listing failed user=%s err=%v", user.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load schedule"})
		return
	}

	sessions := make([]models.ClassSession, 0, len(bookings))
	for _, b := range bookings {
		session, err := a.Store.GetClassSession(c.Request.Context(), b.ClassID)
		if err != nil {
			// A class pulled from the catalog keeps its booking visible under
			// /api/bookings/user but drops off the schedule.
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			log.Printf("schedule class lookup failed user=%s class=%s err=%v", user.UID, b.ClassID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load schedule"})
			return
		}
		sessions = append(sessions, *session)
	}
	c.JSON(http.StatusOK, sessions)
}
