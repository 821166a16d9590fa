// Package app serves the public class/program/membership catalog.
package app

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kolahan61/OAMA-sub000/app/models"
	"github.com/Kolahan61/OAMA-sub000/store"
)

// ListClassSessions returns class sessions, optionally filtered by
// ?day= &programId= &category=.
func (a *App) ListClassSessions(c *gin.Context) {
	filter := models.ClassFilter{
		Day:       c.Query("day"),
		ProgramID: c.Query("programId"),
		Category:  c.Query("category"),
	}

	sessions, err := a.Store.ListClassSessions(c.Request.Context(), filter)
	if err != nil {
		log.Printf("class session listing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load class sessions"})
		return
	}
	if sessions == nil {
		sessions = []models.ClassSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

// ListClassSessionsByDay is the path-param variant of the day filter.
func (a *App) ListClassSessionsByDay(c *gin.Context) {
	sessions, err := a.Store.ListClassSessions(c.Request.Context(), models.ClassFilter{Day: c.Param("day")})
	if err != nil {
		log.Printf("class session listing failed day=%s: %v", c.Param("day"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load class sessions"})
		return
	}
	if sessions == nil {
		sessions = []models.ClassSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

// ListClassSessionsByProgram is the path-param variant of the program filter.
func (a *App) ListClassSessionsByProgram(c *gin.Context) {
	sessions, err := a.Store.ListClassSessions(c.Request.Context(), models.ClassFilter{ProgramID: c.Param("id")})
	if err != nil {
		log.Printf("class session listing failed program=%s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load class sessions"})
		return
	}
	if sessions == nil {
		sessions = []models.ClassSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

type classSessionResponse struct {
	models.ClassSession
	// IsRegistered is present only when the caller is authenticated.
	IsRegistered *bool `json:"isRegistered,omitempty"`
}

// GetClassSession returns a single class session by id. When the request
// carries a valid bearer token, the response also reports whether the caller
// holds an active booking for it.
func (a *App) GetClassSession(c *gin.Context) {
	session, err := a.Store.GetClassSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "class session not found"})
			return
		}
		log.Printf("class session lookup failed id=%s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load class session"})
		return
	}

	resp := classSessionResponse{ClassSession: *session}
	if user, ok := UserFromContext(c.Request.Context()); ok {
		registered := false
		if _, err := a.Store.ActiveBookingForClass(c.Request.Context(), user.UID, session.ID); err == nil {
			registered = true
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("registration check failed user=%s class=%s err=%v", user.UID, session.ID, err)
		}
		resp.IsRegistered = &registered
	}
	c.JSON(http.StatusOK, resp)
}

// ListPrograms returns active programs.
func (a *App) ListPrograms(c *gin.Context) {
	programs, err := a.Store.ListPrograms(c.Request.Context(), true, "")
	if err != nil {
		log.Printf("program listing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load programs"})
		return
	}
	if programs == nil {
		programs = []models.Program{}
	}
	c.JSON(http.StatusOK, programs)
}

// ListProgramsByCategory returns active programs in a category.
func (a *App) ListProgramsByCategory(c *gin.Context) {
	programs, err := a.Store.ListPrograms(c.Request.Context(), true, c.Param("category"))
	if err != nil {
		log.Printf("program listing failed category=%s: %v", c.Param("category"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load programs"})
		return
	}
	if programs == nil {
		programs = []models.Program{}
	}
	c.JSON(http.StatusOK, programs)
}

// GetProgram returns a single program by id.
func (a *App) GetProgram(c *gin.Context) {
	program, err := a.Store.GetProgram(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}
		log.Printf("program lookup failed id=%s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load program"})
		return
	}
	c.JSON(http.StatusOK, program)
}

// ListMemberships returns the purchasable membership plans. An academy with no
// plans seeded gets an empty list, not a 404.
func (a *App) ListMemberships(c *gin.Context) {
	plans, err := a.Store.ListMembershipPlans(c.Request.Context())
	if err != nil {
		log.Printf("membership listing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load memberships"})
		return
	}
	if plans == nil {
		plans = []models.MembershipPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

// GetMembership returns a single membership plan by id.
func (a *App) GetMembership(c *gin.Context) {
	plan, err := a.Store.GetMembershipPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "membership not found"})
			return
		}
		log.Printf("membership lookup failed id=%s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load membership"})
		return
	}
	c.JSON(http.StatusOK, plan)
}
