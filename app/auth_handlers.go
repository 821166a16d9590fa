// Package app provides registration, login and profile endpoints.
package app

import (
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kolahan61/OAMA-sub000/app/models"
	"github.com/Kolahan61/OAMA-sub000/auth"
	"github.com/Kolahan61/OAMA-sub000/store"
)

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// Register creates an identity-provider account and the matching profile
// document, starting with no membership.
func (a *App) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	uid, err := a.Accounts.CreateAccount(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
			return
		}
		log.Printf("account creation failed email=%s err=%v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	user := &models.User{
		UID:              uid,
		Email:            req.Email,
		DisplayName:      req.DisplayName,
		MembershipStatus: models.MembershipNone,
	}
	if err := a.Store.CreateUser(c.Request.Context(), user); err != nil {
		log.Printf("profile creation failed uid=%s err=%v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"uid":         uid,
		"email":       user.Email,
		"displayName": user.DisplayName,
	})
}

type loginRequest struct {
	IDToken string `json:"idToken"`
}

// Login verifies a freshly minted ID token and returns the caller's profile.
// Token issuance itself happens on the client against Firebase.
func (a *App) Login(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing idToken"})
			return
		}
		if verifier == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "auth verifier not configured"})
			return
		}

		claims, err := verifier.Verify(req.IDToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := a.Store.GetUser(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			log.Printf("login lookup failed sub=%s err=%v", claims.Subject, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// GetProfile returns the authenticated user's profile document.
func (a *App) GetProfile(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
}

// UpdateProfile applies profile edits for the authenticated user.
func (a *App) UpdateProfile(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "displayName must not be empty"})
		return
	}

	if err := a.Store.UpdateUserProfile(c.Request.Context(), user.UID, req.DisplayName); err != nil {
		log.Printf("profile update failed uid=%s err=%v", user.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteAccount cancels the user's active bookings, deletes the profile
// document and removes the identity-provider account, in that order.
func (a *App) DeleteAccount(c *gin.Context) {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	cancelled, err := a.Store.CancelAllForUser(c.Request.Context(), user.UID)
	if err != nil {
		log.Printf("booking cascade failed uid=%s cancelled=%d err=%v", user.UID, cancelled, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel bookings"})
		return
	}

	if err := a.Store.DeleteUser(c.Request.Context(), user.UID); err != nil {
		log.Printf("profile deletion failed uid=%s err=%v", user.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete profile"})
		return
	}

	if err := a.Accounts.DeleteAccount(c.Request.Context(), user.UID); err != nil {
		log.Printf("account deletion failed uid=%s err=%v", user.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "cancelledBookings": cancelled})
}
