package app

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kolahan61/OAMA-sub000/app/models"
	"github.com/Kolahan61/OAMA-sub000/auth"
	"github.com/Kolahan61/OAMA-sub000/store"
)

type userCtxKey int

const currentUserKey userCtxKey = iota

// WithUser stores the loaded profile in a context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// UserFromContext returns the profile attached by LoadUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(currentUserKey).(*models.User)
	return u, ok
}

// LoadUser runs after auth.Middleware: it resolves the verified subject to a
// profile document and attaches it to the request context. A verified token
// without a profile is still unauthorized.
func (a *App) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		user, err := a.Store.GetUser(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			log.Printf("user lookup failed sub=%s err=%v", claims.Subject, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
			return
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
		c.Next()
	}
}

// LoadUserOptional attaches a profile when a verified subject is present and
// resolvable, and proceeds silently otherwise.
func (a *App) LoadUserOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFromContext(c.Request.Context())
		if !ok {
			c.Next()
			return
		}
		user, err := a.Store.GetUser(c.Request.Context(), claims.Subject)
		if err == nil {
			c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
		}
		c.Next()
	}
}

// RequireAdmin runs after LoadUser and rejects non-admin users.
func (a *App) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		if !user.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// RequireActiveMembership runs after LoadUser and rejects users without an
// active or trial membership.
func (a *App) RequireActiveMembership() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		if !user.HasActiveMembership() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "active membership required"})
			return
		}
		c.Next()
	}
}
