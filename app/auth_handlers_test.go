package app

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Kolahan61/OAMA-sub000/app/models"
)

func newAuthRouter(a *App, ms *memStore, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", Health)
	r.POST("/api/auth/register", a.Register)
	g := r.Group("/", injectUser(ms, uid))
	g.GET("/api/auth/user", a.GetProfile)
	g.PUT("/api/auth/user", a.UpdateProfile)
	g.DELETE("/api/auth/user", a.DeleteAccount)
	return r
}

func TestHealth(t *testing.T) {
	a, ms, _ := newTestApp()
	router := newAuthRouter(a, ms, "")

	w := doJSON(t, router, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRegisterCreatesAccountAndProfile(t *testing.T) {
	a, ms, accounts := newTestApp()
	router := newAuthRouter(a, ms, "")

	w := doJSON(t, router, "POST", "/api/auth/register", gin.H{
		"email":       "new@example.com",
		"password":    "hunter22",
		"displayName": "New Student",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["uid"] == "" || resp["email"] != "new@example.com" {
		t.Errorf("unexpected response %v", resp)
	}

	u, err := ms.GetUser(context.Background(), resp["uid"])
	if err != nil {
		t.Fatalf("profile not created: %v", err)
	}
	if u.MembershipStatus != models.MembershipNone {
		t.Errorf("expected new user to start with no membership, got %q", u.MembershipStatus)
	}
	if _, ok := accounts.emails["new@example.com"]; !ok {
		t.Error("expected identity account created")
	}
}

func TestRegisterValidation(t *testing.T) {
	a, ms, _ := newTestApp()
	router := newAuthRouter(a, ms, "")

	cases := []struct {
		name string
		body gin.H
	}{
		{"bad email", gin.H{"email": "not-an-email", "password": "hunter22"}},
		{"empty email", gin.H{"password": "hunter22"}},
		{"short password", gin.H{"email": "a@example.com", "password": "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := doJSON(t, router, "POST", "/api/auth/register", tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a, ms, _ := newTestApp()
	router := newAuthRouter(a, ms, "")

	body := gin.H{"email": "dup@example.com", "password": "hunter22"}
	if w := doJSON(t, router, "POST", "/api/auth/register", body); w.Code != http.StatusCreated {
		t.Fatalf("first registration failed: %d", w.Code)
	}
	w := doJSON(t, router, "POST", "/api/auth/register", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate email, got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "email already registered" {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestGetProfile(t *testing.T) {
	a, ms, _ := newTestApp()
	seedUser(ms, "alice", false)
	router := newAuthRouter(a, ms, "alice")

	w := doJSON(t, router, "GET", "/api/auth/user", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var u models.User
	json.Unmarshal(w.Body.Bytes(), &u)
	if u.UID != "alice" || u.Email != "alice@example.com" {
		t.Errorf("unexpected profile %+v", u)
	}
}

func TestUpdateProfile(t *testing.T) {
	a, ms, _ := newTestApp()
	seedUser(ms, "alice", false)
	router := newAuthRouter(a, ms, "alice")

	if w := doJSON(t, router, "PUT", "/api/auth/user", gin.H{"displayName": "  "}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on blank name, got %d", w.Code)
	}

	if w := doJSON(t, router, "PUT", "/api/auth/user", gin.H{"displayName": "Alice Santos"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	u, _ := ms.GetUser(context.Background(), "alice")
	if u.DisplayName != "Alice Santos" {
		t.Errorf("expected display name updated, got %q", u.DisplayName)
	}
}

func TestDeleteAccountCascadesBookings(t *testing.T) {
	a, ms, accounts := newTestApp()
	seedUser(ms, "alice", false)
	seedClass(ms, "class-1", 10)
	seedClass(ms, "class-2", 10)

	bookingRouter := newBookingRouter(a, ms, "alice")
	doJSON(t, bookingRouter, "POST", "/api/bookings/register", gin.H{"classSessionId": "class-1"})
	doJSON(t, bookingRouter, "POST", "/api/bookings/register", gin.H{"classSessionId": "class-2"})

	router := newAuthRouter(a, ms, "alice")
	w := doJSON(t, router, "DELETE", "/api/auth/user", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status            string `json:"status"`
		CancelledBookings int    `json:"cancelledBookings"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.CancelledBookings != 2 {
		t.Errorf("expected 2 cancelled bookings, got %d", resp.CancelledBookings)
	}

	if _, err := ms.GetUser(context.Background(), "alice"); err == nil {
		t.Error("expected profile document deleted")
	}
	if len(accounts.deleted) != 1 || accounts.deleted[0] != "alice" {
		t.Errorf("expected identity account deleted, got %v", accounts.deleted)
	}
	for _, b := range ms.bookings {
		if b.UserID == "alice" && b.Status == models.BookingActive {
			t.Errorf("expected no active bookings left, found %+v", b)
		}
	}
}
