// Package auth verifies Firebase ID tokens via Google's securetoken JWKS and
// validates issuer/audience locally, avoiding a network round-trip per request.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultLeeway = 30 * time.Second

	// Google publishes the signing keys for Firebase ID tokens here.
	googleJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

// ErrTokenExpired marks tokens that failed verification only because they are
// past their expiry, so the middleware can answer with a distinct message.
var ErrTokenExpired = jwt.ErrTokenExpired

// Verifier validates Firebase ID tokens for a single project.
type Verifier struct {
	issuer   string
	audience string
	keyfunc  keyfunc.Keyfunc
	parser   *jwt.Parser
}

// NewVerifierFromEnv initializes a verifier from FIREBASE_PROJECT_ID, with an
// optional FIREBASE_JWKS_URL override for tests and the emulator.
func NewVerifierFromEnv() (*Verifier, error) {
	projectID := strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID"))
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID must be set")
	}
	return NewVerifier(projectID, os.Getenv("FIREBASE_JWKS_URL"))
}

// NewVerifier builds a verifier for the given Firebase project. jwksURL is an
// optional override of Google's securetoken endpoint.
func NewVerifier(projectID, jwksURL string) (*Verifier, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("project id must be set")
	}
	if jwksURL == "" {
		jwksURL = googleJWKSURL
	}

	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}

	issuer := "https://securetoken.google.com/" + projectID
	parser := jwt.NewParser(
		jwt.WithIssuer(issuer),
		jwt.WithAudience(projectID),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
	)

	return &Verifier{
		issuer:   issuer,
		audience: projectID,
		keyfunc:  keyProvider,
		parser:   parser,
	}, nil
}

// Verify parses and validates an ID token, returning extracted claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc.Keyfunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	claims := &Claims{
		Subject:   readString(mapClaims, "sub"),
		Issuer:    readString(mapClaims, "iss"),
		Audience:  readAudience(mapClaims["aud"]),
		ExpiresAt: readExpiry(mapClaims["exp"]),
		Email:     readString(mapClaims, "email"),
		Name:      readString(mapClaims, "name"),
		Raw:       mapClaims,
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing sub")
	}
	return claims, nil
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

func readAudience(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	default:
		return nil
	}
}

func readExpiry(raw any) time.Time {
	switch v := raw.(type) {
	case float64:
		return time.Unix(int64(v), 0)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return time.Unix(i, 0)
		}
	case int64:
		return time.Unix(v, 0)
	}
	return time.Time{}
}

// AuthDisabled reports whether auth should be skipped for local development.
func AuthDisabled() bool {
	if strings.EqualFold(os.Getenv("AUTH_DISABLED"), "true") {
		if strings.EqualFold(os.Getenv("ENV"), "local") || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
			log.Print("auth disabled via AUTH_DISABLED for local development")
			return true
		}
	}
	return false
}
