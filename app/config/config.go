package config

import (
	"os"
	"strconv"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port     int
	Firebase FirebaseConfig
	Stripe   StripeConfig
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	// JWKSURL overrides the Google securetoken JWKS endpoint, for tests and
	// the local emulator.
	JWKSURL string
}

type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
	FrontendURL    string
	Currency       string
}

func LoadConfig() (*Config, error) {
	port := 8080
	if v := os.Getenv("PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			port = parsed
		}
	}

	currency := os.Getenv("CURRENCY")
	if currency == "" {
		currency = "usd"
	}

	cfg := &Config{
		Port: port,
		Firebase: FirebaseConfig{
			ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
			CredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
			JWKSURL:         os.Getenv("FIREBASE_JWKS_URL"),
		},
		Stripe: StripeConfig{
			SecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
			PublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
			WebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
			FrontendURL:    os.Getenv("FRONTEND_URL"),
			Currency:       currency,
		},
	}

	return cfg, nil
}
