package main

import (
	"context"
	"fmt"
	"log"

	"github.com/Kolahan61/OAMA-sub000/app"
	"github.com/Kolahan61/OAMA-sub000/app/config"
	"github.com/Kolahan61/OAMA-sub000/auth"
	"github.com/Kolahan61/OAMA-sub000/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	st, err := store.New(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("failed to connect to firestore: %v", err)
	}
	defer st.Close()

	accounts, err := app.NewFirebaseAccounts(ctx, cfg.Firebase)
	if err != nil {
		log.Fatalf("failed to init firebase auth: %v", err)
	}

	app.InitStripe(cfg.Stripe.SecretKey)

	verifier, err := auth.NewVerifier(cfg.Firebase.ProjectID, cfg.Firebase.JWKSURL)
	if err != nil && !auth.AuthDisabled() {
		log.Fatalf("failed to init token verifier: %v", err)
	}

	a := app.New(cfg, st, accounts)
	router, err := app.NewRouter(a, verifier)
	if err != nil {
		log.Fatalf("failed to initialize router: %v", err)
	}
	router.Run(fmt.Sprintf("0.0.0.0:%d", cfg.Port))
}
