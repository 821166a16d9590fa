package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"github.com/Kolahan61/OAMA-sub000/app"
	"github.com/Kolahan61/OAMA-sub000/app/config"
	"github.com/Kolahan61/OAMA-sub000/auth"
	"github.com/Kolahan61/OAMA-sub000/store"
)

var ginLambda *ginadapter.GinLambda

// init runs once per Lambda container (cold start)
func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	st, err := store.New(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("failed to connect to firestore: %v", err)
	}

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
	ginLambda = ginadapter.New(router)
}

// Handler is the Lambda entrypoint for API Gateway REST/HTTP API (proxy integration)
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
