package app

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/Kolahan61/OAMA-sub000/app/config"
)

// ErrEmailTaken is returned by Accounts.CreateAccount when the identity
// provider already has an account for the email.
var ErrEmailTaken = errors.New("email already registered")

// FirebaseAccounts manages accounts through the Firebase Admin SDK.
type FirebaseAccounts struct {
	client *fbauth.Client
}

// NewFirebaseAccounts initializes the Admin SDK for the configured project.
func NewFirebaseAccounts(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseAccounts, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := fbApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase auth client: %w", err)
	}
	return &FirebaseAccounts{client: client}, nil
}

func (f *FirebaseAccounts) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	record, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return record.UID, nil
}

func (f *FirebaseAccounts) DeleteAccount(ctx context.Context, uid string) error {
	return f.client.DeleteUser(ctx, uid)
}
