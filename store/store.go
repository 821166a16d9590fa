// Package store implements Firestore persistence for the academy API. Every
// multi-document invariant (booking capacity, duplicate registration, checkout
// completion) is enforced inside a Firestore transaction.
package store

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names.
const (
	colUsers           = "users"
	colClassSessions   = "classSessions"
	colPrograms        = "programs"
	colMemberships     = "memberships"
	colBookings        = "bookings"
	colPaymentHistory  = "paymentHistory"
	colCheckoutSess    = "checkoutSessions"
	colProcessedEvents = "processedEvents"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrClassFull         = errors.New("class is full")
	ErrAlreadyRegistered = errors.New("already registered for this class")
	ErrAlreadyCancelled  = errors.New("booking already cancelled")
	ErrForbidden         = errors.New("not allowed")
)

// Store wraps a Firestore client with typed accessors. Construct one at
// process start and inject it; there is no package-level singleton.
type Store struct {
	fs *firestore.Client
}

// New connects to Firestore for the given project. credentialsFile may be
// empty, in which case application default credentials apply.
func New(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	if projectID == "" {
		return nil, errors.New("firestore project id must be set")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	return &Store{fs: client}, nil
}

// Close releases the underlying Firestore client.
func (s *Store) Close() error {
	return s.fs.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
