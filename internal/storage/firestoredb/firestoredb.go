// Package firestoredb provides a Firestore-backed implementation of the
// storage.Store interface. It is the reference backend: day records live
// at groups/{groupID}/days/{YYYY-MM-DD} with one top-level field per
// member plus the reserved lastUpdated field, and member writes always
// stay under the member's own field path.
package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mmynk/syncdays/internal/storage"
)

const (
	groupsCollection = "groups"
	daysCollection   = "days"
	usersCollection  = "users"

	// lastUpdatedField is the reserved day-record field holding the
	// server timestamp of the most recent write. Never a member ID.
	lastUpdatedField = "lastUpdated"
)

// Ensure FirestoreStore implements storage.Store
var _ storage.Store = (*FirestoreStore)(nil)

// FirestoreStore implements storage.Store using Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// New wraps an initialized Firestore client. The caller owns client
// construction (credentials, project selection) and shares the client
// with other consumers such as the Firebase auth verifier.
func New(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Close closes the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) groupDoc(groupID string) *firestore.DocumentRef {
	return s.client.Collection(groupsCollection).Doc(groupID)
}

func (s *FirestoreStore) dayDoc(groupID, dateKey string) *firestore.DocumentRef {
	return s.groupDoc(groupID).Collection(daysCollection).Doc(dateKey)
}

// mapErr converts Firestore client errors into the store error
// taxonomy.
func mapErr(op, resource, id string, err error) error {
	if status.Code(err) == codes.NotFound {
		return &storage.NotFoundError{Resource: resource, ID: id}
	}
	return &storage.UnavailableError{Op: op, Err: err}
}

// ctxErr folds a context cancellation into a nil terminal error for
// watch shutdown.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}
