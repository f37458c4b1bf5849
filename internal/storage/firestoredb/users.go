package firestoredb

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/google/uuid"
	"github.com/mmynk/syncdays/internal/models"
	"github.com/mmynk/syncdays/internal/storage"
)

// userDoc is the persisted form of a user account. Deployments that use
// Firebase Authentication as the identity provider leave this
// collection empty.
type userDoc struct {
	Email        string    `firestore:"email"`
	DisplayName  string    `firestore:"displayName"`
	PasswordHash string    `firestore:"passwordHash"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

// CreateUser persists a new user account.
func (s *FirestoreStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.client.Collection(usersCollection).Doc(user.ID).Create(ctx, userDoc{
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return mapErr("create user", "user", user.ID, err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email address.
func (s *FirestoreStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	iter := s.client.Collection(usersCollection).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, &storage.NotFoundError{Resource: "user", ID: email}
	}
	if err != nil {
		return nil, &storage.UnavailableError{Op: "get user by email", Err: err}
	}
	return decodeUser(snap)
}

// GetUserByID retrieves a user by document ID.
func (s *FirestoreStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	snap, err := s.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapErr("get user", "user", id, err)
	}
	return decodeUser(snap)
}

func decodeUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, &storage.UnavailableError{Op: "decode user", Err: err}
	}
	return &models.User{
		ID:           snap.Ref.ID,
		Email:        doc.Email,
		DisplayName:  doc.DisplayName,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt.UTC(),
	}, nil
}
