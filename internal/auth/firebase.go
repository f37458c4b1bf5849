package auth

import (
	"context"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/mmynk/syncdays/internal/models"
)

// FirebaseVerifier validates Firebase ID tokens with the Admin SDK.
// Accounts live in Firebase Authentication; the local users table is
// unused in this mode.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier creates a Verifier backed by Firebase Authentication.
func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify validates the ID token and returns the session it encodes.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*models.Session, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	session := &models.Session{UID: token.UID}
	if name, ok := token.Claims["name"].(string); ok {
		session.DisplayName = name
	}
	if email, ok := token.Claims["email"].(string); ok {
		session.Email = email
	}
	return session, nil
}
