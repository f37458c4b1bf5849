package models

import "time"

// User represents a registered account in local identity mode. When the
// Firebase identity provider is used instead, users live in Firebase
// Authentication and this table stays empty.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the user's email address (unique). Used for login.
	Email string `json:"email"`

	// DisplayName is the name shown to other members.
	DisplayName string `json:"displayName"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized to clients.
	PasswordHash string `json:"-"`

	// CreatedAt is when the account was created.
	CreatedAt time.Time `json:"createdAt"`
}

// Session identifies the authenticated actor for one request. Every
// operation that needs the acting user receives a Session explicitly;
// there is no ambient identity lookup.
type Session struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}
