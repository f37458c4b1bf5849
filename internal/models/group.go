package models

import "time"

// Group represents a named set of users sharing calendar availability.
type Group struct {
	// ID is the unique identifier for the group, assigned by the store.
	ID string `json:"id" firestore:"-"`

	// Name is the display name of the group (e.g., "Trip", "Band Practice").
	Name string `json:"name" firestore:"name"`

	// Members is the list of member user IDs, in join order.
	// Contains no duplicates and always includes CreatedBy.
	Members []string `json:"members" firestore:"members"`

	// CreatedBy is the user ID of the group creator. Immutable; only the
	// creator may delete the group.
	CreatedBy string `json:"createdBy" firestore:"createdBy"`

	// CreatedAt is the server-assigned creation time.
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`

	// MemberNames maps member ID to a user-chosen display name override.
	// Absent entries fall back to a positional "Member N" label.
	MemberNames map[string]string `json:"memberNames,omitempty" firestore:"memberNames,omitempty"`
}

// HasMember reports whether userID is a member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// DisplayName returns the display name for a member: the override if one
// was set, otherwise a positional "Member N" label based on join order.
func (g *Group) DisplayName(userID string) string {
	if name, ok := g.MemberNames[userID]; ok && name != "" {
		return name
	}
	for i, m := range g.Members {
		if m == userID {
			return PositionalLabel(i)
		}
	}
	return userID
}
