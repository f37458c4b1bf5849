// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/syncdays/internal/models"
)

// Store defines the record-store contract SyncDays is built on: atomic
// per-member sub-record updates inside day documents, group documents
// with idempotent membership writes, and push subscriptions delivering
// the full current result set on every change.
//
// This abstraction allows swapping storage backends (Firestore, SQLite)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group. The group.ID and group.CreatedAt
	// fields are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID. Returns a NotFoundError if the
	// group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// AddMember appends userID to the group's member list. Idempotent:
	// adding an existing member is a successful no-op and never creates a
	// duplicate entry. Returns a NotFoundError for unknown groups.
	AddMember(ctx context.Context, groupID, userID string) error

	// SetMemberName upserts the display-name override for one member.
	SetMemberName(ctx context.Context, groupID, userID, name string) error

	// ListGroupsByMember returns every group whose member list contains
	// userID.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// DeleteGroup removes the group document. Day records must already be
	// swept with DeleteGroupDays; callers own the ordering so a partial
	// sweep failure never orphans day data behind a deleted group.
	DeleteGroup(ctx context.Context, groupID string) error

	// DeleteGroupDays deletes every day record under the group and
	// returns how many were removed. Idempotent and safe to retry.
	DeleteGroupDays(ctx context.Context, groupID string) (int, error)

	// GetDay retrieves one day record. Returns a NotFoundError when no
	// member has written to that day yet.
	GetDay(ctx context.Context, groupID, dateKey string) (*models.DayRecord, error)

	// ListDays returns every day record in the group, keyed by date.
	ListDays(ctx context.Context, groupID string) (map[string]*models.DayRecord, error)

	// SetMemberStatus writes one member's status for one day, creating
	// the day record if absent and merging if present. Other members'
	// entries and the member's own appointment list are never touched.
	// The record's LastUpdated advances as a side effect.
	SetMemberStatus(ctx context.Context, groupID, dateKey, userID string, status models.Status) error

	// SetMemberAppointments replaces one member's appointment list for
	// one day, creating the day record if absent. This is the write half
	// of the ledger's read-modify-write append; callers read the current
	// list first. The record's LastUpdated advances as a side effect.
	SetMemberAppointments(ctx context.Context, groupID, dateKey, userID string, appointments []models.Appointment) error

	// PurgeDaysBefore deletes day records with a date key strictly before
	// cutoffKey across all groups, returning how many were removed.
	PurgeDaysBefore(ctx context.Context, cutoffKey string) (int, error)

	// WatchGroups subscribes to the set of groups containing userID.
	// Every delivery is the full current set; consumers must treat each
	// one as a full replace. The watch ends when ctx is cancelled or
	// Unsubscribe is called.
	WatchGroups(ctx context.Context, userID string) (*GroupWatch, error)

	// WatchDays subscribes to all day records in the group, ordered by
	// LastUpdated descending. Same full-replace delivery semantics as
	// WatchGroups.
	WatchDays(ctx context.Context, groupID string) (*DayWatch, error)

	// CreateUser persists a new user account (local identity mode).
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
