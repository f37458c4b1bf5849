package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/syncdays/internal/models"
	"github.com/mmynk/syncdays/internal/storage"
)

// GroupService implements the group directory: creating, joining and
// listing groups, member display names, and creator-only deletion.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// Create creates a new group with the creator as its only member.
func (s *GroupService) Create(ctx context.Context, name, creatorID string) (*models.Group, error) {
	slog.Info("Create group request", "name", name, "creator", creatorID)

	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	group := &models.Group{
		Name:      name,
		Members:   []string{creatorID},
		CreatedBy: creatorID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("Create group failed", "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID)
	return group, nil
}

// Get retrieves a group by ID.
func (s *GroupService) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// Join adds userID to the group. Joining a group the user already
// belongs to succeeds without changing the member list.
func (s *GroupService) Join(ctx context.Context, groupID, userID string) error {
	slog.Info("Join group request", "group_id", groupID, "user_id", userID)

	if err := s.store.AddMember(ctx, groupID, userID); err != nil {
		slog.Error("Join group failed", "group_id", groupID, "user_id", userID, "error", err)
		return err
	}
	return nil
}

// SetMemberName upserts the display-name override for one member.
func (s *GroupService) SetMemberName(ctx context.Context, groupID, userID, name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(name) > MaxMemberNameLength {
		return &ValidationError{Field: "name", Reason: "must be at most 32 characters"}
	}

	if err := s.store.SetMemberName(ctx, groupID, userID, name); err != nil {
		slog.Error("Set member name failed", "group_id", groupID, "user_id", userID, "error", err)
		return err
	}

	slog.Info("Member name set", "group_id", groupID, "user_id", userID)
	return nil
}

// Delete removes a group and all of its day records. Only the creator
// may delete. The day sweep runs first; if it fails partway, the group
// document is left in place so the operation reads as fully failed and
// can be retried (day deletions are idempotent).
func (s *GroupService) Delete(ctx context.Context, groupID, requesterID string) error {
	slog.Info("Delete group request", "group_id", groupID, "requester", requesterID)

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != requesterID {
		slog.Warn("Delete group denied", "group_id", groupID, "requester", requesterID)
		return &AuthorizationError{Reason: "only the group creator can delete the group"}
	}

	deleted, err := s.store.DeleteGroupDays(ctx, groupID)
	if err != nil {
		slog.Error("Day sweep failed, group left intact", "group_id", groupID, "days_deleted", deleted, "error", err)
		return err
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("Delete group failed after day sweep", "group_id", groupID, "error", err)
		return err
	}

	slog.Info("Group deleted", "group_id", groupID, "days_deleted", deleted)
	return nil
}

// ListForUser returns every group the user is a member of.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		slog.Error("List groups failed", "user_id", userID, "error", err)
		return nil, err
	}
	return groups, nil
}

// Watch subscribes to the user's group list. Every delivery on the
// returned handle is the full current set.
func (s *GroupService) Watch(ctx context.Context, userID string) (*storage.GroupWatch, error) {
	return s.store.WatchGroups(ctx, userID)
}
