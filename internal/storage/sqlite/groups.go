package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/syncdays/internal/models"
	"github.com/mmynk/syncdays/internal/storage"
)

// CreateGroup persists a new group with the creator as its only member.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}
	if len(group.Members) == 0 {
		group.Members = []string{group.CreatedBy}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("create group", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.CreatedBy, group.CreatedAt.UnixNano(),
	)
	if err != nil {
		return wrap("create group", err)
	}

	for i, userID := range group.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, position) VALUES (?, ?, ?)",
			group.ID, userID, i,
		)
		if err != nil {
			return wrap("create group", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap("create group", err)
	}

	s.notifyGroupWatches()
	return nil
}

// GetGroup retrieves a group with its ordered member list and name
// overrides.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{ID: groupID}
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT name, created_by, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.Name, &group.CreatedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, &storage.NotFoundError{Resource: "group", ID: groupID}
	}
	if err != nil {
		return nil, wrap("get group", err)
	}
	group.CreatedAt = time.Unix(0, createdAt).UTC()

	if err := s.loadMembers(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// loadMembers fills Members (join order) and MemberNames.
func (s *SQLiteStore) loadMembers(ctx context.Context, group *models.Group) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY position",
		group.ID,
	)
	if err != nil {
		return wrap("load members", err)
	}
	defer rows.Close()

	group.Members = nil
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return wrap("load members", err)
		}
		group.Members = append(group.Members, userID)
	}
	if err := rows.Err(); err != nil {
		return wrap("load members", err)
	}

	nameRows, err := s.db.QueryContext(ctx,
		"SELECT user_id, name FROM member_names WHERE group_id = ?",
		group.ID,
	)
	if err != nil {
		return wrap("load members", err)
	}
	defer nameRows.Close()

	for nameRows.Next() {
		var userID, name string
		if err := nameRows.Scan(&userID, &name); err != nil {
			return wrap("load members", err)
		}
		if group.MemberNames == nil {
			group.MemberNames = make(map[string]string)
		}
		group.MemberNames[userID] = name
	}
	return nameRows.Err()
}

// AddMember appends userID to the member list. A second add of the same
// user succeeds without creating a duplicate row.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID, userID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if err == sql.ErrNoRows {
		return &storage.NotFoundError{Resource: "group", ID: groupID}
	}
	if err != nil {
		return wrap("add member", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO group_members (group_id, user_id, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM group_members WHERE group_id = ?))`,
		groupID, userID, groupID,
	)
	if err != nil {
		return wrap("add member", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.notifyGroupWatches()
	}
	return nil
}

// SetMemberName upserts the display-name override for one member.
func (s *SQLiteStore) SetMemberName(ctx context.Context, groupID, userID, name string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if err == sql.ErrNoRows {
		return &storage.NotFoundError{Resource: "group", ID: groupID}
	}
	if err != nil {
		return wrap("set member name", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO member_names (group_id, user_id, name) VALUES (?, ?, ?)
		 ON CONFLICT(group_id, user_id) DO UPDATE SET name = excluded.name`,
		groupID, userID, name,
	)
	if err != nil {
		return wrap("set member name", err)
	}

	s.notifyGroupWatches()
	return nil
}

// ListGroupsByMember returns every group containing userID, newest
// first.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrap("list groups", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrap("list groups", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list groups", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			if storage.IsNotFound(err) {
				continue // deleted between queries
			}
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// DeleteGroup removes the group document. Callers sweep day records
// first via DeleteGroupDays.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return wrap("delete group", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("delete group", err)
	}
	if n == 0 {
		return &storage.NotFoundError{Resource: "group", ID: groupID}
	}

	s.notifyGroupWatches()
	return nil
}
